package hiring

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("approval intent not found")
	ErrStaleState    = errors.New("approval intent state changed")
	ErrDuplicate     = errors.New("approval intent idempotency key already used")
	ErrBadTransition = errors.New("illegal approval intent transition")
)

// Repo defines persistence operations for approval intents.
type Repo interface {
	Create(ctx context.Context, intent ApprovalIntent) error
	GetByID(ctx context.Context, intentID string) (ApprovalIntent, error)
	GetByOrderID(ctx context.Context, orderID string) (ApprovalIntent, error)
	GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (ApprovalIntent, error)
	LatestByApplication(ctx context.Context, applicationID string) (ApprovalIntent, error)
	// Advance moves an intent from one state to another, failing with
	// ErrStaleState when the stored state no longer matches fromState and
	// with ErrBadTransition when CanAdvance rejects the pair.
	Advance(ctx context.Context, intentID, fromState, toState string, update IntentUpdate) error
	ListInState(ctx context.Context, state string, updatedBefore time.Time, limit int) ([]ApprovalIntent, error)
}

// IntentUpdate carries optional fields written alongside a state change.
type IntentUpdate struct {
	OrderID      string
	PaymentID    string
	Amount       int64
	LastError    string
	BumpAttempts bool
}
