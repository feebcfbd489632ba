package applications

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrDuplicate     = errors.New("application already exists")
	ErrForbidden     = errors.New("application access denied")
	ErrInvalidInput  = errors.New("invalid input")
	ErrJobClosed     = errors.New("job is closed")
	ErrBadTransition = errors.New("invalid status transition")
)

// Repo defines persistence operations for applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, applicationID string) (Application, error)
	ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error)
	UpdateStatus(ctx context.Context, applicationID, status string, approvalFee int64) error
}
