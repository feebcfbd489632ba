package payments

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("payment not found")
	ErrDuplicate = errors.New("payment already exists")
)

// Repo defines persistence operations for payments.
type Repo interface {
	Create(ctx context.Context, payment Payment) error
	GetByOrderID(ctx context.Context, orderID string) (Payment, error)
	GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (Payment, error)
	UpdateStatus(ctx context.Context, orderID, paymentID, status string) error
}
