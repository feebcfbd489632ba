package payments

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps payments in memory for local development and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	payments map[string]Payment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{payments: make(map[string]Payment)}
}

func (r *MemoryRepo) Create(ctx context.Context, payment Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.OrderID == payment.OrderID {
			return ErrDuplicate
		}
		if payment.IdempotencyKey != "" &&
			existing.ApplicationID == payment.ApplicationID &&
			existing.IdempotencyKey == payment.IdempotencyKey {
			return ErrDuplicate
		}
	}
	r.payments[payment.ID] = payment
	return nil
}

func (r *MemoryRepo) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	if err := ctx.Err(); err != nil {
		return Payment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			return payment, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *MemoryRepo) GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (Payment, error) {
	if err := ctx.Err(); err != nil {
		return Payment{}, err
	}
	if idempotencyKey == "" {
		return Payment{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, payment := range r.payments {
		if payment.ApplicationID == applicationID && payment.IdempotencyKey == idempotencyKey {
			return payment, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, orderID, paymentID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, payment := range r.payments {
		if payment.OrderID == orderID {
			payment.PaymentID = paymentID
			payment.Status = status
			payment.UpdatedAt = time.Now().UTC()
			r.payments[id] = payment
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
