package payments

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, payment Payment) error {
	const query = `
INSERT INTO payments (
    id, application_id, order_id, payment_id, amount, currency, payment_type, status, idempotency_key, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		payment.ID,
		payment.ApplicationID,
		payment.OrderID,
		nullable(payment.PaymentID),
		payment.Amount,
		payment.Currency,
		payment.PaymentType,
		payment.Status,
		nullable(payment.IdempotencyKey),
		payment.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	const query = `
SELECT id, application_id, order_id, payment_id, amount, currency, payment_type, status, idempotency_key, created_at, updated_at
FROM payments
WHERE order_id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, orderID))
}

func (r *PGRepo) GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (Payment, error) {
	if idempotencyKey == "" {
		return Payment{}, ErrNotFound
	}
	const query = `
SELECT id, application_id, order_id, payment_id, amount, currency, payment_type, status, idempotency_key, created_at, updated_at
FROM payments
WHERE application_id = $1 AND idempotency_key = $2
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, applicationID, idempotencyKey))
}

func (r *PGRepo) UpdateStatus(ctx context.Context, orderID, paymentID, status string) error {
	const query = `
UPDATE payments
SET payment_id = COALESCE($2, payment_id), status = $3, updated_at = now()
WHERE order_id = $1`
	res, err := r.DB.ExecContext(ctx, query, orderID, nullable(paymentID), status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) scanOne(row *sql.Row) (Payment, error) {
	var payment Payment
	var paymentID sql.NullString
	var idempotencyKey sql.NullString
	err := row.Scan(
		&payment.ID,
		&payment.ApplicationID,
		&payment.OrderID,
		&paymentID,
		&payment.Amount,
		&payment.Currency,
		&payment.PaymentType,
		&payment.Status,
		&idempotencyKey,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	if paymentID.Valid {
		payment.PaymentID = paymentID.String
	}
	if idempotencyKey.Valid {
		payment.IdempotencyKey = idempotencyKey.String
	}
	return payment, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
