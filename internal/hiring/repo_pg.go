package hiring

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const intentColumns = `
id, application_id, seeker_id, idempotency_key, order_id, payment_id, amount, state, attempts, last_error, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, intent ApprovalIntent) error {
	const query = `
INSERT INTO approval_intents (
    id, application_id, seeker_id, idempotency_key, order_id, payment_id, amount, state, attempts, last_error, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		intent.ID,
		intent.ApplicationID,
		intent.SeekerID,
		nullable(intent.IdempotencyKey),
		nullable(intent.OrderID),
		nullable(intent.PaymentID),
		intent.Amount,
		intent.State,
		intent.Attempts,
		nullable(intent.LastError),
		intent.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, intentID string) (ApprovalIntent, error) {
	const query = `
SELECT ` + intentColumns + `
FROM approval_intents
WHERE id = $1
LIMIT 1`
	return scanIntent(r.DB.QueryRowContext(ctx, query, intentID))
}

func (r *PGRepo) GetByOrderID(ctx context.Context, orderID string) (ApprovalIntent, error) {
	if orderID == "" {
		return ApprovalIntent{}, ErrNotFound
	}
	const query = `
SELECT ` + intentColumns + `
FROM approval_intents
WHERE order_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return scanIntent(r.DB.QueryRowContext(ctx, query, orderID))
}

func (r *PGRepo) GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (ApprovalIntent, error) {
	if idempotencyKey == "" {
		return ApprovalIntent{}, ErrNotFound
	}
	const query = `
SELECT ` + intentColumns + `
FROM approval_intents
WHERE application_id = $1 AND idempotency_key = $2
LIMIT 1`
	return scanIntent(r.DB.QueryRowContext(ctx, query, applicationID, idempotencyKey))
}

func (r *PGRepo) LatestByApplication(ctx context.Context, applicationID string) (ApprovalIntent, error) {
	const query = `
SELECT ` + intentColumns + `
FROM approval_intents
WHERE application_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return scanIntent(r.DB.QueryRowContext(ctx, query, applicationID))
}

func (r *PGRepo) Advance(ctx context.Context, intentID, fromState, toState string, update IntentUpdate) error {
	if !CanAdvance(fromState, toState) {
		return ErrBadTransition
	}
	const query = `
UPDATE approval_intents
SET state = $3,
    order_id = COALESCE($4, order_id),
    payment_id = COALESCE($5, payment_id),
    amount = CASE WHEN $6 > 0 THEN $6 ELSE amount END,
    last_error = $7,
    attempts = attempts + $8,
    updated_at = now()
WHERE id = $1 AND state = $2`
	bump := 0
	if update.BumpAttempts {
		bump = 1
	}
	res, err := r.DB.ExecContext(ctx, query,
		intentID,
		fromState,
		toState,
		nullable(update.OrderID),
		nullable(update.PaymentID),
		update.Amount,
		nullable(update.LastError),
		bump,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, intentID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStaleState
	}
	return nil
}

func (r *PGRepo) ListInState(ctx context.Context, state string, updatedBefore time.Time, limit int) ([]ApprovalIntent, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT ` + intentColumns + `
FROM approval_intents
WHERE state = $1 AND updated_at < $2
ORDER BY updated_at ASC
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, state, updatedBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ApprovalIntent
	for rows.Next() {
		intent, err := scanIntentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, intent)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntent(row *sql.Row) (ApprovalIntent, error) {
	intent, err := scanIntentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ApprovalIntent{}, ErrNotFound
		}
		return ApprovalIntent{}, err
	}
	return intent, nil
}

func scanIntentRow(row rowScanner) (ApprovalIntent, error) {
	var intent ApprovalIntent
	var idempotencyKey, orderID, paymentID, lastError sql.NullString
	err := row.Scan(
		&intent.ID,
		&intent.ApplicationID,
		&intent.SeekerID,
		&idempotencyKey,
		&orderID,
		&paymentID,
		&intent.Amount,
		&intent.State,
		&intent.Attempts,
		&lastError,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if err != nil {
		return ApprovalIntent{}, err
	}
	if idempotencyKey.Valid {
		intent.IdempotencyKey = idempotencyKey.String
	}
	if orderID.Valid {
		intent.OrderID = orderID.String
	}
	if paymentID.Valid {
		intent.PaymentID = paymentID.String
	}
	if lastError.Valid {
		intent.LastError = lastError.String
	}
	return intent, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
