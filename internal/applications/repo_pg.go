package applications

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

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (
    id, job_id, seeker_id, status, resume_key, approval_fee, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.SeekerID,
		app.Status,
		nullableString(app.ResumeKey),
		app.ApprovalFee,
		app.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	const query = `
SELECT id, job_id, seeker_id, status, resume_key, approval_fee, created_at, updated_at
FROM applications
WHERE id = $1
LIMIT 1`
	var app Application
	var resumeKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, applicationID).Scan(
		&app.ID,
		&app.JobID,
		&app.SeekerID,
		&app.Status,
		&resumeKey,
		&app.ApprovalFee,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	if resumeKey.Valid {
		app.ResumeKey = resumeKey.String
	}
	return app, nil
}

func (r *PGRepo) ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, error) {
	const query = `
SELECT id, job_id, seeker_id, status, resume_key, approval_fee, created_at, updated_at
FROM applications
WHERE seeker_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, seekerID, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	const query = `
SELECT id, job_id, seeker_id, status, resume_key, approval_fee, created_at, updated_at
FROM applications
WHERE job_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, jobID, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, applicationID, status string, approvalFee int64) error {
	const query = `
UPDATE applications
SET status = $2,
    approval_fee = CASE WHEN $3 > 0 THEN $3 ELSE approval_fee END,
    updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, applicationID, status, approvalFee)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplications(rows *sql.Rows) ([]Application, error) {
	var out []Application
	for rows.Next() {
		var app Application
		var resumeKey sql.NullString
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.SeekerID,
			&app.Status,
			&resumeKey,
			&app.ApprovalFee,
			&app.CreatedAt,
			&app.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if resumeKey.Valid {
			app.ResumeKey = resumeKey.String
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
