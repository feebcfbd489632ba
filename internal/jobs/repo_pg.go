package jobs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (
    id, company_id, company_name, title, description, category, location, monthly_salary, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.CompanyID,
		job.CompanyName,
		job.Title,
		job.Description,
		job.Category,
		job.Location,
		job.MonthlySalary,
		job.Status,
		job.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT id, company_id, company_name, title, description, category, location, monthly_salary, status, created_at, updated_at
FROM jobs
WHERE id = $1
LIMIT 1`
	var job Job
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID,
		&job.CompanyID,
		&job.CompanyName,
		&job.Title,
		&job.Description,
		&job.Category,
		&job.Location,
		&job.MonthlySalary,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

func (r *PGRepo) ListOpen(ctx context.Context, filter ListFilter) ([]Job, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, company_id, company_name, title, description, category, location, monthly_salary, status, created_at, updated_at
FROM jobs
WHERE status = 'open'
  AND ($1 = '' OR category = $1)
  AND ($2 = '' OR location = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, filter.Category, filter.Location, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PGRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, company_id, company_name, title, description, category, location, monthly_salary, status, created_at, updated_at
FROM jobs
WHERE company_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, jobID, status string) error {
	const query = `
UPDATE jobs SET status = $2, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, jobID, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(
			&job.ID,
			&job.CompanyID,
			&job.CompanyName,
			&job.Title,
			&job.Description,
			&job.Category,
			&job.Location,
			&job.MonthlySalary,
			&job.Status,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
