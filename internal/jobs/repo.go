package jobs

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrForbidden = errors.New("job access denied")
)

// Repo defines persistence operations for jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	ListOpen(ctx context.Context, filter ListFilter) ([]Job, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Job, error)
	UpdateStatus(ctx context.Context, jobID, status string) error
}
