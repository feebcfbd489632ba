package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps jobs in memory for local development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) ListOpen(ctx context.Context, filter ListFilter) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Job
	for _, job := range r.jobs {
		if job.Status != StatusOpen {
			continue
		}
		if filter.Category != "" && job.Category != filter.Category {
			continue
		}
		if filter.Location != "" && job.Location != filter.Location {
			continue
		}
		out = append(out, job)
	}
	sortNewestFirst(out)
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *MemoryRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Job
	for _, job := range r.jobs {
		if job.CompanyID == companyID {
			out = append(out, job)
		}
	}
	sortNewestFirst(out)
	return paginate(out, limit, offset), nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, jobID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	r.jobs[jobID] = job
	return nil
}

func sortNewestFirst(jobs []Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

func paginate(jobs []Job, limit, offset int) []Job {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(jobs) {
		return nil
	}
	end := offset + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
