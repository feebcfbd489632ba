package applications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps applications in memory for local development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	apps map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{apps: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.JobID == app.JobID && existing.SeekerID == app.SeekerID {
			return ErrDuplicate
		}
	}
	r.apps[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[applicationID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, app := range r.apps {
		if app.SeekerID == seekerID {
			out = append(out, app)
		}
	}
	return window(out, limit, offset), nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, app := range r.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	return window(out, limit, offset), nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, applicationID, status string, approvalFee int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[applicationID]
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	if approvalFee > 0 {
		app.ApprovalFee = approvalFee
	}
	app.UpdatedAt = time.Now().UTC()
	r.apps[applicationID] = app
	return nil
}

// ClaimGuest reassigns a guest's applications to the authed user,
// skipping jobs the authed user already applied to.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	authedJobs := make(map[string]struct{})
	for _, app := range r.apps {
		if app.SeekerID == authedUserID {
			authedJobs[app.JobID] = struct{}{}
		}
	}
	count := 0
	for id, app := range r.apps {
		if app.SeekerID != guestUserID {
			continue
		}
		if _, taken := authedJobs[app.JobID]; taken {
			continue
		}
		app.SeekerID = authedUserID
		app.UpdatedAt = time.Now().UTC()
		r.apps[id] = app
		count++
	}
	return count, nil
}

func window(apps []Application, limit, offset int) []Application {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(apps) {
		return nil
	}
	end := offset + limit
	if end > len(apps) {
		end = len(apps)
	}
	return apps[offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
