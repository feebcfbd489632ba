package hiring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps approval intents in memory for local development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	intents map[string]ApprovalIntent
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{intents: make(map[string]ApprovalIntent)}
}

func (r *MemoryRepo) Create(ctx context.Context, intent ApprovalIntent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirror the partial unique index on (application_id, idempotency_key).
	if intent.IdempotencyKey != "" {
		for _, existing := range r.intents {
			if existing.ApplicationID == intent.ApplicationID && existing.IdempotencyKey == intent.IdempotencyKey {
				return ErrDuplicate
			}
		}
	}
	r.intents[intent.ID] = intent
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, intentID string) (ApprovalIntent, error) {
	if err := ctx.Err(); err != nil {
		return ApprovalIntent{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	intent, ok := r.intents[intentID]
	if !ok {
		return ApprovalIntent{}, ErrNotFound
	}
	return intent, nil
}

func (r *MemoryRepo) GetByOrderID(ctx context.Context, orderID string) (ApprovalIntent, error) {
	if err := ctx.Err(); err != nil {
		return ApprovalIntent{}, err
	}
	if orderID == "" {
		return ApprovalIntent{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, intent := range r.intents {
		if intent.OrderID == orderID {
			return intent, nil
		}
	}
	return ApprovalIntent{}, ErrNotFound
}

func (r *MemoryRepo) GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (ApprovalIntent, error) {
	if err := ctx.Err(); err != nil {
		return ApprovalIntent{}, err
	}
	if idempotencyKey == "" {
		return ApprovalIntent{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, intent := range r.intents {
		if intent.ApplicationID == applicationID && intent.IdempotencyKey == idempotencyKey {
			return intent, nil
		}
	}
	return ApprovalIntent{}, ErrNotFound
}

func (r *MemoryRepo) LatestByApplication(ctx context.Context, applicationID string) (ApprovalIntent, error) {
	if err := ctx.Err(); err != nil {
		return ApprovalIntent{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest ApprovalIntent
	found := false
	for _, intent := range r.intents {
		if intent.ApplicationID != applicationID {
			continue
		}
		if !found || intent.CreatedAt.After(latest.CreatedAt) {
			latest = intent
			found = true
		}
	}
	if !found {
		return ApprovalIntent{}, ErrNotFound
	}
	return latest, nil
}

func (r *MemoryRepo) Advance(ctx context.Context, intentID, fromState, toState string, update IntentUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !CanAdvance(fromState, toState) {
		return ErrBadTransition
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.intents[intentID]
	if !ok {
		return ErrNotFound
	}
	if intent.State != fromState {
		return ErrStaleState
	}
	intent.State = toState
	if update.OrderID != "" {
		intent.OrderID = update.OrderID
	}
	if update.PaymentID != "" {
		intent.PaymentID = update.PaymentID
	}
	if update.Amount > 0 {
		intent.Amount = update.Amount
	}
	intent.LastError = update.LastError
	if update.BumpAttempts {
		intent.Attempts++
	}
	intent.UpdatedAt = time.Now().UTC()
	r.intents[intentID] = intent
	return nil
}

func (r *MemoryRepo) ListInState(ctx context.Context, state string, updatedBefore time.Time, limit int) ([]ApprovalIntent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ApprovalIntent
	for _, intent := range r.intents {
		if intent.State == state && intent.UpdatedAt.Before(updatedBefore) {
			out = append(out, intent)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
