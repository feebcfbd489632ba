package aadhaar

import (
	"context"
	"sync"
)

// MemoryRepo keeps document pairs in memory for local development and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	pairs map[string]DocumentPair
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{pairs: make(map[string]DocumentPair)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, pair DocumentPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[pair.SeekerID] = pair
	return nil
}

func (r *MemoryRepo) GetBySeeker(ctx context.Context, seekerID string) (DocumentPair, error) {
	if err := ctx.Err(); err != nil {
		return DocumentPair{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pair, ok := r.pairs[seekerID]
	if !ok {
		return DocumentPair{}, ErrNotFound
	}
	return pair, nil
}

// ClaimGuest moves a guest's document pair to the authed user unless
// the authed user already uploaded one.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pair, ok := r.pairs[guestUserID]
	if !ok {
		return 0, nil
	}
	if _, taken := r.pairs[authedUserID]; taken {
		delete(r.pairs, guestUserID)
		return 0, nil
	}
	pair.SeekerID = authedUserID
	r.pairs[authedUserID] = pair
	delete(r.pairs, guestUserID)
	return 1, nil
}

var _ Repo = (*MemoryRepo)(nil)
