package aadhaar

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("aadhaar documents not found")

// Repo defines persistence operations for Aadhaar document pairs.
type Repo interface {
	Upsert(ctx context.Context, pair DocumentPair) error
	GetBySeeker(ctx context.Context, seekerID string) (DocumentPair, error)
}
