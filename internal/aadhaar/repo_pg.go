package aadhaar

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, pair DocumentPair) error {
	const query = `
INSERT INTO aadhaar_documents (seeker_id, front_key, back_key, front_url, back_url, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (seeker_id) DO UPDATE SET
  front_key = EXCLUDED.front_key,
  back_key = EXCLUDED.back_key,
  front_url = EXCLUDED.front_url,
  back_url = EXCLUDED.back_url,
  uploaded_at = EXCLUDED.uploaded_at`
	_, err := r.DB.ExecContext(ctx, query,
		pair.SeekerID,
		pair.FrontKey,
		pair.BackKey,
		pair.FrontURL,
		pair.BackURL,
		pair.UploadedAt,
	)
	return err
}

func (r *PGRepo) GetBySeeker(ctx context.Context, seekerID string) (DocumentPair, error) {
	const query = `
SELECT seeker_id, front_key, back_key, front_url, back_url, uploaded_at
FROM aadhaar_documents
WHERE seeker_id = $1
LIMIT 1`
	var pair DocumentPair
	err := r.DB.QueryRowContext(ctx, query, seekerID).Scan(
		&pair.SeekerID,
		&pair.FrontKey,
		&pair.BackKey,
		&pair.FrontURL,
		&pair.BackURL,
		&pair.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentPair{}, ErrNotFound
		}
		return DocumentPair{}, err
	}
	return pair, nil
}

var _ Repo = (*PGRepo)(nil)
