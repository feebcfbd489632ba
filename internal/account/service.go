package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/applications"
)

type Service struct {
	AppsRepo    applications.Repo
	AadhaarRepo aadhaar.Repo
}

type ClaimResult struct {
	MigratedApplications int `json:"migratedApplications"`
	MigratedDocuments    int `json:"migratedDocuments"`
}

func NewService(appsRepo applications.Repo, aadhaarRepo aadhaar.Repo) *Service {
	return &Service{AppsRepo: appsRepo, AadhaarRepo: aadhaarRepo}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if appsPG, ok := s.AppsRepo.(*applications.PGRepo); ok && appsPG != nil && appsPG.DB != nil {
		if aadhaarPG, ok := s.AadhaarRepo.(*aadhaar.PGRepo); ok && aadhaarPG != nil && aadhaarPG.DB != nil {
			return claimWithTx(ctx, appsPG.DB, guestUserID, authedUserID)
		}
	}

	appCount, err := claimApplications(ctx, s.AppsRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, err := claimDocuments(ctx, s.AadhaarRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedApplications: appCount, MigratedDocuments: docCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	// Skip rows that would collide with an application the authed
	// user already has for the same job.
	appRes, err := tx.ExecContext(ctx, `
UPDATE applications SET seeker_id = $1, updated_at = now()
WHERE seeker_id = $2
  AND NOT EXISTS (
    SELECT 1 FROM applications a2
    WHERE a2.job_id = applications.job_id AND a2.seeker_id = $1
  )`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	appCount, _ := appRes.RowsAffected()

	docRes, err := tx.ExecContext(ctx, `
UPDATE aadhaar_documents SET seeker_id = $1
WHERE seeker_id = $2
  AND NOT EXISTS (
    SELECT 1 FROM aadhaar_documents d2 WHERE d2.seeker_id = $1
  )`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedApplications: int(appCount), MigratedDocuments: int(docCount)}, nil
}

type guestAppClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

type guestDocClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimApplications(ctx context.Context, repo applications.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestAppClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("applications repo does not support claim")
}

func claimDocuments(ctx context.Context, repo aadhaar.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestDocClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("aadhaar repo does not support claim")
}
