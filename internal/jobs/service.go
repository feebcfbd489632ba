package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobgujarat-backend/internal/users"
)

var ErrInvalidInput = errors.New("invalid input")

// Service handles job postings on behalf of companies.
type Service struct {
	Repo  Repo
	Users *users.Service
}

func NewService(repo Repo, userSvc *users.Service) *Service {
	return &Service{Repo: repo, Users: userSvc}
}

// CreateInput carries a new job posting.
type CreateInput struct {
	Title         string
	Description   string
	Category      string
	Location      string
	MonthlySalary int64
}

// Create posts a new open job for the company user.
func (s *Service) Create(ctx context.Context, companyID string, in CreateInput) (Job, error) {
	if strings.TrimSpace(companyID) == "" || strings.TrimSpace(in.Title) == "" {
		return Job{}, ErrInvalidInput
	}
	if in.MonthlySalary < 0 {
		return Job{}, ErrInvalidInput
	}

	// Posting requires a registered company account. A missing record or a
	// failed lookup never falls through to a created job.
	if s.Users == nil {
		return Job{}, ErrForbidden
	}
	user, err := s.Users.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Job{}, ErrForbidden
		}
		return Job{}, err
	}
	if user.Role != users.RoleCompany && user.Role != users.RoleAdmin {
		return Job{}, ErrForbidden
	}
	companyName := user.FullName

	now := time.Now().UTC()
	job := Job{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		CompanyName:   companyName,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Category:      strings.TrimSpace(in.Category),
		Location:      strings.TrimSpace(in.Location),
		MonthlySalary: in.MonthlySalary,
		Status:        StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, jobID)
}

func (s *Service) ListOpen(ctx context.Context, filter ListFilter) ([]Job, error) {
	return s.Repo.ListOpen(ctx, filter)
}

func (s *Service) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Job, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByCompany(ctx, companyID, limit, offset)
}

// Close marks a job closed. Only the owning company may close it.
func (s *Service) Close(ctx context.Context, companyID, jobID string) error {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.CompanyID != companyID {
		return ErrForbidden
	}
	if job.Status == StatusClosed {
		return nil
	}
	return s.Repo.UpdateStatus(ctx, jobID, StatusClosed)
}
