package applications

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobgujarat-backend/internal/extract"
	"jobgujarat-backend/internal/jobs"
	"jobgujarat-backend/internal/shared/storage/object"
	"jobgujarat-backend/internal/shared/telemetry"
)

// MaxResumeBytes caps resume snapshot uploads.
const MaxResumeBytes = 5 << 20

var (
	ErrNotHired     = errors.New("application not hired")
	ErrResumeTooBig = errors.New("resume exceeds size limit")
	ErrResumeFormat = errors.New("unsupported resume format")
	errMissingDeps  = errors.New("missing dependencies")
)

// Service coordinates applications with jobs and the object store.
type Service struct {
	Repo  Repo
	Jobs  jobs.Repo
	Store object.ObjectStore
}

// Apply creates an application for an open job with a resume snapshot.
func (s *Service) Apply(ctx context.Context, seekerID, jobID, fileName string, size int64, file io.Reader) (Application, error) {
	if strings.TrimSpace(seekerID) == "" || strings.TrimSpace(jobID) == "" {
		return Application{}, ErrInvalidInput
	}
	if s.Repo == nil || s.Jobs == nil || s.Store == nil {
		return Application{}, errMissingDeps
	}
	if size > MaxResumeBytes {
		return Application{}, ErrResumeTooBig
	}

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	if job.Status != jobs.StatusOpen {
		return Application{}, ErrJobClosed
	}

	resumeKey := ""
	if file != nil {
		limited := io.LimitReader(file, MaxResumeBytes+1)
		key, n, mimeType, err := s.Store.Save(ctx, seekerID, fileName, limited)
		if err != nil {
			return Application{}, err
		}
		if n > MaxResumeBytes {
			s.discard(ctx, key)
			return Application{}, ErrResumeTooBig
		}
		if !resumeMimeAllowed(mimeType) {
			s.discard(ctx, key)
			return Application{}, ErrResumeFormat
		}
		resumeKey = key

		// Extraction feeds applicant search; an unreadable file should
		// not block the application itself.
		if _, err := extract.ResumeText(ctx, s.Store, key, mimeType, fileName); err != nil {
			telemetry.Error("resume.extract.failed", map[string]any{
				"jobId": jobID,
				"error": err.Error(),
			})
		}
	}

	now := time.Now().UTC()
	app := Application{
		ID:        uuid.NewString(),
		JobID:     jobID,
		SeekerID:  seekerID,
		Status:    StatusApplied,
		ResumeKey: resumeKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		// A rejected application (duplicate or otherwise) must not leave
		// an orphaned snapshot behind.
		if resumeKey != "" {
			s.discard(ctx, resumeKey)
		}
		return Application{}, err
	}
	return app, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Error("resume.discard.failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Get returns an application if the caller owns it or owns the job.
func (s *Service) Get(ctx context.Context, callerID, applicationID string) (Application, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	if app.SeekerID == callerID {
		return app, nil
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err == nil && job.CompanyID == callerID {
		return app, nil
	}
	return Application{}, ErrForbidden
}

func (s *Service) ListBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]Application, error) {
	if strings.TrimSpace(seekerID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListBySeeker(ctx, seekerID, limit, offset)
}

// ListApplicants lists a job's applications for the owning company.
func (s *Service) ListApplicants(ctx context.Context, companyID, jobID string, limit, offset int) ([]Application, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, ErrForbidden
	}
	return s.Repo.ListByJob(ctx, jobID, limit, offset)
}

// Advance moves an application between statuses on behalf of the owning
// company. Marking HIRED fixes the approval fee the seeker must pay.
func (s *Service) Advance(ctx context.Context, companyID, applicationID, toStatus string, approvalFee int64) (Application, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.CompanyID != companyID {
		return Application{}, ErrForbidden
	}
	if !CanTransition(app.Status, toStatus) {
		return Application{}, ErrBadTransition
	}

	fee := int64(0)
	if toStatus == StatusHired {
		fee = approvalFee
		if fee <= 0 {
			fee = DefaultApprovalFee
		}
	}
	if err := s.Repo.UpdateStatus(ctx, applicationID, toStatus, fee); err != nil {
		return Application{}, err
	}
	return s.Repo.GetByID(ctx, applicationID)
}

// FeeQuote returns the approval fee view for a hired application, read fresh
// from the store so the order amount can never rely on a stale value.
func (s *Service) FeeQuote(ctx context.Context, seekerID, applicationID string) (FeeQuote, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return FeeQuote{}, err
	}
	if app.SeekerID != seekerID {
		return FeeQuote{}, ErrForbidden
	}
	if app.Status != StatusHired {
		return FeeQuote{}, ErrNotHired
	}

	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return FeeQuote{}, err
	}

	fee := app.ApprovalFee
	if fee <= 0 {
		fee = DefaultApprovalFee
	}
	return FeeQuote{
		ApprovalFee:   fee,
		JobTitle:      job.Title,
		CompanyName:   job.CompanyName,
		MonthlySalary: job.MonthlySalary,
	}, nil
}

func resumeMimeAllowed(mimeType string) bool {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "application/pdf", "application/zip",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/octet-stream":
		return true
	default:
		return false
	}
}
