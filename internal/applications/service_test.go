package applications

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"jobgujarat-backend/internal/jobs"
	localstore "jobgujarat-backend/internal/shared/storage/object/local"
)

// Minimal valid PDF so the stored snapshot sniffs as application/pdf.
var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func newTestService(t *testing.T) (*Service, *MemoryRepo, *jobs.MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	jobsRepo := jobs.NewMemoryRepo()
	svc := &Service{
		Repo:  repo,
		Jobs:  jobsRepo,
		Store: localstore.New(t.TempDir()),
	}

	now := time.Now().UTC()
	job := jobs.Job{
		ID:            "job-1",
		CompanyID:     "company-1",
		CompanyName:   "Sardar Textiles",
		Title:         "Loom Operator",
		MonthlySalary: 1800000,
		Status:        jobs.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := jobsRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return svc, repo, jobsRepo
}

func TestApplyCreatesApplication(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != StatusApplied {
		t.Fatalf("expected APPLIED, got %s", app.Status)
	}
	if app.ResumeKey == "" {
		t.Fatal("expected stored resume key")
	}

	// Same seeker cannot apply to the same job twice.
	_, err = svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestApplyRejectsClosedJob(t *testing.T) {
	svc, _, jobsRepo := newTestService(t)
	ctx := context.Background()

	if err := jobsRepo.UpdateStatus(ctx, "job-1", jobs.StatusClosed); err != nil {
		t.Fatalf("close job: %v", err)
	}
	_, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if !errors.Is(err, ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
}

func TestApplyRejectsUnsupportedResume(t *testing.T) {
	svc, _, _ := newTestService(t)

	payload := []byte("GIF89a definitely not a resume")
	_, err := svc.Apply(context.Background(), "seeker-1", "job-1", "resume.gif", int64(len(payload)), bytes.NewReader(payload))
	if !errors.Is(err, ErrResumeFormat) {
		t.Fatalf("expected ErrResumeFormat, got %v", err)
	}
}

func TestApplyCleansUpRejectedSnapshots(t *testing.T) {
	repo := NewMemoryRepo()
	jobsRepo := jobs.NewMemoryRepo()
	dir := t.TempDir()
	svc := &Service{Repo: repo, Jobs: jobsRepo, Store: localstore.New(dir)}
	ctx := context.Background()

	now := time.Now().UTC()
	job := jobs.Job{ID: "job-1", CompanyID: "company-1", Status: jobs.StatusOpen, CreatedAt: now, UpdatedAt: now}
	if err := jobsRepo.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	payload := []byte("GIF89a definitely not a resume")
	_, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.gif", int64(len(payload)), bytes.NewReader(payload))
	if !errors.Is(err, ErrResumeFormat) {
		t.Fatalf("expected ErrResumeFormat, got %v", err)
	}
	if n := countStoredFiles(t, dir); n != 0 {
		t.Fatalf("expected no stored objects after format rejection, got %d", n)
	}

	if _, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	stored := countStoredFiles(t, dir)

	// The duplicate application must not leave a second snapshot behind.
	_, err = svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if n := countStoredFiles(t, dir); n != stored {
		t.Fatalf("expected %d stored objects after duplicate rejection, got %d", stored, n)
	}
}

func countStoredFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk store dir: %v", err)
	}
	return count
}

func TestAdvanceEnforcesTransitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// APPLIED cannot jump straight to HIRED.
	_, err = svc.Advance(ctx, "company-1", app.ID, StatusHired, 0)
	if !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}

	// Only the job owner can advance.
	_, err = svc.Advance(ctx, "company-2", app.ID, StatusInterview, 0)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.Advance(ctx, "company-1", app.ID, StatusInterview, 0); err != nil {
		t.Fatalf("advance to interview: %v", err)
	}
	hired, err := svc.Advance(ctx, "company-1", app.ID, StatusHired, 0)
	if err != nil {
		t.Fatalf("advance to hired: %v", err)
	}
	if hired.ApprovalFee != DefaultApprovalFee {
		t.Fatalf("expected default approval fee %d, got %d", DefaultApprovalFee, hired.ApprovalFee)
	}

	// HIRED is terminal.
	_, err = svc.Advance(ctx, "company-1", app.ID, StatusRejected, 0)
	if !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition from HIRED, got %v", err)
	}
}

func TestAdvanceHiredWithCustomFee(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Advance(ctx, "company-1", app.ID, StatusInterview, 0); err != nil {
		t.Fatalf("advance to interview: %v", err)
	}
	hired, err := svc.Advance(ctx, "company-1", app.ID, StatusHired, 75000)
	if err != nil {
		t.Fatalf("advance to hired: %v", err)
	}
	if hired.ApprovalFee != 75000 {
		t.Fatalf("expected fee 75000, got %d", hired.ApprovalFee)
	}
}

func TestFeeQuote(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	_, err = svc.FeeQuote(ctx, "seeker-1", app.ID)
	if !errors.Is(err, ErrNotHired) {
		t.Fatalf("expected ErrNotHired before hire, got %v", err)
	}

	if _, err := svc.Advance(ctx, "company-1", app.ID, StatusInterview, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := svc.Advance(ctx, "company-1", app.ID, StatusHired, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}

	quote, err := svc.FeeQuote(ctx, "seeker-1", app.ID)
	if err != nil {
		t.Fatalf("fee quote: %v", err)
	}
	if quote.ApprovalFee != DefaultApprovalFee {
		t.Fatalf("expected fee %d, got %d", DefaultApprovalFee, quote.ApprovalFee)
	}
	if quote.CompanyName != "Sardar Textiles" || quote.JobTitle != "Loom Operator" {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	_, err = svc.FeeQuote(ctx, "seeker-2", app.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other seeker, got %v", err)
	}
}

func TestGetVisibility(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "seeker-1", "job-1", "resume.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := svc.Get(ctx, "seeker-1", app.ID); err != nil {
		t.Fatalf("seeker get: %v", err)
	}
	if _, err := svc.Get(ctx, "company-1", app.ID); err != nil {
		t.Fatalf("company get: %v", err)
	}
	if _, err := svc.Get(ctx, "stranger", app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}
