package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/applications"
)

func claimRouter(appsRepo applications.Repo, aadhaarRepo aadhaar.Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(appsRepo, aadhaarRepo)
	handler := NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesData(t *testing.T) {
	appsRepo := applications.NewMemoryRepo()
	aadhaarRepo := aadhaar.NewMemoryRepo()
	router := claimRouter(appsRepo, aadhaarRepo)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	app := applications.Application{
		ID:        "app-1",
		JobID:     "job-1",
		SeekerID:  guestUserID,
		Status:    applications.StatusApplied,
		CreatedAt: time.Now().UTC(),
	}
	if err := appsRepo.Create(context.Background(), app); err != nil {
		t.Fatalf("create application: %v", err)
	}
	pair := aadhaar.DocumentPair{
		SeekerID:   guestUserID,
		FrontKey:   "aadhaar/front.jpg",
		BackKey:    "aadhaar/back.jpg",
		UploadedAt: time.Now().UTC(),
	}
	if err := aadhaarRepo.Upsert(context.Background(), pair); err != nil {
		t.Fatalf("upsert pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	apps, err := appsRepo.ListBySeeker(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 migrated application, got %d", len(apps))
	}

	if _, err := aadhaarRepo.GetBySeeker(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected migrated document pair: %v", err)
	}
}

func TestClaimGuestSkipsConflictingApplications(t *testing.T) {
	appsRepo := applications.NewMemoryRepo()
	aadhaarRepo := aadhaar.NewMemoryRepo()
	router := claimRouter(appsRepo, aadhaarRepo)

	guestID := "22222222-2222-2222-2222-222222222222"
	guestUserID := "guest:" + guestID

	existing := applications.Application{
		ID:        "app-owned",
		JobID:     "job-1",
		SeekerID:  "user-1",
		Status:    applications.StatusApplied,
		CreatedAt: time.Now().UTC(),
	}
	if err := appsRepo.Create(context.Background(), existing); err != nil {
		t.Fatalf("create application: %v", err)
	}
	guestApp := applications.Application{
		ID:        "app-guest",
		JobID:     "job-1",
		SeekerID:  guestUserID,
		Status:    applications.StatusApplied,
		CreatedAt: time.Now().UTC(),
	}
	if err := appsRepo.Create(context.Background(), guestApp); err != nil {
		t.Fatalf("create guest application: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	apps, err := appsRepo.ListBySeeker(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected conflicting application to be skipped, got %d", len(apps))
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req2.Header.Set("X-Guest-Id", guestID)
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected status 200 on idempotent call, got %d", resp2.Code)
	}
}
