package users

import (
	"context"
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"company": RoleCompany,
		"admin":   RoleAdmin,
		"seeker":  RoleSeeker,
		"":        RoleSeeker,
		"COMPANY": RoleSeeker,
		"root":    RoleSeeker,
	}
	for in, want := range cases {
		if got := NormalizeRole(in); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpsertKeepsRegisteredRole(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := User{
		ID:       "google:1",
		Email:    "hr@sardartextiles.example",
		FullName: "Sardar Textiles",
		Role:     RoleCompany,
	}
	if err := svc.UpsertFromAuth(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// A later login without a role picker must not demote the account.
	returning := first
	returning.Role = ""
	returning.FullName = "Sardar Textiles Pvt Ltd"
	if err := svc.UpsertFromAuth(ctx, returning); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}

	user, err := svc.GetByID(ctx, "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Role != RoleCompany {
		t.Fatalf("expected company role preserved, got %q", user.Role)
	}
	if user.FullName != "Sardar Textiles Pvt Ltd" {
		t.Fatalf("expected refreshed name, got %q", user.FullName)
	}
}

func TestUpsertRequiresIDAndEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1"}); err == nil {
		t.Fatal("expected error for missing email")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{Email: "a@b.c"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}
