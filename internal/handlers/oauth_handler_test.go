package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/security"
	"mutuelle/internal/service"
)

func newOAuthTestHandler(t *testing.T) (*OAuthHandler, *repository.ProfileRepository) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	dispatcher := service.NewAuthDispatcher()
	t.Cleanup(dispatcher.Close)
	auth := service.NewAuthService(profileRepo, dispatcher, time.Hour)

	return NewOAuthHandler(auth, "client-id", "client-secret", "http://localhost"), profileRepo
}

func seedOAuthProfile(t *testing.T, repo *repository.ProfileRepository, email, role, status string) *models.Profile {
	t.Helper()

	hash, err := security.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	profile, err := repo.Create(&models.Profile{
		Email: email, PasswordHash: hash,
		FirstName: "Test", LastName: "User",
		Role: role, Status: status,
	})
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

func TestOAuthCompleteLogin(t *testing.T) {
	h, repo := newOAuthTestHandler(t)
	seedOAuthProfile(t, repo, "member@example.com", models.RoleMember, models.StatusActive)
	seedOAuthProfile(t, repo, "admin@example.com", models.RoleAdmin, models.StatusActive)
	seedOAuthProfile(t, repo, "suspended@example.com", models.RoleMember, models.StatusSuspended)

	tests := []struct {
		name       string
		email      string
		wantTarget string
		wantCookie bool
	}{
		{"known member", "member@example.com", "/member", true},
		{"known admin", "admin@example.com", "/admin", true},
		// Unknown and suspended accounts land back on the login page as a
		// browser redirect, never a JSON error body
		{"unknown address", "nobody@example.com", "/login", false},
		{"suspended account", "suspended@example.com", "/login", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil)
			rec := httptest.NewRecorder()
			h.completeLogin(rec, req, &googleIdentity{Subject: "sub-123", Email: tt.email})

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantTarget {
				t.Errorf("redirect location = %q, want %q", loc, tt.wantTarget)
			}

			gotCookie := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == security.SessionCookieName && c.Value != "" {
					gotCookie = true
				}
			}
			if gotCookie != tt.wantCookie {
				t.Errorf("session cookie set = %v, want %v", gotCookie, tt.wantCookie)
			}
		})
	}
}
