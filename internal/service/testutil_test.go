package service

import (
	"path/filepath"
	"testing"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/security"
)

// newTestDB opens a throwaway sqlite database with the real migrations
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T, db *database.DB) (*AuthService, *repository.ProfileRepository) {
	t.Helper()
	profileRepo := repository.NewProfileRepository(db)
	dispatcher := NewAuthDispatcher()
	t.Cleanup(dispatcher.Close)
	return NewAuthService(profileRepo, dispatcher, time.Hour), profileRepo
}

// seedProfile inserts an account with the given password and returns it
func seedProfile(t *testing.T, repo *repository.ProfileRepository, email, password, role string) *models.Profile {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	profile, err := repo.Create(&models.Profile{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Status:       models.StatusActive,
		FirstLogin:   true,
	})
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

// seedService inserts a catalog entry
func seedService(t *testing.T, repo *repository.ServiceRepository, name string, maxAmount float64, active bool) *models.Service {
	t.Helper()

	svc, err := repo.Create(&models.Service{
		Name:      name,
		MaxAmount: maxAmount,
		IsActive:  active,
	})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return svc
}
