package service

import (
	"errors"
	"testing"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

func newUserEnv(t *testing.T) (*UserService, *AuthService, *repository.ProfileRepository) {
	t.Helper()
	db := newTestDB(t)
	profileRepo := repository.NewProfileRepository(db)
	dispatcher := NewAuthDispatcher()
	t.Cleanup(dispatcher.Close)
	auth := NewAuthService(profileRepo, dispatcher, time.Hour)
	users := NewUserService(profileRepo, dispatcher, nil)
	return users, auth, profileRepo
}

func TestCreateUser(t *testing.T) {
	users, auth, _ := newUserEnv(t)

	profile, err := users.Create(t.Context(), &CreateUserInput{
		Email:     "New.Member@Example.com",
		Password:  "provisional1",
		FirstName: "Sofia",
		LastName:  "Bernard",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if profile.Email != "new.member@example.com" {
		t.Errorf("email = %q, want lowercased", profile.Email)
	}
	if profile.Role != models.RoleMember {
		t.Errorf("role = %q, want member by default", profile.Role)
	}
	if !profile.FirstLogin {
		t.Error("new account should be flagged for first-login password change")
	}

	// The provisional password signs in
	if _, _, err := auth.Login("new.member@example.com", "provisional1"); err != nil {
		t.Errorf("Login() with provisional password error = %v", err)
	}

	// The address is now taken
	if _, err := users.Create(t.Context(), &CreateUserInput{
		Email: "new.member@example.com", Password: "whatever12", FirstName: "Aa", LastName: "Bb",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Create() error = %v, want ErrEmailTaken", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	users, _, _ := newUserEnv(t)

	tests := []struct {
		name  string
		input *CreateUserInput
	}{
		{"bad email", &CreateUserInput{Email: "not-an-email", Password: "password123", FirstName: "Aa", LastName: "Bb"}},
		{"short password", &CreateUserInput{Email: "a@b.fr", Password: "short", FirstName: "Aa", LastName: "Bb"}},
		{"missing first name", &CreateUserInput{Email: "a@b.fr", Password: "password123", LastName: "Bb"}},
		{"bad role", &CreateUserInput{Email: "a@b.fr", Password: "password123", FirstName: "Aa", LastName: "Bb", Role: "superuser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := users.Create(t.Context(), tt.input); err == nil {
				t.Error("Create() should have failed")
			}
		})
	}
}

func TestSuspendUser(t *testing.T) {
	users, auth, repo := newUserEnv(t)
	member := seedProfile(t, repo, "member@example.com", "password123", models.RoleMember)

	session, _, err := auth.Login("member@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := users.SetStatus(member.ID, models.StatusSuspended); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	// Suspension kills the live session immediately
	if _, err := auth.ValidateSession(session.ID); err == nil {
		t.Error("session survived suspension")
	}
	if _, _, err := auth.Login("member@example.com", "password123"); !errors.Is(err, ErrAccountSuspended) {
		t.Errorf("Login() error = %v, want ErrAccountSuspended", err)
	}

	// Reactivation restores access
	if _, err := users.SetStatus(member.ID, models.StatusActive); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if _, _, err := auth.Login("member@example.com", "password123"); err != nil {
		t.Errorf("Login() after reactivation error = %v", err)
	}
}

func TestLastAdminProtection(t *testing.T) {
	users, _, repo := newUserEnv(t)
	admin := seedProfile(t, repo, "admin@example.com", "password123", models.RoleAdmin)

	if _, err := users.SetStatus(admin.ID, models.StatusSuspended); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("SetStatus() error = %v, want ErrLastAdmin", err)
	}
	if err := users.Delete(admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("Delete() error = %v, want ErrLastAdmin", err)
	}

	// With a second admin, suspension goes through
	seedProfile(t, repo, "admin2@example.com", "password123", models.RoleAdmin)
	if _, err := users.SetStatus(admin.ID, models.StatusSuspended); err != nil {
		t.Errorf("SetStatus() with two admins error = %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	users, _, repo := newUserEnv(t)
	member := seedProfile(t, repo, "member@example.com", "password123", models.RoleMember)

	if err := users.Delete(member.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := users.Get(member.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrProfileNotFound", err)
	}
}
