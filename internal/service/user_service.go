package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/security"
	"mutuelle/internal/validation"
)

// User management errors
var (
	ErrEmailTaken  = errors.New("an account with this email already exists")
	ErrLastAdmin   = errors.New("cannot suspend the last active administrator")
	ErrInvalidRole = errors.New("role must be admin or member")
)

// CreateUserInput carries the fields an administrator supplies when
// registering a new account
type CreateUserInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	NationalID string
	Phone      string
	Address    string
	BirthDate  *time.Time
	Role       string
}

// UserService handles administrator-side account management: registration,
// profile edits on behalf of members, and suspension.
type UserService struct {
	profileRepo *repository.ProfileRepository
	dispatcher  *AuthDispatcher
	email       *EmailService
}

// NewUserService creates a new user service. The email service is optional;
// when nil, new accounts are not notified.
func NewUserService(profileRepo *repository.ProfileRepository, dispatcher *AuthDispatcher, email *EmailService) *UserService {
	return &UserService{
		profileRepo: profileRepo,
		dispatcher:  dispatcher,
		email:       email,
	}
}

// List returns all accounts, most recently created first
func (s *UserService) List() ([]*models.Profile, error) {
	return s.profileRepo.List()
}

// Get returns one account by ID
func (s *UserService) Get(id string) (*models.Profile, error) {
	p, err := s.profileRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Create registers a new account. The password supplied here is provisional:
// the account is flagged for a mandatory password change on first login.
func (s *UserService) Create(ctx context.Context, in *CreateUserInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("last_name", in.LastName); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, ErrInvalidRole
	}

	existing, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Create(&models.Profile{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		NationalID:   strings.TrimSpace(in.NationalID),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		BirthDate:    in.BirthDate,
		Role:         role,
		Status:       models.StatusActive,
		FirstLogin:   true,
	})
	if err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, profile.Email, profile.FullName()); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", profile.Email, err)
		}
	}

	log.Printf("Account created: %s (%s)", profile.Email, profile.Role)
	return profile, nil
}

// Update edits an account's profile fields on behalf of an administrator
func (s *UserService) Update(id string, upd *models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.ValidateName("first_name", upd.FirstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("last_name", upd.LastName); err != nil {
		return nil, err
	}

	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateFields(id, upd); err != nil {
		return nil, err
	}

	profile, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Emit(AuthEvent{Type: AuthProfileUpdated, UserID: id})
	return profile, nil
}

// SetStatus activates or suspends an account. Suspending an account also
// removes its sessions so the change takes effect immediately. Suspending
// the last active administrator is refused.
func (s *UserService) SetStatus(id, status string) (*models.Profile, error) {
	if status != models.StatusActive && status != models.StatusSuspended {
		return nil, errors.New("status must be active or suspended")
	}

	profile, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if status == models.StatusSuspended && profile.IsAdmin() {
		admins, err := s.profileRepo.CountByRole(models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	if err := s.profileRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	profile.Status = status

	if status == models.StatusSuspended {
		if err := s.profileRepo.DeleteUserSessions(id); err != nil {
			log.Printf("Warning: failed to clear sessions for suspended account %s: %v", id, err)
		}
		s.dispatcher.Emit(AuthEvent{Type: AuthSignedOut, UserID: id})
	}

	return profile, nil
}

// Delete removes an account entirely. Sessions, dependents and requests go
// with it through foreign key cascades.
func (s *UserService) Delete(id string) error {
	profile, err := s.Get(id)
	if err != nil {
		return err
	}
	if profile.IsAdmin() {
		admins, err := s.profileRepo.CountByRole(models.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.profileRepo.Delete(id); err != nil {
		return err
	}
	s.dispatcher.Emit(AuthEvent{Type: AuthSignedOut, UserID: id})
	return nil
}
