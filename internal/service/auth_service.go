package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/security"
	"mutuelle/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrProfileNotFound    = errors.New("profile not found")
)

// AuthService handles authentication business logic
type AuthService struct {
	profileRepo     *repository.ProfileRepository
	dispatcher      *AuthDispatcher
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(profileRepo *repository.ProfileRepository, dispatcher *AuthDispatcher, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		profileRepo:     profileRepo,
		dispatcher:      dispatcher,
		sessionDuration: sessionDuration,
	}
}

// Events exposes the auth event dispatcher for subscribers
func (s *AuthService) Events() *AuthDispatcher {
	return s.dispatcher
}

// Login authenticates a member or administrator and creates a session.
// The session is fully established before Login returns; the signed_in event
// is only a secondary signal for observers.
func (s *AuthService) Login(email, password string) (*models.Session, *models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, profile.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if profile.IsSuspended() {
		return nil, nil, ErrAccountSuspended
	}

	session, err := s.createSession(profile.ID)
	if err != nil {
		return nil, nil, err
	}

	s.dispatcher.Emit(AuthEvent{Type: AuthSignedIn, UserID: profile.ID, SessionID: session.ID})
	return session, profile, nil
}

// ValidateSession checks if a session is valid and returns the associated
// profile. A live session whose profile row is missing is reported as
// not-found: callers treat that exactly like being unauthenticated.
func (s *AuthService) ValidateSession(sessionID string) (*models.Profile, error) {
	session, err := s.profileRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		_ = s.profileRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	profile, err := s.profileRepo.GetByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrSessionNotFound
	}

	if profile.IsSuspended() {
		_ = s.profileRepo.DeleteSession(sessionID)
		return nil, ErrAccountSuspended
	}

	return profile, nil
}

// Logout invalidates a session. The deletion is applied before the event is
// emitted, so callers observe the logged-out state immediately.
func (s *AuthService) Logout(sessionID string) error {
	session, err := s.profileRepo.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.profileRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	ev := AuthEvent{Type: AuthSignedOut, SessionID: sessionID}
	if session != nil {
		ev.UserID = session.UserID
	}
	s.dispatcher.Emit(ev)
	return nil
}

// ChangePassword verifies the current password against the stored hash and
// only then writes the new one. A successful change clears the profile's
// first_login flag. Verification failure and write failure both surface as
// errors; HTTP callers do not distinguish them.
func (s *AuthService) ChangePassword(userID, currentPassword, newPassword string) error {
	profile, err := s.profileRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	// Verify-then-change
	if !security.CheckPassword(currentPassword, profile.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if profile.FirstLogin {
		if err := s.profileRepo.ClearFirstLogin(userID); err != nil {
			log.Printf("Warning: failed to clear first_login for %s: %v", userID, err)
		}
	}

	s.dispatcher.Emit(AuthEvent{Type: AuthCredentialsUpdated, UserID: userID})
	return nil
}

// RequestPasswordReset creates a password reset token and sends an email.
// Unknown addresses are not revealed to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailService *EmailService, email string) error {
	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil
	}

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	// Delete any existing reset tokens for this profile
	_ = s.profileRepo.DeleteUserPasswordResetTokens(profile.ID)

	// Token expires in 1 hour
	expiresAt := time.Now().Add(1 * time.Hour)
	if err := s.profileRepo.CreatePasswordResetToken(token, profile.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendPasswordResetEmail(ctx, profile.Email, profile.FullName(), token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ValidatePasswordResetToken checks if a reset token is usable
func (s *AuthService) ValidatePasswordResetToken(token string) (bool, error) {
	resetToken, err := s.profileRepo.GetPasswordResetToken(token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return false, nil
	}
	return true, nil
}

// ResetPassword resets a profile's password using a valid token. All of the
// profile's sessions are invalidated so every device must sign in again.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.profileRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil {
		return errors.New("invalid or expired reset token")
	}
	if resetToken.Used {
		return errors.New("this reset link has already been used")
	}
	if resetToken.IsExpired() {
		return errors.New("this reset link has expired")
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.profileRepo.MarkPasswordResetTokenUsed(token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}

	// Force re-login everywhere
	if err := s.profileRepo.DeleteUserSessions(resetToken.UserID); err != nil {
		log.Printf("Warning: failed to invalidate sessions for %s: %v", resetToken.UserID, err)
	}

	s.dispatcher.Emit(AuthEvent{Type: AuthCredentialsUpdated, UserID: resetToken.UserID})
	return nil
}

// OAuthLogin signs in an existing profile matched by verified email. OAuth
// never creates accounts here; registration is an admin operation.
func (s *AuthService) OAuthLogin(provider, subject, email string) (*models.Session, *models.Profile, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, nil, ErrProfileNotFound
	}
	if profile.IsSuspended() {
		return nil, nil, ErrAccountSuspended
	}

	session, err := s.createSession(profile.ID)
	if err != nil {
		return nil, nil, err
	}

	s.dispatcher.Emit(AuthEvent{Type: AuthSignedIn, UserID: profile.ID, SessionID: session.ID})
	return session, profile, nil
}

// GetProfile returns a profile by ID
func (s *AuthService) GetProfile(userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateProfile writes the member-editable fields and reloads the profile so
// callers always see exactly what the database holds (no optimistic merge).
func (s *AuthService) UpdateProfile(userID string, upd *models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.ValidateName("first_name", upd.FirstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("last_name", upd.LastName); err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateFields(userID, upd); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	s.dispatcher.Emit(AuthEvent{Type: AuthProfileUpdated, UserID: userID})
	return profile, nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.profileRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens() error {
	if err := s.profileRepo.DeleteExpiredPasswordResetTokens(); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}

func (s *AuthService) createSession(userID string) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.profileRepo.CreateSession(sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
