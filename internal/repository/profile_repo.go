package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
)

// ProfileRepository handles database operations for profiles, sessions and
// password reset tokens
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, password_hash, first_name, last_name, national_id,
	COALESCE(phone, ''), COALESCE(address, ''), birth_date, role, status, first_login,
	created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&p.NationalID,
		&p.Phone,
		&p.Address,
		&p.BirthDate,
		&p.Role,
		&p.Status,
		&p.FirstLogin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new profile. The caller supplies role and status; the ID
// is generated here and returned on the populated model.
func (r *ProfileRepository) Create(p *models.Profile) (*models.Profile, error) {
	if p.ID == "" {
		p.ID = security.GenerateID()
	}
	if p.Role == "" {
		p.Role = models.RoleMember
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, email, password_hash, first_name, last_name, national_id,
			phone, address, birth_date, role, status, first_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.NationalID,
		p.Phone, p.Address, p.BirthDate, p.Role, p.Status, p.FirstLogin,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// GetByEmail retrieves a profile by email address
func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE email = ?"
	p, err := scanProfile(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(id string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE id = ?"
	p, err := scanProfile(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// List returns all profiles, most recently created first
func (r *ProfileRepository) List() ([]*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles ORDER BY created_at DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateFields writes the member-editable profile fields
func (r *ProfileRepository) UpdateFields(id string, upd *models.ProfileUpdate) error {
	query := `
		UPDATE profiles
		SET first_name = ?, last_name = ?, phone = ?, address = ?, birth_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, upd.FirstName, upd.LastName, upd.Phone, upd.Address, upd.BirthDate, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRowAffected(result, "profile")
}

// UpdateStatus sets a profile's account status (active or suspended)
func (r *ProfileRepository) UpdateStatus(id, status string) error {
	query := "UPDATE profiles SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update profile status: %w", err)
	}
	return requireRowAffected(result, "profile")
}

// UpdatePassword replaces a profile's password hash
func (r *ProfileRepository) UpdatePassword(id, passwordHash string) error {
	query := "UPDATE profiles SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRowAffected(result, "profile")
}

// ClearFirstLogin marks that the profile has completed its first login flow
func (r *ProfileRepository) ClearFirstLogin(id string) error {
	query := "UPDATE profiles SET first_login = " + r.db.Dialect.BoolValue(false) +
		", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to clear first_login: %w", err)
	}
	return nil
}

// Delete removes a profile; dependents, sessions and requests cascade
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return requireRowAffected(result, "profile")
}

// CountByRole returns the number of profiles holding a role
func (r *ProfileRepository) CountByRole(role string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM profiles WHERE role = ?", role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// CreateSession creates a new session for a profile
func (r *ProfileRepository) CreateSession(sessionID, userID string, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *ProfileRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?"
	s := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// DeleteSession removes a session
func (r *ProfileRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes all sessions belonging to a profile
func (r *ProfileRepository) DeleteUserSessions(userID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry
func (r *ProfileRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

// CreatePasswordResetToken stores a reset token for a profile
func (r *ProfileRepository) CreatePasswordResetToken(token, userID string, expiresAt time.Time) error {
	query := "INSERT INTO password_reset_tokens (token, user_id, expires_at, used) VALUES (?, ?, ?, " +
		r.db.Dialect.BoolValue(false) + ")"
	if _, err := r.db.Exec(query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves a reset token
func (r *ProfileRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := "SELECT token, user_id, expires_at, used, created_at FROM password_reset_tokens WHERE token = ?"
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return t, nil
}

// MarkPasswordResetTokenUsed invalidates a reset token after use
func (r *ProfileRepository) MarkPasswordResetTokenUsed(token string) error {
	query := "UPDATE password_reset_tokens SET used = " + r.db.Dialect.BoolValue(true) + " WHERE token = ?"
	if _, err := r.db.Exec(query, token); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}

// DeleteUserPasswordResetTokens removes all reset tokens for a profile
func (r *ProfileRepository) DeleteUserPasswordResetTokens(userID string) error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredPasswordResetTokens removes reset tokens past their expiry
func (r *ProfileRepository) DeleteExpiredPasswordResetTokens() error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}

// requireRowAffected converts a zero-row UPDATE/DELETE into a not-found error
func requireRowAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return nil // driver doesn't support RowsAffected; assume success
	}
	if n == 0 {
		return fmt.Errorf("%s not found", entity)
	}
	return nil
}
