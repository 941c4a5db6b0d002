package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
)

// FamilyRepository handles database operations for family dependents
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

const familyColumns = "id, user_id, first_name, last_name, national_id, relationship, birth_date, created_at, updated_at"

func scanFamilyMember(row interface{ Scan(...interface{}) error }) (*models.FamilyMember, error) {
	m := &models.FamilyMember{}
	err := row.Scan(&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.NationalID,
		&m.Relationship, &m.BirthDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a dependent owned by a member
func (r *FamilyRepository) Create(m *models.FamilyMember) (*models.FamilyMember, error) {
	if m.ID == "" {
		m.ID = security.GenerateID()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO family_members (id, user_id, first_name, last_name, national_id,
			relationship, birth_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, m.ID, m.UserID, m.FirstName, m.LastName, m.NationalID,
		m.Relationship, m.BirthDate, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create family member: %w", err)
	}
	return m, nil
}

// GetByID retrieves a dependent by ID
func (r *FamilyRepository) GetByID(id string) (*models.FamilyMember, error) {
	query := "SELECT " + familyColumns + " FROM family_members WHERE id = ?"
	m, err := scanFamilyMember(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	return m, nil
}

// ListByUser returns a member's dependents ordered by first name
func (r *FamilyRepository) ListByUser(userID string) ([]*models.FamilyMember, error) {
	query := "SELECT " + familyColumns + " FROM family_members WHERE user_id = ? ORDER BY first_name"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []*models.FamilyMember
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Update rewrites a dependent's editable fields
func (r *FamilyRepository) Update(m *models.FamilyMember) error {
	query := `
		UPDATE family_members
		SET first_name = ?, last_name = ?, national_id = ?, relationship = ?, birth_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, m.FirstName, m.LastName, m.NationalID, m.Relationship, m.BirthDate, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return requireRowAffected(result, "family member")
}

// Delete removes a dependent
func (r *FamilyRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM family_members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return requireRowAffected(result, "family member")
}
