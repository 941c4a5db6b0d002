package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
)

// ServiceRepository handles database operations for the benefit catalog
type ServiceRepository struct {
	db *database.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = "id, name, description, max_amount, is_active, created_at, updated_at"

func scanService(row interface{ Scan(...interface{}) error }) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.MaxAmount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new catalog entry
func (r *ServiceRepository) Create(s *models.Service) (*models.Service, error) {
	if s.ID == "" {
		s.ID = security.GenerateID()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO services (id, name, description, max_amount, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, s.ID, s.Name, s.Description, s.MaxAmount, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// GetByID retrieves one catalog entry
func (r *ServiceRepository) GetByID(id string) (*models.Service, error) {
	query := "SELECT " + serviceColumns + " FROM services WHERE id = ?"
	s, err := scanService(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// List returns the whole catalog ordered by name
func (r *ServiceRepository) List() ([]*models.Service, error) {
	query := "SELECT " + serviceColumns + " FROM services ORDER BY name"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Update rewrites a catalog entry's editable fields
func (r *ServiceRepository) Update(s *models.Service) error {
	query := `
		UPDATE services
		SET name = ?, description = ?, max_amount = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, s.Name, s.Description, s.MaxAmount, s.IsActive, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return requireRowAffected(result, "service")
}

// Delete removes a catalog entry
func (r *ServiceRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return requireRowAffected(result, "service")
}
