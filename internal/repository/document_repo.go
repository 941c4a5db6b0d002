package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
)

// DocumentRepository handles database operations for document metadata
type DocumentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = "id, user_id, family_member_id, service_request_id, file_name, file_path, file_size, mime_type, created_at"

func scanDocument(row interface{ Scan(...interface{}) error }) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(&d.ID, &d.UserID, &d.FamilyMemberID, &d.ServiceRequestID,
		&d.FileName, &d.FilePath, &d.FileSize, &d.MimeType, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a document metadata record
func (r *DocumentRepository) Create(d *models.Document) (*models.Document, error) {
	if d.ID == "" {
		d.ID = security.GenerateID()
	}
	d.CreatedAt = time.Now()

	query := `
		INSERT INTO documents (id, user_id, family_member_id, service_request_id,
			file_name, file_path, file_size, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, d.ID, d.UserID, d.FamilyMemberID, d.ServiceRequestID,
		d.FileName, d.FilePath, d.FileSize, d.MimeType, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return d, nil
}

// GetByID retrieves a document record
func (r *DocumentRepository) GetByID(id string) (*models.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE id = ?"
	d, err := scanDocument(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// ListByUser returns a member's documents, newest first
func (r *DocumentRepository) ListByUser(userID string) ([]*models.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document record
func (r *DocumentRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireRowAffected(result, "document")
}
