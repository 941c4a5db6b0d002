package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
)

// RequestRepository handles database operations for benefit requests.
// Listing queries return expanded rows: the request plus its service, its
// beneficiary (when one is set) and the requesting profile.
type RequestRepository struct {
	db *database.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const expandedRequestQuery = `
	SELECT r.id, r.user_id, r.service_id, r.beneficiary_id, r.amount, r.description,
		r.status, COALESCE(r.admin_comments, ''), r.submitted_at, r.processed_at,
		r.created_at, r.updated_at,
		s.id, s.name, s.description, s.max_amount, s.is_active, s.created_at, s.updated_at,
		b.id, b.first_name, b.last_name, b.national_id, b.relationship, b.birth_date,
		p.id, p.email, p.first_name, p.last_name, p.role, p.status
	FROM service_requests r
	JOIN services s ON s.id = r.service_id
	LEFT JOIN family_members b ON b.id = r.beneficiary_id
	JOIN profiles p ON p.id = r.user_id
`

func scanExpandedRequest(row interface{ Scan(...interface{}) error }) (*models.ServiceRequest, error) {
	req := &models.ServiceRequest{}
	svc := &models.Service{}
	user := &models.Profile{}

	var (
		benID           sql.NullString
		benFirst        sql.NullString
		benLast         sql.NullString
		benNationalID   sql.NullString
		benRelationship sql.NullString
		benBirthDate    sql.NullTime
	)

	err := row.Scan(
		&req.ID, &req.UserID, &req.ServiceID, &req.BeneficiaryID, &req.Amount, &req.Description,
		&req.Status, &req.AdminComments, &req.SubmittedAt, &req.ProcessedAt,
		&req.CreatedAt, &req.UpdatedAt,
		&svc.ID, &svc.Name, &svc.Description, &svc.MaxAmount, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
		&benID, &benFirst, &benLast, &benNationalID, &benRelationship, &benBirthDate,
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.Status,
	)
	if err != nil {
		return nil, err
	}

	req.Service = svc
	req.User = user
	if benID.Valid {
		req.Beneficiary = &models.FamilyMember{
			ID:           benID.String,
			UserID:       req.UserID,
			FirstName:    benFirst.String,
			LastName:     benLast.String,
			NationalID:   benNationalID.String,
			Relationship: benRelationship.String,
			BirthDate:    benBirthDate.Time,
		}
	}
	return req, nil
}

// Create inserts a new pending request
func (r *RequestRepository) Create(req *models.ServiceRequest) (*models.ServiceRequest, error) {
	if req.ID == "" {
		req.ID = security.GenerateID()
	}
	now := time.Now()
	req.Status = models.RequestPending
	req.SubmittedAt = now
	req.CreatedAt = now
	req.UpdatedAt = now

	query := `
		INSERT INTO service_requests (id, user_id, service_id, beneficiary_id, amount,
			description, status, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, req.ID, req.UserID, req.ServiceID, req.BeneficiaryID,
		req.Amount, req.Description, req.Status, req.SubmittedAt, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

// GetByID retrieves one request with its relations expanded
func (r *RequestRepository) GetByID(id string) (*models.ServiceRequest, error) {
	query := expandedRequestQuery + " WHERE r.id = ?"
	req, err := scanExpandedRequest(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// List returns all requests expanded, newest submission first
func (r *RequestRepository) List() ([]*models.ServiceRequest, error) {
	return r.list(expandedRequestQuery + " ORDER BY r.submitted_at DESC")
}

// ListByUser returns a member's own requests expanded, newest first
func (r *RequestRepository) ListByUser(userID string) ([]*models.ServiceRequest, error) {
	return r.list(expandedRequestQuery+" WHERE r.user_id = ? ORDER BY r.submitted_at DESC", userID)
}

func (r *RequestRepository) list(query string, args ...interface{}) ([]*models.ServiceRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ServiceRequest
	for rows.Next() {
		req, err := scanExpandedRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateStatus records an admin decision. The status guard lives in the
// service layer; this only writes the already-validated transition.
func (r *RequestRepository) UpdateStatus(id string, status models.RequestStatus, adminComments string, processedAt time.Time) error {
	query := `
		UPDATE service_requests
		SET status = ?, admin_comments = ?, processed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, status, adminComments, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return requireRowAffected(result, "request")
}

// CountByStatus returns the number of requests in a given status
func (r *RequestRepository) CountByStatus(status models.RequestStatus) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM service_requests WHERE status = ?", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

// CountProcessed returns the number of decided requests
func (r *RequestRepository) CountProcessed() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM service_requests WHERE status <> ?", models.RequestPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count processed requests: %w", err)
	}
	return count, nil
}

// CountSubmittedSince returns the number of requests submitted at or after t
func (r *RequestRepository) CountSubmittedSince(t time.Time) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM service_requests WHERE submitted_at >= ?", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent requests: %w", err)
	}
	return count, nil
}

// CountByUserAndStatus returns the number of a member's requests in a status
func (r *RequestRepository) CountByUserAndStatus(userID string, status models.RequestStatus) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM service_requests WHERE user_id = ? AND status = ?",
		userID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count member requests: %w", err)
	}
	return count, nil
}

// SumApprovedAmountByUser totals the approved payouts for a member
func (r *RequestRepository) SumApprovedAmountByUser(userID string) (float64, error) {
	var total float64
	err := r.db.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM service_requests WHERE user_id = ? AND status = ?",
		userID, models.RequestApproved).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total approved amounts: %w", err)
	}
	return total, nil
}
