package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"mutuelle/internal/database"
	"mutuelle/internal/models"
)

// BackupData is the on-disk format of a portal export. Sessions and password
// reset tokens are transient and deliberately excluded.
type BackupData struct {
	ExportedAt      time.Time              `json:"exported_at"`
	Profiles        []backupProfile        `json:"profiles"`
	Services        []*models.Service      `json:"services"`
	FamilyMembers   []*models.FamilyMember `json:"family_members"`
	ServiceRequests []backupRequest        `json:"service_requests"`
	Documents       []*models.Document     `json:"documents"`
}

// backupProfile carries the password hash, which the API model hides
type backupProfile struct {
	models.Profile
	PasswordHash string `json:"password_hash"`
}

// backupRequest is the flat request row without its expanded relations
type backupRequest struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	ServiceID     string               `json:"service_id"`
	BeneficiaryID *string              `json:"beneficiary_id,omitempty"`
	Amount        float64              `json:"amount"`
	Description   string               `json:"description"`
	Status        models.RequestStatus `json:"status"`
	AdminComments string               `json:"admin_comments"`
	SubmittedAt   time.Time            `json:"submitted_at"`
	ProcessedAt   *time.Time           `json:"processed_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// BackupService exports and imports the portal database as JSON. It reads
// and writes table rows directly so that exports round-trip exactly,
// including generated IDs and timestamps.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes all durable tables to the given JSON file
func (s *BackupService) Export(outputPath string) error {
	data := &BackupData{ExportedAt: time.Now()}

	if err := s.exportProfiles(data); err != nil {
		return err
	}
	if err := s.exportServices(data); err != nil {
		return err
	}
	if err := s.exportFamilyMembers(data); err != nil {
		return err
	}
	if err := s.exportRequests(data); err != nil {
		return err
	}
	if err := s.exportDocuments(data); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	log.Printf("Backup written to %s: %d profiles, %d services, %d family members, %d requests, %d documents",
		outputPath, len(data.Profiles), len(data.Services), len(data.FamilyMembers),
		len(data.ServiceRequests), len(data.Documents))
	return nil
}

// Import loads a JSON backup into the database. With clear set, existing
// rows are removed first; otherwise rows whose IDs collide will fail.
func (s *BackupService) Import(inputPath string, clear bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	var data BackupData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		// Children before parents to satisfy foreign keys
		for _, table := range []string{"documents", "service_requests", "family_members",
			"password_reset_tokens", "sessions", "services", "profiles"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	if err := s.importProfiles(tx, data.Profiles); err != nil {
		return err
	}
	if err := s.importServices(tx, data.Services); err != nil {
		return err
	}
	if err := s.importFamilyMembers(tx, data.FamilyMembers); err != nil {
		return err
	}
	if err := s.importRequests(tx, data.ServiceRequests); err != nil {
		return err
	}
	if err := s.importDocuments(tx, data.Documents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Backup imported from %s: %d profiles, %d services, %d family members, %d requests, %d documents",
		inputPath, len(data.Profiles), len(data.Services), len(data.FamilyMembers),
		len(data.ServiceRequests), len(data.Documents))
	return nil
}

func (s *BackupService) exportProfiles(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, email, password_hash, first_name, last_name, national_id,
			COALESCE(phone, ''), COALESCE(address, ''), birth_date, role, status,
			first_login, created_at, updated_at
		FROM profiles ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p backupProfile
		if err := rows.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName,
			&p.NationalID, &p.Phone, &p.Address, &p.BirthDate, &p.Role, &p.Status,
			&p.FirstLogin, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan profile: %w", err)
		}
		data.Profiles = append(data.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportServices(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, name, description, max_amount, is_active, created_at, updated_at
		FROM services ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to export services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		svc := &models.Service{}
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.MaxAmount,
			&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan service: %w", err)
		}
		data.Services = append(data.Services, svc)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilyMembers(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, user_id, first_name, last_name, national_id, relationship,
			birth_date, created_at, updated_at
		FROM family_members ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to export family members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &models.FamilyMember{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.NationalID,
			&m.Relationship, &m.BirthDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan family member: %w", err)
		}
		data.FamilyMembers = append(data.FamilyMembers, m)
	}
	return rows.Err()
}

func (s *BackupService) exportRequests(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, user_id, service_id, beneficiary_id, amount, description, status,
			COALESCE(admin_comments, ''), submitted_at, processed_at, created_at, updated_at
		FROM service_requests ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to export requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r backupRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.ServiceID, &r.BeneficiaryID, &r.Amount,
			&r.Description, &r.Status, &r.AdminComments, &r.SubmittedAt, &r.ProcessedAt,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan request: %w", err)
		}
		data.ServiceRequests = append(data.ServiceRequests, r)
	}
	return rows.Err()
}

func (s *BackupService) exportDocuments(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, user_id, family_member_id, service_request_id, file_name,
			file_path, file_size, mime_type, created_at
		FROM documents ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to export documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d := &models.Document{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.FamilyMemberID, &d.ServiceRequestID,
			&d.FileName, &d.FilePath, &d.FileSize, &d.MimeType, &d.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		data.Documents = append(data.Documents, d)
	}
	return rows.Err()
}

func (s *BackupService) importProfiles(tx *database.Tx, profiles []backupProfile) error {
	for _, p := range profiles {
		_, err := tx.Exec(`
			INSERT INTO profiles (id, email, password_hash, first_name, last_name, national_id,
				phone, address, birth_date, role, status, first_login, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.NationalID,
			p.Phone, p.Address, p.BirthDate, p.Role, p.Status, p.FirstLogin,
			p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import profile %s: %w", p.Email, err)
		}
	}
	return nil
}

func (s *BackupService) importServices(tx *database.Tx, services []*models.Service) error {
	for _, svc := range services {
		_, err := tx.Exec(`
			INSERT INTO services (id, name, description, max_amount, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, svc.ID, svc.Name, svc.Description, svc.MaxAmount, svc.IsActive, svc.CreatedAt, svc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import service %s: %w", svc.Name, err)
		}
	}
	return nil
}

func (s *BackupService) importFamilyMembers(tx *database.Tx, members []*models.FamilyMember) error {
	for _, m := range members {
		_, err := tx.Exec(`
			INSERT INTO family_members (id, user_id, first_name, last_name, national_id,
				relationship, birth_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.UserID, m.FirstName, m.LastName, m.NationalID, m.Relationship,
			m.BirthDate, m.CreatedAt, m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import family member %s: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRequests(tx *database.Tx, requests []backupRequest) error {
	for _, r := range requests {
		_, err := tx.Exec(`
			INSERT INTO service_requests (id, user_id, service_id, beneficiary_id, amount,
				description, status, admin_comments, submitted_at, processed_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.UserID, r.ServiceID, r.BeneficiaryID, r.Amount, r.Description,
			r.Status, r.AdminComments, r.SubmittedAt, r.ProcessedAt, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import request %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importDocuments(tx *database.Tx, documents []*models.Document) error {
	for _, d := range documents {
		_, err := tx.Exec(`
			INSERT INTO documents (id, user_id, family_member_id, service_request_id,
				file_name, file_path, file_size, mime_type, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.UserID, d.FamilyMemberID, d.ServiceRequestID, d.FileName,
			d.FilePath, d.FileSize, d.MimeType, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import document %s: %w", d.ID, err)
		}
	}
	return nil
}
