package service

import (
	"errors"
	"path/filepath"
	"strings"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

// Document errors
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotDocumentOwner = errors.New("document belongs to another account")
)

// DocumentService tracks supporting-file metadata for members. File contents
// live outside the portal; only names, sizes and attachments are recorded.
type DocumentService struct {
	repo        *repository.DocumentRepository
	familyRepo  *repository.FamilyRepository
	requestRepo *repository.RequestRepository
}

// NewDocumentService creates a new document service
func NewDocumentService(repo *repository.DocumentRepository, familyRepo *repository.FamilyRepository, requestRepo *repository.RequestRepository) *DocumentService {
	return &DocumentService{repo: repo, familyRepo: familyRepo, requestRepo: requestRepo}
}

// List returns the member's document records
func (s *DocumentService) List(userID string) ([]*models.Document, error) {
	return s.repo.ListByUser(userID)
}

// Create records a document's metadata for a member. Attachments may only
// reference the member's own dependents and requests.
func (s *DocumentService) Create(userID string, d *models.Document) (*models.Document, error) {
	d.UserID = userID
	d.FileName = filepath.Base(strings.TrimSpace(d.FileName))
	if d.FileName == "" || d.FileName == "." {
		return nil, errors.New("file name is required")
	}
	if d.FileSize < 0 {
		return nil, errors.New("file size cannot be negative")
	}

	if d.FamilyMemberID != nil {
		member, err := s.familyRepo.GetByID(*d.FamilyMemberID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, ErrFamilyMemberNotFound
		}
		if member.UserID != userID {
			return nil, ErrNotFamilyOwner
		}
	}
	if d.ServiceRequestID != nil {
		req, err := s.requestRepo.GetByID(*d.ServiceRequestID)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, ErrRequestNotFound
		}
		if req.UserID != userID {
			return nil, ErrNotRequestOwner
		}
	}

	return s.repo.Create(d)
}

// Delete removes a member's document record after an ownership check
func (s *DocumentService) Delete(userID, id string) error {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDocumentNotFound
	}
	if d.UserID != userID {
		return ErrNotDocumentOwner
	}
	return s.repo.Delete(id)
}
