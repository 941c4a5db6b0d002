package service

import (
	"errors"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/validation"
)

// Family errors
var (
	ErrFamilyMemberNotFound = errors.New("family member not found")
	ErrNotFamilyOwner       = errors.New("family member belongs to another account")
)

// FamilyInput carries the editable fields of a dependent
type FamilyInput struct {
	FirstName    string
	LastName     string
	NationalID   string
	Relationship string
	BirthDate    time.Time
}

// FamilyService manages a member's declared dependents. Every operation that
// touches an existing dependent verifies the record belongs to the calling
// member first.
type FamilyService struct {
	repo *repository.FamilyRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(repo *repository.FamilyRepository) *FamilyService {
	return &FamilyService{repo: repo}
}

func (s *FamilyService) validateInput(in *FamilyInput) error {
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return err
	}
	if err := validation.ValidateName("last_name", in.LastName); err != nil {
		return err
	}
	if err := validation.ValidateRelationship(in.Relationship); err != nil {
		return err
	}
	if in.BirthDate.IsZero() {
		return validation.ValidationError{Field: "birth_date", Message: "birth date is required"}
	}
	if in.BirthDate.After(time.Now()) {
		return validation.ValidationError{Field: "birth_date", Message: "birth date cannot be in the future"}
	}
	return nil
}

// owned loads a dependent and checks it belongs to the given member
func (s *FamilyService) owned(userID, memberID string) (*models.FamilyMember, error) {
	m, err := s.repo.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrFamilyMemberNotFound
	}
	if m.UserID != userID {
		return nil, ErrNotFamilyOwner
	}
	return m, nil
}

// List returns the member's dependents
func (s *FamilyService) List(userID string) ([]*models.FamilyMember, error) {
	return s.repo.ListByUser(userID)
}

// Get returns one dependent after an ownership check
func (s *FamilyService) Get(userID, memberID string) (*models.FamilyMember, error) {
	return s.owned(userID, memberID)
}

// Create declares a new dependent for the member
func (s *FamilyService) Create(userID string, in *FamilyInput) (*models.FamilyMember, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(&models.FamilyMember{
		UserID:       userID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		NationalID:   in.NationalID,
		Relationship: in.Relationship,
		BirthDate:    in.BirthDate,
	})
}

// Update rewrites an owned dependent's fields
func (s *FamilyService) Update(userID, memberID string, in *FamilyInput) (*models.FamilyMember, error) {
	m, err := s.owned(userID, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	m.FirstName = in.FirstName
	m.LastName = in.LastName
	m.NationalID = in.NationalID
	m.Relationship = in.Relationship
	m.BirthDate = in.BirthDate

	if err := s.repo.Update(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes an owned dependent
func (s *FamilyService) Delete(userID, memberID string) error {
	if _, err := s.owned(userID, memberID); err != nil {
		return err
	}
	return s.repo.Delete(memberID)
}
