package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/validation"
)

// Request errors
var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrNotRequestOwner     = errors.New("request belongs to another account")
	ErrInvalidTransition   = errors.New("request has already been processed")
	ErrInvalidDecision     = errors.New("decision must approve or reject the request")
	ErrBeneficiaryNotOwned = errors.New("beneficiary does not belong to this account")
)

// RequestInput carries the fields a member submits for a new benefit request
type RequestInput struct {
	ServiceID     string
	BeneficiaryID string
	Amount        float64
	Description   string
}

// RequestService manages benefit requests: member submissions and admin
// decisions. Submissions always enter as pending; the only allowed
// transitions out of pending are approved and rejected, each recorded once
// with a processing timestamp.
type RequestService struct {
	repo       *repository.RequestRepository
	familyRepo *repository.FamilyRepository
	catalog    *CatalogService
	email      *EmailService
}

// NewRequestService creates a new request service. The email service is
// optional; when nil, decisions are not notified.
func NewRequestService(repo *repository.RequestRepository, familyRepo *repository.FamilyRepository, catalog *CatalogService, email *EmailService) *RequestService {
	return &RequestService{
		repo:       repo,
		familyRepo: familyRepo,
		catalog:    catalog,
		email:      email,
	}
}

// Create validates and submits a new pending request on behalf of a member
func (s *RequestService) Create(userID string, in *RequestInput) (*models.ServiceRequest, error) {
	svc, err := s.catalog.Get(in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	if err := validation.ValidateAmount(in.Amount, svc.MaxAmount); err != nil {
		return nil, err
	}

	var beneficiaryID *string
	if in.BeneficiaryID != "" {
		ben, err := s.familyRepo.GetByID(in.BeneficiaryID)
		if err != nil {
			return nil, err
		}
		if ben == nil || ben.UserID != userID {
			return nil, ErrBeneficiaryNotOwned
		}
		beneficiaryID = &ben.ID
	}

	req, err := s.repo.Create(&models.ServiceRequest{
		UserID:        userID,
		ServiceID:     svc.ID,
		BeneficiaryID: beneficiaryID,
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, err
	}

	// Reload so the caller gets the expanded relations
	return s.mustGet(req.ID)
}

// Get returns one request with relations expanded
func (s *RequestService) Get(id string) (*models.ServiceRequest, error) {
	return s.mustGet(id)
}

// GetOwned returns one request after verifying it belongs to the member
func (s *RequestService) GetOwned(userID, id string) (*models.ServiceRequest, error) {
	req, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	return req, nil
}

// List returns all requests, newest submission first
func (s *RequestService) List() ([]*models.ServiceRequest, error) {
	return s.repo.List()
}

// ListByUser returns a member's own requests, newest first
func (s *RequestService) ListByUser(userID string) ([]*models.ServiceRequest, error) {
	return s.repo.ListByUser(userID)
}

// Decide records an admin decision on a pending request. Decided requests
// are final: a second decision, or an attempt to move a request back to
// pending, is refused.
func (s *RequestService) Decide(ctx context.Context, id string, status models.RequestStatus, adminComments string) (*models.ServiceRequest, error) {
	if !status.IsTerminal() {
		return nil, ErrInvalidDecision
	}

	req, err := s.mustGet(id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, req.Status)
	}

	processedAt := time.Now()
	adminComments = strings.TrimSpace(adminComments)
	if err := s.repo.UpdateStatus(id, status, adminComments, processedAt); err != nil {
		return nil, err
	}

	req.Status = status
	req.AdminComments = adminComments
	req.ProcessedAt = &processedAt

	if s.email != nil && req.User != nil && req.Service != nil {
		err := s.email.SendRequestDecisionEmail(ctx, req.User.Email, req.User.FullName(),
			req.Service.Name, string(status), adminComments)
		if err != nil {
			log.Printf("Warning: failed to send decision email for request %s: %v", id, err)
		}
	}

	return req, nil
}

func (s *RequestService) mustGet(id string) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}
