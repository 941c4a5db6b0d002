package service

import (
	"errors"
	"fmt"
	"strings"

	"mutuelle/internal/cache"
	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

// Catalog errors
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInactive = errors.New("service is not active")
)

// CatalogService manages the benefit catalog. The database is the source of
// truth; an in-memory collection mirrors it for reads and notifies
// subscribers after each confirmed write.
type CatalogService struct {
	repo       *repository.ServiceRepository
	collection *cache.Collection[*models.Service]
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo *repository.ServiceRepository) *CatalogService {
	return &CatalogService{
		repo:       repo,
		collection: cache.NewCollection("services", func(s *models.Service) string { return s.ID }),
	}
}

// Load populates the catalog mirror from the database. On error the mirror
// keeps its previous contents.
func (s *CatalogService) Load() error {
	return s.collection.Load(func() ([]*models.Service, error) {
		return s.repo.List()
	})
}

// Subscribe returns a channel of catalog change events and a cancel function
func (s *CatalogService) Subscribe() (<-chan cache.Event, func()) {
	return s.collection.Subscribe(16)
}

// List returns all services from the mirror, loading it on first use
func (s *CatalogService) List() ([]*models.Service, error) {
	if s.collection.Loading() {
		if err := s.Load(); err != nil {
			return nil, err
		}
	}
	return s.collection.Snapshot(), nil
}

// ActiveServices returns only services open to new requests
func (s *CatalogService) ActiveServices() ([]*models.Service, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	active := make([]*models.Service, 0, len(all))
	for _, svc := range all {
		if svc.IsActive {
			active = append(active, svc)
		}
	}
	return active, nil
}

// Get returns a single service by ID
func (s *CatalogService) Get(id string) (*models.Service, error) {
	if svc, ok := s.collection.Get(id); ok {
		return svc, nil
	}
	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

// Create adds a new service to the catalog
func (s *CatalogService) Create(name, description string, maxAmount float64, isActive bool) (*models.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if maxAmount <= 0 {
		return nil, fmt.Errorf("maximum amount must be positive")
	}

	svc, err := s.repo.Create(&models.Service{
		Name:        name,
		Description: strings.TrimSpace(description),
		MaxAmount:   maxAmount,
		IsActive:    isActive,
	})
	if err != nil {
		return nil, err
	}

	s.collection.ApplyCreate(svc)
	return svc, nil
}

// Update modifies an existing catalog entry
func (s *CatalogService) Update(id, name, description string, maxAmount float64, isActive bool) (*models.Service, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrServiceNotFound
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if maxAmount <= 0 {
		return nil, fmt.Errorf("maximum amount must be positive")
	}

	existing.Name = name
	existing.Description = strings.TrimSpace(description)
	existing.MaxAmount = maxAmount
	existing.IsActive = isActive

	if err := s.repo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.collection.ApplyUpdate(existing)
	return existing, nil
}

// SetActive toggles whether a service accepts new requests
func (s *CatalogService) SetActive(id string, active bool) (*models.Service, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrServiceNotFound
	}

	existing.IsActive = active
	if err := s.repo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.collection.ApplyUpdate(existing)
	return existing, nil
}

// Delete removes a service from the catalog
func (s *CatalogService) Delete(id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrServiceNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.collection.ApplyDelete(id)
	return nil
}
