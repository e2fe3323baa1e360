package services

import (
	"fmt"

	"marche/internal/models"
	"marche/internal/repositories"
)

// StoreService handles business logic for the seller console.
type StoreService struct {
	repo repositories.StoreRepository
}

// NewStoreService creates a new StoreService.
func NewStoreService(repo repositories.StoreRepository) *StoreService {
	return &StoreService{
		repo: repo,
	}
}

// CreateStore opens a new store for a seller. One store per owner.
func (s *StoreService) CreateStore(ownerID string, store *models.Store) error {
	if existing, err := s.repo.GetByOwner(ownerID); err == nil && existing != nil {
		return fmt.Errorf("owner %s already has store '%s'", ownerID, existing.Name)
	}

	store.OwnerID = ownerID
	if store.Slug == "" {
		store.Slug = Slugify(store.Name)
	}
	if store.CommissionRate == 0 {
		store.CommissionRate = 5
	}
	store.IsVerified = false // verification is a back-office decision

	if err := s.repo.Create(store); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// GetStoreByOwner retrieves the seller's store.
func (s *StoreService) GetStoreByOwner(ownerID string) (*models.Store, error) {
	return s.repo.GetByOwner(ownerID)
}

// GetStoreByID retrieves a store by its ID.
func (s *StoreService) GetStoreByID(id string) (*models.Store, error) {
	return s.repo.GetByID(id)
}

// UpdateStore updates the seller's own store. Ownership and the
// verification flag cannot be changed through this path.
func (s *StoreService) UpdateStore(ownerID string, store *models.Store) error {
	existing, err := s.repo.GetByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("seller has no store: %w", err)
	}
	store.ID = existing.ID
	store.OwnerID = existing.OwnerID
	store.IsVerified = existing.IsVerified
	return s.repo.Update(store)
}
