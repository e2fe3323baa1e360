package repositories

import (
	"marche/internal/models"
)

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	GetByID(id string) (*models.Store, error)
	GetByOwner(ownerID string) (*models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
}
