package repositories

import (
	"fmt"
	"sync"

	"marche/internal/models"

	"github.com/google/uuid"
)

// MockStoreRepository is an in-memory implementation of StoreRepository.
type MockStoreRepository struct {
	stores map[string]models.Store
	mu     sync.RWMutex
}

// NewMockStoreRepository creates a new instance of MockStoreRepository.
func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{
		stores: make(map[string]models.Store),
	}
}

// GetByID returns a store by its ID.
func (r *MockStoreRepository) GetByID(id string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("store with ID %s not found", id)
	}
	return &store, nil
}

// GetByOwner returns the store owned by a user.
func (r *MockStoreRepository) GetByOwner(ownerID string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, store := range r.stores {
		if store.OwnerID == ownerID {
			s := store
			return &s, nil
		}
	}
	return nil, fmt.Errorf("store for owner %s not found", ownerID)
}

// GetBySlug returns a store by its slug.
func (r *MockStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, store := range r.stores {
		if store.Slug == slug {
			s := store
			return &s, nil
		}
	}
	return nil, fmt.Errorf("store with slug %s not found", slug)
}

// Create adds a new store.
func (r *MockStoreRepository) Create(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	r.stores[store.ID] = *store
	return nil
}

// Update modifies an existing store.
func (r *MockStoreRepository) Update(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.stores[store.ID]
	if !ok {
		return fmt.Errorf("store with ID %s not found for update", store.ID)
	}
	r.stores[store.ID] = *store
	return nil
}
