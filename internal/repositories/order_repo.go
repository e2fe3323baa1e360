package repositories

import (
	"marche/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// Create must be transactional from the caller's point of view: either
// the order and all of its line items are recorded, or the whole
// operation fails. A header without items must never be reported as
// success.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
}
