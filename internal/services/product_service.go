package services

import (
	"fmt"
	"strings"

	"marche/internal/models"
	"marche/internal/repositories"

	"github.com/google/uuid"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo      repositories.ProductRepository
	storeRepo repositories.StoreRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, storeRepo repositories.StoreRepository) *ProductService {
	return &ProductService{
		repo:      repo,
		storeRepo: storeRepo,
	}
}

// GetAllProducts retrieves all products with their store names attached.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	s.attachStoreNames(products)
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store, err := s.storeRepo.GetByID(product.StoreID); err == nil {
		product.StoreName = store.Name
	}
	return product, nil
}

// GetProductsByStore retrieves all products listed by a store.
func (s *ProductService) GetProductsByStore(storeID string) ([]models.Product, error) {
	return s.repo.GetByStore(storeID)
}

// CreateProduct lists a new product for the seller's store. The store
// ownership check keeps one seller from listing into another's shop.
func (s *ProductService) CreateProduct(ownerID string, product *models.Product) error {
	store, err := s.storeRepo.GetByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("seller has no store: %w", err)
	}
	product.StoreID = store.ID
	if product.Slug == "" {
		product.Slug = Slugify(product.Title) + "-" + uuid.New().String()[:8]
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product after verifying it belongs
// to the seller's store. The store binding is pinned to the verified
// store, so an update can never move a product into another shop.
func (s *ProductService) UpdateProduct(ownerID string, product *models.Product) error {
	store, err := s.verifyOwnership(ownerID, product.ID)
	if err != nil {
		return err
	}
	product.StoreID = store.ID
	return s.repo.Update(product)
}

// DeleteProduct removes a product after verifying ownership.
func (s *ProductService) DeleteProduct(ownerID, productID string) error {
	if _, err := s.verifyOwnership(ownerID, productID); err != nil {
		return err
	}
	return s.repo.Delete(productID)
}

func (s *ProductService) verifyOwnership(ownerID, productID string) (*models.Store, error) {
	store, err := s.storeRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("seller has no store: %w", err)
	}
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.StoreID != store.ID {
		return nil, fmt.Errorf("product %s does not belong to store %s", productID, store.ID)
	}
	return store, nil
}

func (s *ProductService) attachStoreNames(products []models.Product) {
	names := make(map[string]string)
	for i := range products {
		name, ok := names[products[i].StoreID]
		if !ok {
			store, err := s.storeRepo.GetByID(products[i].StoreID)
			if err == nil {
				name = store.Name
			} else {
				name = "Vendeur Inconnu"
			}
			names[products[i].StoreID] = name
		}
		products[i].StoreName = name
	}
}

// Slugify lowercases a title and replaces whitespace runs with hyphens.
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "-")
}
