package handlers

import (
	"log"
	"strings"

	"marche/internal/models"
	"marche/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StoreHandler handles HTTP requests for the seller console.
type StoreHandler struct {
	storeService   *services.StoreService
	productService *services.ProductService
	validate       *validator.Validate
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(storeService *services.StoreService, productService *services.ProductService) *StoreHandler {
	return &StoreHandler{
		storeService:   storeService,
		productService: productService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the seller console routes. All of them
// require authentication except the public store page.
func (h *StoreHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	storeRoutes := router.Group("/stores")
	storeRoutes.Get("/me", authRequired, h.HandleGetMyStore)
	storeRoutes.Get("/me/products", authRequired, h.HandleGetMyProducts)
	storeRoutes.Post("/", authRequired, h.HandleCreateStore)
	storeRoutes.Put("/me", authRequired, h.HandleUpdateMyStore)
	storeRoutes.Get("/:id", h.HandleGetStoreByID)
}

// CreateStoreRequest is the request body for opening a store.
type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

// HandleCreateStore opens a store for the signed-in seller.
func (h *StoreHandler) HandleCreateStore(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	var req CreateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	store := &models.Store{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	}
	if err := h.storeService.CreateStore(ownerID, store); err != nil {
		log.Printf("Error creating store for owner %s: %v", ownerID, err)
		if strings.Contains(err.Error(), "already has store") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "You already own a store",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create store",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// HandleGetMyStore returns the signed-in seller's store.
func (h *StoreHandler) HandleGetMyStore(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	store, err := h.storeService.GetStoreByOwner(ownerID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "You have no store yet",
			})
		}
		log.Printf("Error getting store for owner %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve store",
			"error":   err.Error(),
		})
	}
	return c.JSON(store)
}

// HandleGetMyProducts returns the products listed by the seller's store.
func (h *StoreHandler) HandleGetMyProducts(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	store, err := h.storeService.GetStoreByOwner(ownerID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "You have no store yet",
		})
	}

	products, err := h.productService.GetProductsByStore(store.ID)
	if err != nil {
		log.Printf("Error getting products for store %s: %v", store.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleUpdateMyStore updates the seller's store profile.
func (h *StoreHandler) HandleUpdateMyStore(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	var store models.Store
	if err := c.BodyParser(&store); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.storeService.UpdateStore(ownerID, &store); err != nil {
		log.Printf("Error updating store for owner %s: %v", ownerID, err)
		if strings.Contains(err.Error(), "no store") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "You have no store yet",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update store",
			"error":   err.Error(),
		})
	}
	return c.JSON(store)
}

// HandleGetStoreByID returns a store's public profile.
func (h *StoreHandler) HandleGetStoreByID(c *fiber.Ctx) error {
	storeID := c.Params("id")
	store, err := h.storeService.GetStoreByID(storeID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Store not found",
			})
		}
		log.Printf("Error getting store %s: %v", storeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve store",
			"error":   err.Error(),
		})
	}
	return c.JSON(store)
}
