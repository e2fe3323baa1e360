package handlers

import (
	"log"
	"strings"
	"time"

	"marche/internal/cart"
	"marche/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie names the cookie binding a shopper to their cart.
const SessionCookie = "cart_session"

// CartHandler handles HTTP requests for the shopper's cart.
type CartHandler struct {
	sessions       *cart.Sessions
	productService *services.ProductService
	validate       *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(sessions *cart.Sessions, productService *services.ProductService) *CartHandler {
	return &CartHandler{
		sessions:       sessions,
		productService: productService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productID", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:productID", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// SessionID returns the shopper's session id, minting one (and setting
// the cookie) on first contact.
func (h *CartHandler) SessionID(c *fiber.Ctx) string {
	if id := c.Cookies(SessionCookie); id != "" {
		return id
	}
	id := uuid.New().String()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
	return id
}

// AddItemRequest is the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// HandleGetCart returns the cart contents with derived totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	shopperCart := h.sessions.GetOrCreate(h.SessionID(c))
	return c.JSON(cartResponse(shopperCart))
}

// HandleAddItem adds a product to the cart, merging quantities when the
// product is already present.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.productService.GetProductByID(req.ProductID)
	if err != nil {
		log.Printf("Error fetching product %s for cart: %v", req.ProductID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add product to cart",
			"error":   err.Error(),
		})
	}

	shopperCart := h.sessions.GetOrCreate(h.SessionID(c))

	// The guard covers the merged line, not just this request, so
	// repeated adds cannot exceed the available stock.
	if product.StockQuantity < shopperCart.Quantity(req.ProductID)+req.Quantity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Stock insuffisant pour ce produit.",
		})
	}

	shopperCart.AddItem(*product, req.Quantity)
	return c.Status(fiber.StatusCreated).JSON(cartResponse(shopperCart))
}

// UpdateQuantityRequest is the request body for overwriting a quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateQuantity overwrites a line's quantity; zero or negative
// removes the line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	shopperCart := h.sessions.GetOrCreate(h.SessionID(c))
	shopperCart.UpdateQuantity(c.Params("productID"), req.Quantity)
	return c.JSON(cartResponse(shopperCart))
}

// HandleRemoveItem removes a product line; removing an absent product
// succeeds.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	shopperCart := h.sessions.GetOrCreate(h.SessionID(c))
	shopperCart.RemoveItem(c.Params("productID"))
	return c.JSON(cartResponse(shopperCart))
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	shopperCart := h.sessions.GetOrCreate(h.SessionID(c))
	shopperCart.Clear()
	return c.JSON(cartResponse(shopperCart))
}

func cartResponse(c *cart.Cart) fiber.Map {
	items := c.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return fiber.Map{
		"items": items,
		"total": c.Total(),
		"count": c.Count(),
	}
}
