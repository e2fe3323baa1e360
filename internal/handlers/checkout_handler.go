package handlers

import (
	"errors"
	"log"
	"sync"

	"marche/internal/cart"
	"marche/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler drives the checkout workflow over HTTP. One checkout
// instance lives per shopper session; a completed checkout is dropped so
// the next purchase starts fresh.
type CheckoutHandler struct {
	sessions *cart.Sessions
	cartH    *CartHandler
	service  *services.CheckoutService

	mu     sync.Mutex
	active map[string]*services.Checkout
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(sessions *cart.Sessions, cartH *CartHandler, service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		cartH:    cartH,
		service:  service,
		active:   make(map[string]*services.Checkout),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
// Attach the optional-auth middleware on the group so guests can check
// out while signed-in shoppers get the order on their account.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, optionalAuth fiber.Handler) {
	checkoutRoutes := router.Group("/checkout", optionalAuth)
	checkoutRoutes.Get("/", h.HandleGetCheckout)
	checkoutRoutes.Post("/", h.HandleSubmitInfo)
	checkoutRoutes.Post("/pay", h.HandlePay)
}

// checkoutFor returns the session's active checkout, creating one when
// none exists or the previous one completed. A failed checkout is kept:
// its payment went through without a recorded order, so the session must
// keep surfacing the persistence failure instead of quietly starting a
// fresh attempt against the same cart.
func (h *CheckoutHandler) checkoutFor(sessionID string) (*services.Checkout, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if co, ok := h.active[sessionID]; ok {
		if state := co.State(); state == services.StateFailed || !state.IsTerminal() {
			return co, nil
		}
	}

	shopperCart := h.sessions.GetOrCreate(sessionID)
	co, err := h.service.Begin(shopperCart)
	if err != nil {
		return nil, err
	}
	h.active[sessionID] = co
	return co, nil
}

// HandleGetCheckout reports the workflow state for the session.
func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	sessionID := h.cartH.SessionID(c)

	h.mu.Lock()
	co, ok := h.active[sessionID]
	h.mu.Unlock()
	if !ok {
		return c.JSON(fiber.Map{
			"state": services.StateCollectingInfo,
		})
	}

	resp := fiber.Map{
		"state": co.State(),
		"info":  co.Info(),
	}
	if order := co.Order(); order != nil {
		resp["order"] = order
	}
	return c.JSON(resp)
}

// HandleSubmitInfo validates the shipping form and moves the checkout to
// the payment step.
func (h *CheckoutHandler) HandleSubmitInfo(c *fiber.Ctx) error {
	var info services.ShippingInfo
	if err := c.BodyParser(&info); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	co, err := h.checkoutFor(h.cartH.SessionID(c))
	if err != nil {
		return h.checkoutError(c, err)
	}
	if err := co.SubmitInfo(info); err != nil {
		return h.checkoutError(c, err)
	}

	return c.JSON(fiber.Map{
		"state": co.State(),
		"info":  co.Info(),
	})
}

// HandlePay runs the payment step. On success the order is returned and
// the session's checkout is retired.
func (h *CheckoutHandler) HandlePay(c *fiber.Ctx) error {
	sessionID := h.cartH.SessionID(c)

	h.mu.Lock()
	co, ok := h.active[sessionID]
	h.mu.Unlock()
	if !ok {
		return h.checkoutError(c, services.ErrInfoRequired)
	}

	order, err := co.Pay(c.UserContext())
	if err != nil {
		return h.checkoutError(c, err)
	}

	h.mu.Lock()
	delete(h.active, sessionID)
	h.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"state": services.StateCompleted,
		"order": order,
	})
}

// checkoutError maps the checkout error taxonomy onto HTTP responses,
// keeping payment declines, validation failures and post-payment
// persistence failures distinguishable for the storefront.
func (h *CheckoutHandler) checkoutError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var declinedErr *services.PaymentDeclinedError
	var persistenceErr *services.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
	case errors.As(err, &declinedErr):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message": declinedErr.Message,
		})
	case errors.As(err, &persistenceErr):
		log.Printf("Persistence failure after payment %s: %v", persistenceErr.TransactionID, persistenceErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message":     "Le paiement a réussi mais la commande n'a pas pu être enregistrée. Contactez le support avec votre référence de paiement.",
			"payment_ref": persistenceErr.TransactionID,
		})
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Votre panier est vide.",
		})
	case errors.Is(err, services.ErrInfoRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Veuillez d'abord renseigner les informations de livraison.",
		})
	case errors.Is(err, services.ErrPaymentInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Un paiement est déjà en cours pour cette commande.",
		})
	case errors.Is(err, services.ErrCheckoutCompleted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Cette commande est déjà confirmée.",
		})
	default:
		log.Printf("Unexpected checkout error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Une erreur est survenue lors de la commande.",
			"error":   err.Error(),
		})
	}
}
