package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"marche/internal/cart"
	"marche/internal/handlers"
	"marche/internal/middleware"
	"marche/internal/models"
	"marche/internal/payment"
	"marche/internal/repositories"
	"marche/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// forcedOutcome pins the payment simulation to one result.
type forcedOutcome struct {
	approve bool
}

func (f forcedOutcome) Approve() bool { return f.approve }

// countingOutcome approves every charge and counts how many were issued.
type countingOutcome struct {
	approvals int
}

func (c *countingOutcome) Approve() bool {
	c.approvals++
	return true
}

// unreliableOrderRepo rejects every write while delegating reads.
type unreliableOrderRepo struct {
	repositories.OrderRepository
}

func (r unreliableOrderRepo) Create(*models.Order) error {
	return errors.New("database unreachable")
}

type testEnv struct {
	app      *fiber.App
	products repositories.ProductRepository
	stores   repositories.StoreRepository
	orders   repositories.OrderRepository
}

// setupApp sets up a Fiber app for testing with in-memory repositories,
// a zero-latency payment simulator and all handlers wired.
func setupApp(outcome payment.OutcomeSource) *testEnv {
	return setupAppWithOrders(outcome, repositories.NewMockOrderRepository())
}

func setupAppWithOrders(outcome payment.OutcomeSource, orderRepo repositories.OrderRepository) *testEnv {
	userRepo := repositories.NewMockUserRepository()
	storeRepo := repositories.NewMockStoreRepository()
	productRepo := repositories.NewMockProductRepository()

	gateway := payment.NewSimulator(outcome, 0)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(productRepo, storeRepo)
	storeService := services.NewStoreService(storeRepo)
	orderService := services.NewOrderService(orderRepo)
	checkoutService := services.NewCheckoutService(
		orderRepo, gateway, services.NewContextIdentity(userRepo), nil, 0,
	)

	sessions := cart.NewSessions()

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	storeHandler := handlers.NewStoreHandler(storeService, productService)
	cartHandler := handlers.NewCartHandler(sessions, productService)
	checkoutHandler := handlers.NewCheckoutHandler(sessions, cartHandler, checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	authRequired := middleware.AuthRequired(authService)
	optionalAuth := middleware.OptionalAuth(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, authRequired)
	storeHandler.RegisterRoutes(apiV1, authRequired)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1, optionalAuth)
	orderHandler.RegisterRoutes(apiV1, authRequired)

	return &testEnv{
		app:      app,
		products: productRepo,
		stores:   storeRepo,
		orders:   orderRepo,
	}
}

// seedProduct registers a store and one product directly in the repositories.
func (env *testEnv) seedProduct(id string, price float64, stock int) {
	_ = env.stores.Create(&models.Store{ID: "s1", OwnerID: "owner-1", Name: "Tech Cameroun", Slug: "tech-cameroun"})
	_ = env.products.Create(&models.Product{
		ID:            id,
		StoreID:       "s1",
		Title:         "Produit " + id,
		Price:         price,
		StockQuantity: stock,
	})
}

// jsonRequest builds a request carrying the session cookie, if any.
func jsonRequest(method, target string, body interface{}, sessionID string) *http.Request {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: handlers.SessionCookie, Value: sessionID})
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	resp.Body.Close()
	return body
}

func sessionFrom(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == handlers.SessionCookie {
			return cookie.Value
		}
	}
	return ""
}

func shippingForm() map[string]string {
	return map[string]string{
		"full_name":    "Jean Kamga",
		"address":      "Quartier Foto, Dschang",
		"phone_number": "699123456",
		"provider":     "mtn",
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})

	// Test Registration
	userToRegister := map[string]string{
		"email":     "test@example.com",
		"full_name": "Test User",
		"password":  "password123",
	}
	req := jsonRequest(http.MethodPost, "/api/v1/auth/register", userToRegister, "")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	registerResp := decodeBody(t, resp)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Test duplicate registration
	req = jsonRequest(http.MethodPost, "/api/v1/auth/register", userToRegister, "")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Test Login
	req = jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loginResp := decodeBody(t, resp)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password
	req = jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	}, "")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCartEndpoints(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})
	env.seedProduct("p1", 15000, 10)

	// First contact mints a session cookie and returns an empty cart.
	resp, err := env.app.Test(jsonRequest(http.MethodGet, "/api/v1/cart", nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := sessionFrom(resp)
	assert.NotEmpty(t, sessionID)
	body := decodeBody(t, resp)
	assert.Equal(t, 0.0, body["total"])
	assert.Equal(t, 0.0, body["count"])

	// Add an item twice: quantities merge on one line.
	addReq := map[string]interface{}{"product_id": "p1", "quantity": 2}
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", addReq, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", addReq, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, 4.0, body["count"])
	assert.Equal(t, 60000.0, body["total"])
	assert.Len(t, body["items"], 1)

	// Overwrite the quantity.
	resp, err = env.app.Test(jsonRequest(http.MethodPut, "/api/v1/cart/items/p1", map[string]int{"quantity": 1}, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 1.0, body["count"])
	assert.Equal(t, 15000.0, body["total"])

	// Remove the line.
	resp, err = env.app.Test(jsonRequest(http.MethodDelete, "/api/v1/cart/items/p1", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 0.0, body["count"])

	// Unknown product cannot be added.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "ghost"}, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCartRejectsInsufficientStock(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})
	env.seedProduct("p1", 15000, 3)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1", "quantity": 5,
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Stock insuffisant pour ce produit.", body["message"])

	// Repeated adds count against the quantity already in the line.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1", "quantity": 2,
	}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := sessionFrom(resp)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1", "quantity": 2,
	}, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Stock insuffisant pour ce produit.", body["message"])

	// The cart was not touched by the rejected add.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/cart", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 2.0, body["count"])
}

func TestCheckoutFlowSuccess(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})
	env.seedProduct("p1", 20000, 10)

	// Fill the cart.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1", "quantity": 1,
	}, ""), -1)
	assert.NoError(t, err)
	sessionID := sessionFrom(resp)
	resp.Body.Close()

	// Submit shipping info.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", shippingForm(), sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "AWAITING_PAYMENT", body["state"])

	// Pay: cart total 20000 plus the 1000 flat shipping fee.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout/pay", nil, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "COMPLETED", body["state"])
	order := body["order"].(map[string]interface{})
	assert.Equal(t, 21000.0, order["total_amount"])
	assert.Equal(t, "paid", order["status"])
	assert.NotEmpty(t, order["payment_ref"])
	assert.Nil(t, order["user_id"], "guest checkout leaves no user on the order")

	// The cart is emptied after the recorded order.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/cart", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 0.0, body["count"])

	// The order is persisted.
	orders, err := env.orders.GetAll()
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutFlowDeclined(t *testing.T) {
	env := setupApp(forcedOutcome{approve: false})
	env.seedProduct("p1", 20000, 10)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1",
	}, ""), -1)
	assert.NoError(t, err)
	sessionID := sessionFrom(resp)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", shippingForm(), sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout/pay", nil, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["message"])

	// The workflow stays in the payment step with the cart intact.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/checkout", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, "AWAITING_PAYMENT", body["state"])

	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/cart", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 1.0, body["count"])

	orders, err := env.orders.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutRecordingFailureIsNeverRecharged(t *testing.T) {
	outcome := &countingOutcome{}
	env := setupAppWithOrders(outcome, unreliableOrderRepo{repositories.NewMockOrderRepository()})
	env.seedProduct("p1", 20000, 10)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1",
	}, ""), -1)
	assert.NoError(t, err)
	sessionID := sessionFrom(resp)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", shippingForm(), sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The charge succeeds but the order cannot be recorded.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout/pay", nil, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	paymentRef, _ := body["payment_ref"].(string)
	assert.NotEmpty(t, paymentRef)

	// Retrying must not issue a second charge; the same reference is
	// surfaced for support follow-up.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout/pay", nil, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, paymentRef, body["payment_ref"])
	assert.Equal(t, 1, outcome.approvals, "the paid transaction must not be charged again")

	// Resubmitting the form does not quietly start a fresh attempt.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", shippingForm(), sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, paymentRef, body["payment_ref"])

	// The cart still holds the shopper's selection.
	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/cart", nil, sessionID), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, 1.0, body["count"])
}

func TestCheckoutGuards(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})
	env.seedProduct("p1", 5000, 10)

	// Empty cart cannot enter checkout.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", shippingForm(), ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Votre panier est vide.", body["message"])

	// Paying without submitted info is refused.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": "p1",
	}, ""), -1)
	assert.NoError(t, err)
	sessionID := sessionFrom(resp)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout/pay", nil, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// A broken shipping form reports the offending field.
	form := shippingForm()
	form["phone_number"] = ""
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", form, sessionID), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "phone_number", body["field"])
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	env := setupApp(forcedOutcome{approve: true})

	resp, err := env.app.Test(jsonRequest(http.MethodGet, "/api/v1/orders", nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
