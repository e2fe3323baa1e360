package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"marche/internal/cart"
	"marche/internal/models"
	"marche/internal/payment"
	"marche/internal/repositories"
)

// State identifies where a checkout instance is in its lifecycle.
type State string

const (
	StateCollectingInfo  State = "COLLECTING_INFO"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateCompleted       State = "COMPLETED"
	StateFailed          State = "FAILED"
)

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

func (s State) String() string {
	return string(s)
}

// ShippingFee is the flat delivery fee, in FCFA, added to every order.
const ShippingFee = 1000.0

// ShippingInfo is the form the shopper submits before paying.
type ShippingInfo struct {
	FullName    string          `json:"full_name"`
	Address     string          `json:"address"`
	PhoneNumber string          `json:"phone_number"`
	Provider    models.Provider `json:"provider"`
}

// Identity resolves the currently signed-in user, if any. Returning
// (nil, nil) means guest; guest checkout is permitted.
type Identity interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// OrderEventPublisher publishes order lifecycle events to the message
// broker. Satisfied by *rabbitmq.Client.
type OrderEventPublisher interface {
	PublishOrderPaid(event map[string]interface{}) error
}

// CheckoutService creates checkout instances wired to the payment
// gateway, the order store, the identity resolver and the event broker.
type CheckoutService struct {
	orders         repositories.OrderRepository
	gateway        payment.Gateway
	identity       Identity
	publisher      OrderEventPublisher
	paymentTimeout time.Duration
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil
// when no broker is configured; paymentTimeout bounds each charge attempt
// and defaults to 10 seconds when zero.
func NewCheckoutService(
	orders repositories.OrderRepository,
	gateway payment.Gateway,
	identity Identity,
	publisher OrderEventPublisher,
	paymentTimeout time.Duration,
) *CheckoutService {
	if paymentTimeout <= 0 {
		paymentTimeout = 10 * time.Second
	}
	return &CheckoutService{
		orders:         orders,
		gateway:        gateway,
		identity:       identity,
		publisher:      publisher,
		paymentTimeout: paymentTimeout,
	}
}

// Begin starts a checkout for the given cart. An empty cart refuses
// entry into the workflow.
func (s *CheckoutService) Begin(c *cart.Cart) (*Checkout, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return &Checkout{
		svc:   s,
		cart:  c,
		state: StateCollectingInfo,
	}, nil
}

// Checkout is a short-lived state machine driving one purchase attempt:
// CollectingInfo -> AwaitingPayment -> Completed. A declined payment is
// not terminal; the checkout stays in AwaitingPayment with the submitted
// form preserved so the shopper can resubmit. Failed is terminal: the
// charge went through but the order could not be recorded, and charging
// again would bill the shopper twice.
type Checkout struct {
	svc  *CheckoutService
	cart *cart.Cart

	mu     sync.Mutex
	state  State
	info   ShippingInfo
	paying bool
	order  *models.Order
	lastTx string
}

// State returns the current workflow state.
func (co *Checkout) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// Info returns the last submitted shipping form.
func (co *Checkout) Info() ShippingInfo {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.info
}

// Order returns the persisted order once the checkout completed, else nil.
func (co *Checkout) Order() *models.Order {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.order
}

// SubmitInfo validates the shipping form and moves the checkout to
// AwaitingPayment. It may be called again before a successful payment to
// correct the form, but not while a charge is in flight.
func (co *Checkout) SubmitInfo(info ShippingInfo) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.state == StateFailed {
		return &PersistenceError{TransactionID: co.lastTx, Err: ErrOrderNotRecorded}
	}
	if co.state.IsTerminal() {
		return ErrCheckoutCompleted
	}
	if co.paying {
		return ErrPaymentInFlight
	}
	if co.cart.IsEmpty() {
		return ErrEmptyCart
	}
	if err := validateShippingInfo(info); err != nil {
		return err
	}

	co.info = info
	co.state = StateAwaitingPayment
	return nil
}

func validateShippingInfo(info ShippingInfo) error {
	if strings.TrimSpace(info.FullName) == "" {
		return &ValidationError{Field: "full_name", Message: "Le nom complet est requis."}
	}
	if strings.TrimSpace(info.Address) == "" {
		return &ValidationError{Field: "address", Message: "L'adresse de livraison est requise."}
	}
	if strings.TrimSpace(info.PhoneNumber) == "" {
		return &ValidationError{Field: "phone_number", Message: "Le numéro payeur est requis."}
	}
	if !info.Provider.Valid() {
		return &ValidationError{Field: "provider", Message: "Choisissez un opérateur (MTN ou Orange)."}
	}
	return nil
}

// Pay charges the cart total plus the flat shipping fee through the
// payment gateway and, on success, persists the order, publishes an
// order.paid event, clears the cart and completes the checkout.
//
// A declined charge returns *PaymentDeclinedError and leaves the
// checkout retryable. A persistence failure after a successful charge
// returns *PersistenceError carrying the transaction id and moves the
// checkout to Failed: further payment attempts are refused so the paid
// transaction can never be charged twice. The cart is left intact so the
// shopper's selection survives the record-keeping failure.
func (co *Checkout) Pay(ctx context.Context) (*models.Order, error) {
	co.mu.Lock()
	if co.state == StateFailed {
		co.mu.Unlock()
		return nil, &PersistenceError{TransactionID: co.lastTx, Err: ErrOrderNotRecorded}
	}
	if co.state.IsTerminal() {
		co.mu.Unlock()
		return nil, ErrCheckoutCompleted
	}
	if co.state != StateAwaitingPayment {
		co.mu.Unlock()
		return nil, ErrInfoRequired
	}
	if co.paying {
		co.mu.Unlock()
		return nil, ErrPaymentInFlight
	}

	// Snapshot the cart at submission time so later cart mutations
	// cannot affect the order being placed.
	items := co.cart.Items()
	if len(items) == 0 {
		co.mu.Unlock()
		return nil, ErrEmptyCart
	}
	info := co.info
	co.paying = true
	co.mu.Unlock()

	var subtotal float64
	for _, item := range items {
		subtotal += item.Subtotal()
	}
	amount := subtotal + ShippingFee

	payCtx, cancel := context.WithTimeout(ctx, co.svc.paymentTimeout)
	defer cancel()

	result, err := co.svc.gateway.RequestPayment(payCtx, models.PaymentRequest{
		Provider:    info.Provider,
		PhoneNumber: info.PhoneNumber,
		Amount:      amount,
	})

	co.mu.Lock()
	defer co.mu.Unlock()
	co.paying = false

	if err != nil {
		// Timeout or cancellation: treated as a failed attempt the
		// shopper must retry, never left in an unbounded pending state.
		log.Printf("Payment request aborted: %v", err)
		return nil, &PaymentDeclinedError{
			Message: "Le paiement n'a pas abouti dans le délai imparti. Veuillez réessayer.",
		}
	}
	if !result.Success {
		return nil, &PaymentDeclinedError{Message: result.Message}
	}
	co.lastTx = result.TransactionID

	order := buildOrder(items, amount, info, result.TransactionID, co.currentUserID(ctx))
	if err := co.svc.orders.Create(order); err != nil {
		log.Printf("Order recording failed after successful payment %s: %v", result.TransactionID, err)
		co.state = StateFailed
		return nil, &PersistenceError{TransactionID: result.TransactionID, Err: err}
	}

	co.publishOrderPaid(order)
	co.cart.Clear()
	co.order = order
	co.state = StateCompleted
	return order, nil
}

// currentUserID resolves the optional buyer id. Any identity failure is
// downgraded to guest checkout rather than blocking a paid order.
func (co *Checkout) currentUserID(ctx context.Context) *string {
	if co.svc.identity == nil {
		return nil
	}
	user, err := co.svc.identity.CurrentUser(ctx)
	if err != nil {
		log.Printf("Identity lookup failed, placing order as guest: %v", err)
		return nil
	}
	if user == nil {
		return nil
	}
	return &user.ID
}

func buildOrder(items []cart.Item, amount float64, info ShippingInfo, paymentRef string, userID *string) *models.Order {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       item.Product.ID,
			ProductTitle:    item.Product.Title,
			StoreID:         item.Product.StoreID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Product.EffectivePrice(),
		})
	}
	return &models.Order{
		UserID:          userID,
		Items:           orderItems,
		TotalAmount:     amount,
		Status:          models.OrderStatusPaid,
		PaymentMethod:   string(info.Provider),
		PaymentRef:      paymentRef,
		ShippingAddress: info.Address,
	}
}

// publishOrderPaid emits the order.paid event. Publishing is best effort:
// the order is already recorded, so a broker failure only gets logged.
func (co *Checkout) publishOrderPaid(order *models.Order) {
	if co.svc.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"orderID":    order.ID,
		"status":     order.Status,
		"total":      order.TotalAmount,
		"paymentRef": order.PaymentRef,
	}
	if order.UserID != nil {
		event["userID"] = *order.UserID
	}
	if err := co.svc.publisher.PublishOrderPaid(event); err != nil {
		log.Printf("Warning: failed to publish order paid event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Published order paid event for order %s", order.ID)
	}
}
