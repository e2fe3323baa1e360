package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the checkout workflow's transition guards.
var (
	// ErrEmptyCart blocks entry into checkout when the cart has no items.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	// ErrInfoRequired is returned when payment is attempted before the
	// shipping information step.
	ErrInfoRequired = errors.New("shipping information has not been submitted")

	// ErrPaymentInFlight rejects re-submission while a charge is pending,
	// so one checkout attempt cannot produce duplicate payment requests.
	ErrPaymentInFlight = errors.New("a payment attempt is already in progress")

	// ErrCheckoutCompleted is returned on any operation against a
	// completed checkout; a new purchase starts a fresh checkout.
	ErrCheckoutCompleted = errors.New("checkout is already completed")

	// ErrOrderNotRecorded marks a checkout whose charge went through but
	// whose order could not be recorded. Further payment attempts are
	// refused; charging again would bill the shopper twice.
	ErrOrderNotRecorded = errors.New("payment succeeded but the order was not recorded")
)

// ValidationError reports a missing or malformed checkout form field. It
// never reaches the payment step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Message)
}

// PaymentDeclinedError means the gateway refused a well-formed charge.
// The checkout stays in AwaitingPayment so the shopper can retry with the
// same form.
type PaymentDeclinedError struct {
	Message string
}

func (e *PaymentDeclinedError) Error() string {
	return e.Message
}

// PersistenceError means the order could not be recorded after a
// successful charge. The payment confirmation must not be lost: the
// transaction id is carried so the failure can be reconciled manually.
type PersistenceError struct {
	TransactionID string
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("payment %s succeeded but order recording failed: %v", e.TransactionID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
