// Package payment simulates a push-based mobile-money gateway (MTN MoMo,
// Orange Money). In production this would call the operators' REST APIs:
// a Request-to-Pay push followed by status polling or a webhook listener.
package payment

import (
	"context"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"marche/internal/models"
)

// Gateway is the charge contract consumed by the checkout workflow. A
// declined charge is reported inside PaymentResult; the error return is
// reserved for transport-level failures such as a cancelled context.
type Gateway interface {
	RequestPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error)
}

// Cameroonian mobile numbers: 9 digits starting with 6 or 2.
var phonePattern = regexp.MustCompile(`^[26][0-9]{8}$`)

// ValidPhoneNumber reports whether number is an acceptable local mobile
// number.
func ValidPhoneNumber(number string) bool {
	return phonePattern.MatchString(number)
}

// OutcomeSource decides whether a well-formed charge request is approved.
// Injecting it keeps the simulation deterministic under test.
type OutcomeSource interface {
	Approve() bool
}

// RandomOutcome approves charges with the configured probability. It is
// the production OutcomeSource.
type RandomOutcome struct {
	SuccessRate float64
}

func (r RandomOutcome) Approve() bool {
	return rand.Float64() < r.SuccessRate
}

const (
	msgInvalidPhone = "Numéro de téléphone invalide. Utilisez un format camerounais (ex: 699...)"
	msgSuccess      = "Paiement effectué avec succès. Votre commande est confirmée."
	msgDeclined     = "Le paiement a échoué ou a été annulé par l'utilisateur. Veuillez réessayer."
)

// Simulator is a Gateway that validates the payer number, waits a
// configurable latency and then resolves the charge through its
// OutcomeSource. It keeps no state and never retries; retry is the
// caller's decision.
type Simulator struct {
	outcome OutcomeSource
	latency time.Duration
}

// NewSimulator creates a Simulator. A nil outcome defaults to a 90%
// random success rate.
func NewSimulator(outcome OutcomeSource, latency time.Duration) *Simulator {
	if outcome == nil {
		outcome = RandomOutcome{SuccessRate: 0.9}
	}
	return &Simulator{
		outcome: outcome,
		latency: latency,
	}
}

// RequestPayment implements Gateway. Format validation happens before any
// simulated network activity, so malformed numbers fail immediately.
func (s *Simulator) RequestPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error) {
	log.Printf("[PaymentGateway] Initiating %s payment of %.0f FCFA for %s",
		strings.ToUpper(string(req.Provider)), req.Amount, req.PhoneNumber)

	if !ValidPhoneNumber(req.PhoneNumber) {
		return &models.PaymentResult{
			Success: false,
			Message: msgInvalidPhone,
		}, nil
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !s.outcome.Approve() {
		return &models.PaymentResult{
			Success: false,
			Message: msgDeclined,
		}, nil
	}

	return &models.PaymentResult{
		Success:       true,
		TransactionID: transactionID(req.Provider),
		Message:       msgSuccess,
	}, nil
}

// transactionID builds a provider-prefixed unique reference, e.g.
// "MTN-6f1c…".
func transactionID(provider models.Provider) string {
	return strings.ToUpper(string(provider)) + "-" + uuid.New().String()
}
