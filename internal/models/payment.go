package models

// Provider identifies a mobile-money operator.
type Provider string

const (
	ProviderMTN    Provider = "mtn"
	ProviderOrange Provider = "orange"
)

// Valid reports whether the provider is one of the supported operators.
func (p Provider) Valid() bool {
	return p == ProviderMTN || p == ProviderOrange
}

// PaymentRequest is the charge request sent to the mobile-money gateway.
type PaymentRequest struct {
	Provider    Provider `json:"provider" validate:"required,oneof=mtn orange"`
	PhoneNumber string   `json:"phone_number" validate:"required"`
	Amount      float64  `json:"amount" validate:"required,gt=0"`
}

// PaymentResult is the gateway's response to a charge request.
// TransactionID is set iff Success is true.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
}
