package dtos

// OnboardingURLResponse is returned when an onboarding link was minted.
type OnboardingURLResponse struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// StripeErrorResponse is the error shape for the Stripe Connect and
// webhook endpoints. Type distinguishes Stripe failures from our own.
type StripeErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Debug string `json:"debug,omitempty"`
}

const (
	ErrorTypeStripe   = "stripe_error"
	ErrorTypeConfig   = "config_error"
	ErrorTypeInternal = "internal_error"
)

// WebhookAckResponse acknowledges a processed webhook event.
type WebhookAckResponse struct {
	Status string `json:"status"`
}
