package dtos

import (
	"time"

	"github.com/quilltips/payments-service/internal/models"
)

type ProfileResponse struct {
	ID                  string     `json:"id"`
	Role                string     `json:"role"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	StripeAccountID     *string    `json:"stripe_account_id,omitempty"`
	StripeSetupComplete bool       `json:"stripe_setup_complete"`
	OnboardingStartedAt *time.Time `json:"onboarding_started_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func NewProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID.String(),
		Role:                string(p.Role),
		Name:                p.Name,
		Email:               p.Email,
		StripeAccountID:     p.StripeAccountID,
		StripeSetupComplete: p.StripeSetupComplete,
		OnboardingStartedAt: p.StripeOnboardingStartedAt,
		CreatedAt:           p.CreatedAt,
	}
}
