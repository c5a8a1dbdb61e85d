package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
	stripe "github.com/stripe/stripe-go/v82"
)

// StripeConnectController handles author-facing Connect endpoints.
type StripeConnectController struct {
	connectService *services.StripeConnectService
}

func NewStripeConnectController(s *services.StripeConnectService) *StripeConnectController {
	return &StripeConnectController{connectService: s}
}

// OnboardHandler -> POST /api/v1/stripe/connect/onboard
// Responds with {url, accountId} on success, {error, type} on failure.
func (c *StripeConnectController) OnboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithJSON(w, http.StatusUnauthorized, dtos.StripeErrorResponse{
			Error: "Missing userID in context",
			Type:  dtos.ErrorTypeInternal,
		})
		return
	}

	profileID, err := uuid.Parse(userID)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, dtos.StripeErrorResponse{
			Error: "Invalid profile ID format",
			Type:  dtos.ErrorTypeInternal,
		})
		return
	}

	resp, err := c.connectService.GetExpressOnboardingURL(r.Context(), profileID)
	if err != nil {
		status, errResp := classifyConnectError(err)
		utils.Logger.WithError(err).Error("Failed to create onboarding link")
		utils.RespondWithJSON(w, status, errResp)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func classifyConnectError(err error) (int, dtos.StripeErrorResponse) {
	var stripeErr *stripe.Error
	switch {
	case errors.As(err, &stripeErr):
		return http.StatusInternalServerError, dtos.StripeErrorResponse{
			Error: "Stripe rejected the request",
			Type:  dtos.ErrorTypeStripe,
			Debug: stripeErr.Msg,
		}
	case errors.Is(err, utils.ErrProfileNotFound):
		return http.StatusNotFound, dtos.StripeErrorResponse{
			Error: "Profile not found",
			Type:  dtos.ErrorTypeInternal,
		}
	case errors.Is(err, utils.ErrNotAnAuthor):
		return http.StatusForbidden, dtos.StripeErrorResponse{
			Error: "Only authors can connect a payout account",
			Type:  dtos.ErrorTypeConfig,
		}
	default:
		return http.StatusInternalServerError, dtos.StripeErrorResponse{
			Error: "Failed to create onboarding link",
			Type:  dtos.ErrorTypeInternal,
		}
	}
}
