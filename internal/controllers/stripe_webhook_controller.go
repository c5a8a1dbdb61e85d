package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeWebhookController is the single webhook endpoint for Stripe
// events. Signature failures get a 400; handler failures get a 500 so
// Stripe redelivers.
type StripeWebhookController struct {
	cfg             *config.Config
	checkoutService *services.CheckoutService
	connectService  *services.StripeConnectService
}

func NewStripeWebhookController(cfg *config.Config, checkoutService *services.CheckoutService, connectService *services.StripeConnectService) *StripeWebhookController {
	return &StripeWebhookController{
		cfg:             cfg,
		checkoutService: checkoutService,
		connectService:  connectService,
	}
}

// WebhookHandler -> POST /api/v1/stripe/webhook
func (c *StripeWebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		utils.Logger.Error("Missing Stripe-Signature header")
		utils.RespondWithJSON(w, http.StatusBadRequest, dtos.StripeErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read webhook body")
		utils.RespondWithJSON(w, http.StatusBadRequest, dtos.StripeErrorResponse{Error: "Could not read request body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, c.cfg.StripeWebhookSecret)
	if err != nil {
		utils.Logger.WithError(err).Error("Stripe webhook signature verification failed")
		utils.RespondWithJSON(w, http.StatusBadRequest, dtos.StripeErrorResponse{Error: "Webhook signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			utils.Logger.WithError(err).Error("Could not parse session in checkout.session.completed")
			utils.RespondWithJSON(w, http.StatusInternalServerError, dtos.StripeErrorResponse{Error: "Could not parse checkout session"})
			return
		}
		if err := c.checkoutService.HandleCheckoutSessionCompleted(r.Context(), &sess); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to apply checkout.session.completed for %s", sess.ID)
			utils.RespondWithJSON(w, http.StatusInternalServerError, dtos.StripeErrorResponse{Error: "Failed to process checkout session"})
			return
		}

	case "account.updated":
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			utils.Logger.WithError(err).Error("Could not parse account in account.updated")
			utils.RespondWithJSON(w, http.StatusInternalServerError, dtos.StripeErrorResponse{Error: "Could not parse account"})
			return
		}
		if err := c.connectService.HandleAccountUpdated(r.Context(), &acct); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to apply account.updated for %s", acct.ID)
			utils.RespondWithJSON(w, http.StatusInternalServerError, dtos.StripeErrorResponse{Error: "Failed to process account update"})
			return
		}

	default:
		utils.Logger.Infof("Unhandled Stripe event type: %s", event.Type)
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.WebhookAckResponse{Status: "success"})
}
