package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
)

var validate = validator.New()

// CheckoutController starts Stripe Checkout sessions for QR code
// purchases (authenticated) and reader tips (public).
type CheckoutController struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutController(s *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: s}
}

// QRCodeCheckoutHandler -> POST /api/v1/checkout/qr-code
func (c *CheckoutController) QRCodeCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil)
		return
	}
	authorID, err := uuid.Parse(userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid profile ID format", nil, err)
		return
	}

	var req dtos.QRCodeCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not parse request body", nil, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request", err.Error())
		return
	}

	qrCodeID, err := uuid.Parse(req.QRCodeID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid QR code ID format", nil, err)
		return
	}

	resp, err := c.checkoutService.CreateQRCodeCheckout(r.Context(), authorID, qrCodeID)
	if err != nil {
		if errors.Is(err, utils.ErrQRCodeNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "QR code not found", nil)
			return
		}
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// TipCheckoutHandler -> POST /api/v1/checkout/tip
func (c *CheckoutController) TipCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.TipCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not parse request body", nil, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request", err.Error())
		return
	}

	resp, err := c.checkoutService.CreateTipCheckout(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrQRCodeNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "QR code not found or not active", nil)
		case errors.Is(err, utils.ErrAuthorNotPayable):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Author has not finished payment setup", nil)
		default:
			utils.HandleAppError(w, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
