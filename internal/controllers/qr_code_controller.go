package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
)

type QRCodeController struct {
	qrCodeService *services.QRCodeService
}

func NewQRCodeController(s *services.QRCodeService) *QRCodeController {
	return &QRCodeController{qrCodeService: s}
}

// CreateHandler -> POST /api/v1/qr-codes
func (c *QRCodeController) CreateHandler(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.CreateQRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not parse request body", nil, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request", err.Error())
		return
	}

	qrCode, err := c.qrCodeService.CreateQRCode(r.Context(), authorID, req.BookTitle)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrProfileNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Profile not found", nil)
		case errors.Is(err, utils.ErrNotAnAuthor):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Only authors can create QR codes", nil)
		default:
			utils.HandleAppError(w, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewQRCodeResponse(qrCode))
}

// ListHandler -> GET /api/v1/qr-codes
func (c *QRCodeController) ListHandler(w http.ResponseWriter, r *http.Request) {
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

	codes, err := c.qrCodeService.ListQRCodes(r.Context(), authorID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	resp := make([]dtos.QRCodeResponse, 0, len(codes))
	for _, q := range codes {
		resp = append(resp, dtos.NewQRCodeResponse(q))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
