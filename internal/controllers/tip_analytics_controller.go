package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
)

type TipAnalyticsController struct {
	analyticsService *services.TipAnalyticsService
}

func NewTipAnalyticsController(s *services.TipAnalyticsService) *TipAnalyticsController {
	return &TipAnalyticsController{analyticsService: s}
}

// TipsHandler -> GET /api/v1/analytics/tips
func (c *TipAnalyticsController) TipsHandler(w http.ResponseWriter, r *http.Request) {
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

	resp, err := c.analyticsService.GetAuthorTipAnalytics(r.Context(), authorID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
