package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/utils"
)

type ProfileController struct {
	profileRepo repositories.ProfileRepository
}

func NewProfileController(profileRepo repositories.ProfileRepository) *ProfileController {
	return &ProfileController{profileRepo: profileRepo}
}

// GetHandler -> GET /api/v1/profile
func (c *ProfileController) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil)
		return
	}
	profileID, err := uuid.Parse(userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid profile ID format", nil, err)
		return
	}

	profile, err := c.profileRepo.GetByID(r.Context(), profileID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if profile == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Profile not found", nil)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewProfileResponse(profile))
}
