package controllers

import (
	"net/http"

	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
)

// ReminderController exposes the onboarding-reminder sweep so an
// external scheduler can trigger it in addition to the in-process cron.
type ReminderController struct {
	reminderService *services.ReminderService
}

func NewReminderController(s *services.ReminderService) *ReminderController {
	return &ReminderController{reminderService: s}
}

// RunRemindersHandler -> POST /api/v1/stripe/connect/reminders/run
func (c *ReminderController) RunRemindersHandler(w http.ResponseWriter, r *http.Request) {
	results, err := c.reminderService.RunReminderSweep(r.Context())
	if err != nil {
		utils.Logger.WithError(err).Error("Reminder sweep failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, dtos.ReminderSweepResponse{Success: false})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ReminderSweepResponse{
		Success: true,
		Results: *results,
	})
}
