package models

import (
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleAuthor RoleType = "author"
	RoleReader RoleType = "reader"
	RoleAdmin  RoleType = "admin"
)

// SentReminderEmail records one onboarding-reminder email that has
// already gone out, so sweeps never double-send the same type.
type SentReminderEmail struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sent_at"`
}

type Profile struct {
	Versioned

	ID    uuid.UUID `json:"id"`
	Role  RoleType  `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`

	StripeAccountID             *string             `json:"stripe_account_id,omitempty"`
	StripeSetupComplete         bool                `json:"stripe_setup_complete"`
	StripeOnboardingStartedAt   *time.Time          `json:"stripe_onboarding_started_at,omitempty"`
	StripeOnboardingCompletedAt *time.Time          `json:"stripe_onboarding_completed_at,omitempty"`
	SentReminderEmails          []SentReminderEmail `json:"sent_reminder_emails"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) GetID() string {
	return p.ID.String()
}

// HasReminder reports whether a reminder of the given type was already sent.
func (p *Profile) HasReminder(reminderType string) bool {
	for _, r := range p.SentReminderEmails {
		if r.Type == reminderType {
			return true
		}
	}
	return false
}
