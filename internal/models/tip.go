package models

import (
	"time"

	"github.com/google/uuid"
)

// Tip is an append-only record of one completed reader tip. The
// Stripe checkout session id is unique, which makes webhook
// redelivery a no-op.
type Tip struct {
	ID              uuid.UUID `json:"id"`
	QRCodeID        uuid.UUID `json:"qr_code_id"`
	AuthorID        uuid.UUID `json:"author_id"`
	AmountCents     int64     `json:"amount_cents"`
	ReaderName      string    `json:"reader_name,omitempty"`
	Message         string    `json:"message,omitempty"`
	StripeSessionID string    `json:"stripe_session_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// TipStats aggregates an author's tips for the analytics endpoint.
type TipStats struct {
	TipCount         int64      `json:"tip_count"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	LastTipAt        *time.Time `json:"last_tip_at,omitempty"`
}
