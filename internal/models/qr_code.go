package models

import (
	"time"

	"github.com/google/uuid"
)

type QRCodeStatusType string

const (
	QRCodeStatusPending QRCodeStatusType = "pending"
	QRCodeStatusActive  QRCodeStatusType = "active"
)

// QRCode is one tip-jar code for one book. It starts pending and
// unpaid; a completed checkout flips it to active/paid.
type QRCode struct {
	Versioned

	ID              uuid.UUID        `json:"id"`
	AuthorID        uuid.UUID        `json:"author_id"`
	BookTitle       string           `json:"book_title"`
	QRCodeStatus    QRCodeStatusType `json:"qr_code_status"`
	IsPaid          bool             `json:"is_paid"`
	StripeSessionID *string          `json:"stripe_session_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *QRCode) GetID() string {
	return q.ID.String()
}
