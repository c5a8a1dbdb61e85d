package dtos

import (
	"time"

	"github.com/quilltips/payments-service/internal/models"
)

type CreateQRCodeRequest struct {
	BookTitle string `json:"book_title" validate:"required,max=200"`
}

type QRCodeResponse struct {
	ID           string    `json:"id"`
	BookTitle    string    `json:"book_title"`
	QRCodeStatus string    `json:"qr_code_status"`
	IsPaid       bool      `json:"is_paid"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewQRCodeResponse(q *models.QRCode) QRCodeResponse {
	return QRCodeResponse{
		ID:           q.ID.String(),
		BookTitle:    q.BookTitle,
		QRCodeStatus: string(q.QRCodeStatus),
		IsPaid:       q.IsPaid,
		CreatedAt:    q.CreatedAt,
	}
}
