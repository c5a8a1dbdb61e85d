package dtos

// QRCodeCheckoutRequest starts a checkout for a pending QR code owned
// by the authenticated author.
type QRCodeCheckoutRequest struct {
	QRCodeID string `json:"qr_code_id" validate:"required,uuid4"`
}

// TipCheckoutRequest starts a public tip checkout against an active QR
// code. Amount is in cents.
type TipCheckoutRequest struct {
	QRCodeID    string `json:"qr_code_id" validate:"required,uuid4"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=50,max=50000"`
	ReaderName  string `json:"reader_name" validate:"max=100"`
	Message     string `json:"message" validate:"max=500"`
}

type CheckoutSessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}
