package constants

import "time"

// Pricing. Amounts are in cents, USD.
const (
	QRCodePriceCents  int64 = 3500
	TipMinAmountCents int64 = 50
	TipMaxAmountCents int64 = 50000
)

// Onboarding reminder schedule.
const (
	Day1ReminderDelay = 24 * time.Hour
	Day3ReminderDelay = 72 * time.Hour

	ReminderTypeDay1Incomplete = "day1_onboarding_incomplete"
	ReminderTypeDay3NotStarted = "day3_onboarding_not_started"
)

// Stripe metadata keys. These travel on accounts and checkout sessions
// so webhook handlers can route events back to our records.
const (
	MetadataKeyGeneratedBy = "generated_by"
	MetadataKeyCheckout    = "type"
	MetadataKeyQRCodeID    = "qrCodeId"
	MetadataKeyAuthorID    = "authorId"
	MetadataKeyReaderName  = "readerName"
	MetadataKeyMessage     = "message"

	MetadataGeneratedByValue = "quilltips-payments-service"

	CheckoutTypeQRCodePurchase = "qr_code_purchase"
	CheckoutTypeTip            = "tip"
)

// Frontend return paths, appended to the configured frontend URL.
const (
	OnboardingReturnPath  = "/dashboard/payments?onboarding=return"
	OnboardingRefreshPath = "/dashboard/payments?onboarding=refresh"

	QRCheckoutSuccessPath = "/dashboard/qr-codes?purchase=success"
	QRCheckoutCancelPath  = "/dashboard/qr-codes?purchase=cancelled"

	TipSuccessPath = "/tip/thanks"
	TipCancelPath  = "/tip/cancelled"
)
