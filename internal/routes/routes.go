package routes

const (
	Health = "/health"

	StripeConnectOnboard = "/api/v1/stripe/connect/onboard"
	StripeWebhook        = "/api/v1/stripe/webhook"
	RemindersRun         = "/api/v1/stripe/connect/reminders/run"

	CheckoutQRCode = "/api/v1/checkout/qr-code"
	CheckoutTip    = "/api/v1/checkout/tip"

	QRCodes = "/api/v1/qr-codes"
	Profile = "/api/v1/profile"

	AnalyticsTips = "/api/v1/analytics/tips"
)
