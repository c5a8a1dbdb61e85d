package services

import (
	"fmt"
	"html"

	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/constants"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const qrCodePurchaseEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #2d6a4f; margin-bottom: 15px; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; text-align: center; }
p { margin-bottom: 15px; }
</style>
</head>
<body>
<div class="container">
<p class="header">Your QR code is ready</p>
<p>Hi %s,</p>
<p>Thanks for your purchase! The QR code for <strong>%s</strong> is now active. Readers who scan it will land on your tip page.</p>
<p>You can download the printable code from your dashboard any time.</p>
<div class="footer">The Quilltips Team</div>
</div>
</body>
</html>`

const tipReceivedEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #2d6a4f; margin-bottom: 15px; }
.tip-message { border-left: 3px solid #2d6a4f; padding-left: 15px; font-style: italic; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; text-align: center; }
p { margin-bottom: 15px; }
</style>
</head>
<body>
<div class="container">
<p class="header">You received a tip!</p>
<p>Hi %s,</p>
<p><strong>%s</strong> just tipped you <strong>$%.2f</strong> for <strong>%s</strong>.</p>
%s
<p>The funds are on their way to your connected Stripe account.</p>
<div class="footer">The Quilltips Team</div>
</div>
</body>
</html>`

const onboardingReminderEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #b07d2b; margin-bottom: 15px; }
.button-container { text-align: center; margin: 30px 0; }
.button { background-color: #2d6a4f; color: white !important; padding: 12px 25px; text-align: center; text-decoration: none; display: inline-block; border-radius: 5px; font-weight: bold; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; text-align: center; }
p { margin-bottom: 15px; }
</style>
</head>
<body>
<div class="container">
<p class="header">Finish setting up payments</p>
<p>Hi %s,</p>
<p>%s</p>
<div class="button-container">
  <a href="%s" class="button">Finish Payment Setup</a>
</div>
<p>Until setup is complete, tips from your readers cannot reach you.</p>
<div class="footer">The Quilltips Team</div>
</div>
</body>
</html>`

// Notifier sends the transactional emails this service produces. All
// sends are best effort; callers log failures and move on.
type Notifier interface {
	SendQRCodePurchaseConfirmation(author *models.Profile, qrCode *models.QRCode) error
	SendTipReceived(author *models.Profile, qrCode *models.QRCode, tip *models.Tip) error
	SendOnboardingReminder(author *models.Profile, reminderType string, onboardingURL string) error
}

type SendgridNotificationService struct {
	cfg    *config.Config
	client *sendgrid.Client
}

func NewSendgridNotificationService(cfg *config.Config) *SendgridNotificationService {
	return &SendgridNotificationService{
		cfg:    cfg,
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
	}
}

func (s *SendgridNotificationService) SendQRCodePurchaseConfirmation(author *models.Profile, qrCode *models.QRCode) error {
	subject := "Your Quilltips QR code is active"
	plainText := fmt.Sprintf(
		"Hi %s,\n\nThanks for your purchase! The QR code for %q is now active. Readers who scan it will land on your tip page.\n\nYou can download the printable code from your dashboard any time.\n\n- The Quilltips Team",
		author.Name, qrCode.BookTitle,
	)
	htmlContent := fmt.Sprintf(qrCodePurchaseEmailHTML, author.Name, qrCode.BookTitle)
	return s.send(author, subject, plainText, htmlContent)
}

func (s *SendgridNotificationService) SendTipReceived(author *models.Profile, qrCode *models.QRCode, tip *models.Tip) error {
	subject, plainText, htmlContent := tipReceivedEmailBodies(author, qrCode, tip)
	return s.send(author, subject, plainText, htmlContent)
}

// tipReceivedEmailBodies builds the tip email. ReaderName and Message
// come straight from the public tip form, so they are HTML-escaped
// before landing in the body.
func tipReceivedEmailBodies(author *models.Profile, qrCode *models.QRCode, tip *models.Tip) (subject, plainText, htmlContent string) {
	readerName := tip.ReaderName
	if readerName == "" {
		readerName = "A reader"
	}

	var messageHTML string
	plainMessage := ""
	if tip.Message != "" {
		messageHTML = fmt.Sprintf(`<p class="tip-message">%s</p>`, html.EscapeString(tip.Message))
		plainMessage = fmt.Sprintf("\n\nTheir message: %q", tip.Message)
	}

	subject = fmt.Sprintf("You received a $%.2f tip!", float64(tip.AmountCents)/100.0)
	plainText = fmt.Sprintf(
		"Hi %s,\n\n%s just tipped you $%.2f for %q.%s\n\nThe funds are on their way to your connected Stripe account.\n\n- The Quilltips Team",
		author.Name, readerName, float64(tip.AmountCents)/100.0, qrCode.BookTitle, plainMessage,
	)
	htmlContent = fmt.Sprintf(
		tipReceivedEmailHTML,
		author.Name, html.EscapeString(readerName), float64(tip.AmountCents)/100.0, qrCode.BookTitle, messageHTML,
	)
	return subject, plainText, htmlContent
}

func (s *SendgridNotificationService) SendOnboardingReminder(author *models.Profile, reminderType string, onboardingURL string) error {
	subject := "Reminder: finish setting up payments on Quilltips"
	body := "You started connecting a payout account but haven't finished yet. It only takes a few minutes to complete."
	if reminderType == constants.ReminderTypeDay3NotStarted {
		subject = "Your Quilltips payout account is waiting"
		body = "You created a Quilltips account a few days ago but haven't begun payment setup. Connecting a payout account takes just a few minutes."
	}
	if onboardingURL == "" {
		return fmt.Errorf("onboarding reminder for %s is missing a URL", author.ID)
	}

	plainText := fmt.Sprintf(
		"Hi %s,\n\n%s\n\nFinish payment setup: %s\n\nUntil setup is complete, tips from your readers cannot reach you.\n\n- The Quilltips Team",
		author.Name, body, onboardingURL,
	)
	htmlContent := fmt.Sprintf(onboardingReminderEmailHTML, author.Name, body, onboardingURL)
	return s.send(author, subject, plainText, htmlContent)
}

func (s *SendgridNotificationService) send(to *models.Profile, subject, plainText, htmlContent string) error {
	from := mail.NewEmail("Quilltips", s.cfg.SendgridFromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)

	msg := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)
	if s.cfg.SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		utils.Logger.Errorf("Sendgrid rejected email %q to %s: status=%d body=%s", subject, to.Email, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
