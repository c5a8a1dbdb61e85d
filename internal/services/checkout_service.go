package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/constants"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/utils"
	stripe "github.com/stripe/stripe-go/v82"
)

// CheckoutService creates Stripe Checkout sessions for QR code
// purchases and reader tips, and applies the corresponding
// checkout.session.completed events.
type CheckoutService struct {
	Cfg         *config.Config
	profileRepo repositories.ProfileRepository
	qrCodeRepo  repositories.QRCodeRepository
	tipRepo     repositories.TipRepository
	stripeAPI   StripeAPI
	notifier    Notifier
}

func NewCheckoutService(
	cfg *config.Config,
	profileRepo repositories.ProfileRepository,
	qrCodeRepo repositories.QRCodeRepository,
	tipRepo repositories.TipRepository,
	api StripeAPI,
	notifier Notifier,
) *CheckoutService {
	return &CheckoutService{
		Cfg:         cfg,
		profileRepo: profileRepo,
		qrCodeRepo:  qrCodeRepo,
		tipRepo:     tipRepo,
		stripeAPI:   api,
		notifier:    notifier,
	}
}

// CreateQRCodeCheckout starts a checkout for a pending QR code owned by
// the calling author.
func (s *CheckoutService) CreateQRCodeCheckout(ctx context.Context, authorID, qrCodeID uuid.UUID) (*dtos.CheckoutSessionResponse, error) {
	qrCode, err := s.qrCodeRepo.GetByID(ctx, qrCodeID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve QR code: %w", err)
	}
	if qrCode == nil {
		return nil, utils.ErrQRCodeNotFound
	}
	if qrCode.AuthorID != authorID {
		return nil, utils.ErrQRCodeNotFound
	}
	if qrCode.IsPaid {
		return nil, &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeConflict,
			Message:    "QR code is already paid for",
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Quilltips QR code for %s", qrCode.BookTitle)),
					},
					UnitAmount: stripe.Int64(constants.QRCodePriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.Cfg.FrontendURL + constants.QRCheckoutSuccessPath),
		CancelURL:  stripe.String(s.Cfg.FrontendURL + constants.QRCheckoutCancelPath),
		Metadata: map[string]string{
			constants.MetadataKeyGeneratedBy: constants.MetadataGeneratedByValue,
			constants.MetadataKeyCheckout:    constants.CheckoutTypeQRCodePurchase,
			constants.MetadataKeyQRCodeID:    qrCode.ID.String(),
			constants.MetadataKeyAuthorID:    authorID.String(),
		},
	}

	sess, err := s.stripeAPI.CreateCheckoutSession(params)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create QR code checkout session")
		return nil, fmt.Errorf("could not create checkout session: %w", err)
	}

	return &dtos.CheckoutSessionResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

// CreateTipCheckout starts a public checkout that routes the payment to
// the author's connected account.
func (s *CheckoutService) CreateTipCheckout(ctx context.Context, req *dtos.TipCheckoutRequest) (*dtos.CheckoutSessionResponse, error) {
	qrCodeID, err := uuid.Parse(req.QRCodeID)
	if err != nil {
		return nil, utils.ErrQRCodeNotFound
	}

	qrCode, err := s.qrCodeRepo.GetByID(ctx, qrCodeID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve QR code: %w", err)
	}
	if qrCode == nil || qrCode.QRCodeStatus != models.QRCodeStatusActive {
		return nil, utils.ErrQRCodeNotFound
	}

	author, err := s.profileRepo.GetByID(ctx, qrCode.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve author: %w", err)
	}
	if author == nil {
		return nil, utils.ErrProfileNotFound
	}
	if !author.StripeSetupComplete || author.StripeAccountID == nil || *author.StripeAccountID == "" {
		return nil, utils.ErrAuthorNotPayable
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Tip for %s", author.Name)),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(*author.StripeAccountID),
			},
		},
		SuccessURL: stripe.String(s.Cfg.FrontendURL + constants.TipSuccessPath),
		CancelURL:  stripe.String(s.Cfg.FrontendURL + constants.TipCancelPath),
		Metadata: map[string]string{
			constants.MetadataKeyGeneratedBy: constants.MetadataGeneratedByValue,
			constants.MetadataKeyCheckout:    constants.CheckoutTypeTip,
			constants.MetadataKeyQRCodeID:    qrCode.ID.String(),
			constants.MetadataKeyAuthorID:    qrCode.AuthorID.String(),
			constants.MetadataKeyReaderName:  req.ReaderName,
			constants.MetadataKeyMessage:     req.Message,
		},
	}

	sess, err := s.stripeAPI.CreateCheckoutSession(params)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create tip checkout session")
		return nil, fmt.Errorf("could not create checkout session: %w", err)
	}

	return &dtos.CheckoutSessionResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

// HandleCheckoutSessionCompleted routes a completed checkout to the
// purchase or tip handler based on the session's metadata. Sessions
// without one of our type tags belong to something else on the Stripe
// account; erroring would just make Stripe redeliver them, so they are
// logged and dropped.
func (s *CheckoutService) HandleCheckoutSessionCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	checkoutType := sess.Metadata[constants.MetadataKeyCheckout]
	switch checkoutType {
	case constants.CheckoutTypeTip:
		return s.handleTipCompleted(ctx, sess)
	case constants.CheckoutTypeQRCodePurchase:
		return s.handleQRCodePurchaseCompleted(ctx, sess)
	default:
		utils.Logger.Infof("Ignoring checkout session %s with unrecognized type %q", sess.ID, checkoutType)
		return nil
	}
}

// handleQRCodePurchaseCompleted flips the QR code to paid/active and
// sends a best-effort confirmation email. Replayed events are no-ops
// once the code is active.
func (s *CheckoutService) handleQRCodePurchaseCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	qrCodeID, authorID, err := idsFromSessionMetadata(sess)
	if err != nil {
		return err
	}

	sessionID := sess.ID
	if err := s.qrCodeRepo.UpdateWithRetry(ctx, qrCodeID, func(stored *models.QRCode) error {
		stored.IsPaid = true
		stored.QRCodeStatus = models.QRCodeStatusActive
		stored.StripeSessionID = &sessionID
		return nil
	}); err != nil {
		return fmt.Errorf("could not mark QR code %s paid: %w", qrCodeID, err)
	}

	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil || author == nil {
		utils.Logger.WithError(err).Warnf("Skipping purchase email; could not load author %s", authorID)
		return nil
	}
	qrCode, err := s.qrCodeRepo.GetByID(ctx, qrCodeID)
	if err != nil || qrCode == nil {
		utils.Logger.WithError(err).Warnf("Skipping purchase email; could not reload QR code %s", qrCodeID)
		return nil
	}

	if err := s.notifier.SendQRCodePurchaseConfirmation(author, qrCode); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send purchase confirmation to %s", author.Email)
	}
	return nil
}

// handleTipCompleted records the tip and sends a best-effort email to
// the author. The tip insert is keyed on the session id, so replayed
// events never double-record.
func (s *CheckoutService) handleTipCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	qrCodeID, authorID, err := idsFromSessionMetadata(sess)
	if err != nil {
		return err
	}

	existing, err := s.tipRepo.GetByStripeSessionID(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("could not check for existing tip: %w", err)
	}
	if existing != nil {
		utils.Logger.Infof("Tip for session %s already recorded; skipping", sess.ID)
		return nil
	}

	tip := &models.Tip{
		ID:              uuid.New(),
		QRCodeID:        qrCodeID,
		AuthorID:        authorID,
		AmountCents:     sess.AmountTotal,
		ReaderName:      sess.Metadata[constants.MetadataKeyReaderName],
		Message:         sess.Metadata[constants.MetadataKeyMessage],
		StripeSessionID: sess.ID,
	}
	if err := s.tipRepo.Create(ctx, tip); err != nil {
		return fmt.Errorf("could not record tip for session %s: %w", sess.ID, err)
	}

	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil || author == nil {
		utils.Logger.WithError(err).Warnf("Skipping tip email; could not load author %s", authorID)
		return nil
	}
	qrCode, err := s.qrCodeRepo.GetByID(ctx, qrCodeID)
	if err != nil || qrCode == nil {
		utils.Logger.WithError(err).Warnf("Skipping tip email; could not load QR code %s", qrCodeID)
		return nil
	}

	if err := s.notifier.SendTipReceived(author, qrCode, tip); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send tip notification to %s", author.Email)
	}
	return nil
}

func idsFromSessionMetadata(sess *stripe.CheckoutSession) (uuid.UUID, uuid.UUID, error) {
	qrCodeStr := sess.Metadata[constants.MetadataKeyQRCodeID]
	authorStr := sess.Metadata[constants.MetadataKeyAuthorID]
	if qrCodeStr == "" || authorStr == "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("checkout session %s is missing qrCodeId/authorId metadata", sess.ID)
	}

	qrCodeID, err := uuid.Parse(qrCodeStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("checkout session %s has invalid qrCodeId %q: %w", sess.ID, qrCodeStr, err)
	}
	authorID, err := uuid.Parse(authorStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("checkout session %s has invalid authorId %q: %w", sess.ID, authorStr, err)
	}
	return qrCodeID, authorID, nil
}
