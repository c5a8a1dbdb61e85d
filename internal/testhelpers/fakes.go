package testhelpers

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/quilltips/payments-service/internal/models"
	stripe "github.com/stripe/stripe-go/v82"
)

// FakeProfileRepo is an in-memory ProfileRepository.
type FakeProfileRepo struct {
	Profiles map[uuid.UUID]*models.Profile
	GetErr   error
	ListErr  error
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{Profiles: make(map[uuid.UUID]*models.Profile)}
}

func (f *FakeProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	p.RowVersion = 1
	f.Profiles[p.ID] = p
	return nil
}

func (f *FakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Profiles[id], nil
}

func (f *FakeProfileRepo) GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error) {
	for _, p := range f.Profiles {
		if p.StripeAccountID != nil && *p.StripeAccountID == acct {
			return p, nil
		}
	}
	return nil, nil
}

func (f *FakeProfileRepo) ListPendingOnboarding(ctx context.Context) ([]*models.Profile, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []*models.Profile
	for _, p := range f.Profiles {
		if p.StripeAccountID != nil && *p.StripeAccountID != "" && p.StripeOnboardingCompletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	p.RowVersion++
	f.Profiles[p.ID] = p
	return nil
}

func (f *FakeProfileRepo) UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error) {
	stored, ok := f.Profiles[p.ID]
	if !ok || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	p.RowVersion = expected + 1
	f.Profiles[p.ID] = p
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (f *FakeProfileRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error {
	stored, ok := f.Profiles[id]
	if !ok {
		return errors.New("profile not found")
	}
	if err := mutate(stored); err != nil {
		return err
	}
	stored.RowVersion++
	return nil
}

// FakeQRCodeRepo is an in-memory QRCodeRepository.
type FakeQRCodeRepo struct {
	QRCodes map[uuid.UUID]*models.QRCode
}

func NewFakeQRCodeRepo() *FakeQRCodeRepo {
	return &FakeQRCodeRepo{QRCodes: make(map[uuid.UUID]*models.QRCode)}
}

func (f *FakeQRCodeRepo) Create(ctx context.Context, q *models.QRCode) error {
	q.RowVersion = 1
	f.QRCodes[q.ID] = q
	return nil
}

func (f *FakeQRCodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	return f.QRCodes[id], nil
}

func (f *FakeQRCodeRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.QRCode, error) {
	var out []*models.QRCode
	for _, q := range f.QRCodes {
		if q.AuthorID == authorID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *FakeQRCodeRepo) UpdateIfVersion(ctx context.Context, q *models.QRCode, expected int64) (pgconn.CommandTag, error) {
	stored, ok := f.QRCodes[q.ID]
	if !ok || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	q.RowVersion = expected + 1
	f.QRCodes[q.ID] = q
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (f *FakeQRCodeRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.QRCode) error) error {
	stored, ok := f.QRCodes[id]
	if !ok {
		return errors.New("qr code not found")
	}
	if err := mutate(stored); err != nil {
		return err
	}
	stored.RowVersion++
	return nil
}

// FakeTipRepo is an in-memory TipRepository keyed on the Stripe
// checkout session id, matching the unique constraint in Postgres.
type FakeTipRepo struct {
	Tips []*models.Tip
}

func NewFakeTipRepo() *FakeTipRepo {
	return &FakeTipRepo{}
}

func (f *FakeTipRepo) Create(ctx context.Context, t *models.Tip) error {
	for _, existing := range f.Tips {
		if existing.StripeSessionID == t.StripeSessionID {
			return nil
		}
	}
	f.Tips = append(f.Tips, t)
	return nil
}

func (f *FakeTipRepo) GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Tip, error) {
	for _, t := range f.Tips {
		if t.StripeSessionID == sessionID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *FakeTipRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Tip, error) {
	var out []*models.Tip
	for _, t := range f.Tips {
		if t.AuthorID == authorID {
			out = append(out, t)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeTipRepo) GetAuthorTipStats(ctx context.Context, authorID uuid.UUID) (*models.TipStats, error) {
	stats := &models.TipStats{}
	for _, t := range f.Tips {
		if t.AuthorID != authorID {
			continue
		}
		stats.TipCount++
		stats.TotalAmountCents += t.AmountCents
		if stats.LastTipAt == nil || t.CreatedAt.After(*stats.LastTipAt) {
			created := t.CreatedAt
			stats.LastTipAt = &created
		}
	}
	return stats, nil
}

// FakeStripeAPI stubs the Stripe SDK surface. Each call delegates to
// the corresponding Fn when set and counts invocations.
type FakeStripeAPI struct {
	CreateAccountFn         func(params *stripe.AccountParams) (*stripe.Account, error)
	GetAccountFn            func(id string, params *stripe.AccountParams) (*stripe.Account, error)
	CreateAccountLinkFn     func(params *stripe.AccountLinkParams) (*stripe.AccountLink, error)
	CreateLoginLinkFn       func(params *stripe.LoginLinkParams) (*stripe.LoginLink, error)
	CreateCheckoutSessionFn func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

	CreateAccountCalls         int
	GetAccountCalls            int
	CreateAccountLinkCalls     int
	CreateLoginLinkCalls       int
	CreateCheckoutSessionCalls int
}

func (f *FakeStripeAPI) CreateAccount(params *stripe.AccountParams) (*stripe.Account, error) {
	f.CreateAccountCalls++
	if f.CreateAccountFn != nil {
		return f.CreateAccountFn(params)
	}
	return &stripe.Account{ID: "acct_test_" + randomString(8)}, nil
}

func (f *FakeStripeAPI) GetAccount(id string, params *stripe.AccountParams) (*stripe.Account, error) {
	f.GetAccountCalls++
	if f.GetAccountFn != nil {
		return f.GetAccountFn(id, params)
	}
	return &stripe.Account{ID: id}, nil
}

func (f *FakeStripeAPI) CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	f.CreateAccountLinkCalls++
	if f.CreateAccountLinkFn != nil {
		return f.CreateAccountLinkFn(params)
	}
	return &stripe.AccountLink{URL: "https://connect.stripe.com/setup/test"}, nil
}

func (f *FakeStripeAPI) CreateLoginLink(params *stripe.LoginLinkParams) (*stripe.LoginLink, error) {
	f.CreateLoginLinkCalls++
	if f.CreateLoginLinkFn != nil {
		return f.CreateLoginLinkFn(params)
	}
	return &stripe.LoginLink{URL: "https://connect.stripe.com/express/test"}, nil
}

func (f *FakeStripeAPI) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.CreateCheckoutSessionCalls++
	if f.CreateCheckoutSessionFn != nil {
		return f.CreateCheckoutSessionFn(params)
	}
	return &stripe.CheckoutSession{
		ID:  "cs_test_" + randomString(8),
		URL: "https://checkout.stripe.com/c/pay/test",
	}, nil
}

// SentReminder records one FakeNotifier reminder call.
type SentReminder struct {
	ProfileID    uuid.UUID
	ReminderType string
	URL          string
}

// FakeNotifier records email attempts instead of sending them.
type FakeNotifier struct {
	PurchaseConfirmations []uuid.UUID
	TipNotifications      []uuid.UUID
	Reminders             []SentReminder
	Err                   error
}

func (f *FakeNotifier) SendQRCodePurchaseConfirmation(author *models.Profile, qrCode *models.QRCode) error {
	f.PurchaseConfirmations = append(f.PurchaseConfirmations, qrCode.ID)
	return f.Err
}

func (f *FakeNotifier) SendTipReceived(author *models.Profile, qrCode *models.QRCode, tip *models.Tip) error {
	f.TipNotifications = append(f.TipNotifications, qrCode.ID)
	return f.Err
}

func (f *FakeNotifier) SendOnboardingReminder(author *models.Profile, reminderType string, onboardingURL string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Reminders = append(f.Reminders, SentReminder{
		ProfileID:    author.ID,
		ReminderType: reminderType,
		URL:          onboardingURL,
	})
	return nil
}
