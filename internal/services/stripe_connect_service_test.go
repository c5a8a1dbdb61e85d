package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/testhelpers"
	"github.com/quilltips/payments-service/internal/utils"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

func testConfig() *config.Config {
	return &config.Config{
		AppURL:      "https://api.quilltips.test",
		FrontendURL: "https://quilltips.test",
	}
}

func newAuthorProfile() *models.Profile {
	return &models.Profile{
		ID:        uuid.New(),
		Role:      models.RoleAuthor,
		Name:      "Pat Writer",
		Email:     "pat@example.com",
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func TestGetExpressOnboardingURL_CreatesAccountOnce(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	author := newAuthorProfile()
	require.NoError(t, profileRepo.Create(ctx, author))

	first, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.URL)
	require.NotEmpty(t, first.AccountID)
	require.Equal(t, 1, api.CreateAccountCalls)

	stored := profileRepo.Profiles[author.ID]
	require.NotNil(t, stored.StripeAccountID)
	require.Equal(t, first.AccountID, *stored.StripeAccountID)
	require.False(t, stored.StripeSetupComplete)

	second, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, first.AccountID, second.AccountID)
	require.Equal(t, 1, api.CreateAccountCalls, "repeat calls must reuse the stored account")
	require.Equal(t, 2, api.CreateAccountLinkCalls)
}

func TestGetExpressOnboardingURL_PersistsAccountBeforeLink(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{
		CreateAccountLinkFn: func(params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
			return nil, errors.New("stripe is down")
		},
	}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	author := newAuthorProfile()
	require.NoError(t, profileRepo.Create(ctx, author))

	_, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.Error(t, err)

	// The account id must already be stored even though the link failed,
	// so a retry cannot create a second account.
	stored := profileRepo.Profiles[author.ID]
	require.NotNil(t, stored.StripeAccountID)
	require.NotEmpty(t, *stored.StripeAccountID)

	api.CreateAccountLinkFn = nil
	resp, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, *stored.StripeAccountID, resp.AccountID)
	require.Equal(t, 1, api.CreateAccountCalls)
}

func TestGetExpressOnboardingURL_LoginLinkWhenOnboarded(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{ID: id, DetailsSubmitted: true, PayoutsEnabled: true}, nil
		},
	}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_done")
	author.StripeSetupComplete = true
	author.StripeOnboardingCompletedAt = utils.Ptr(time.Now())
	require.NoError(t, profileRepo.Create(ctx, author))

	resp, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, "acct_done", resp.AccountID)
	require.Equal(t, 1, api.CreateLoginLinkCalls)
	require.Zero(t, api.CreateAccountLinkCalls)
	require.Zero(t, api.CreateAccountCalls)
}

func TestGetExpressOnboardingURL_LoginLinkFromLiveAccountState(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{ID: id, DetailsSubmitted: true, PayoutsEnabled: true}, nil
		},
	}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	// Stripe already reports the account as fully onboarded, but no
	// webhook or sweep has updated the profile yet.
	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_fresh_done")
	require.NoError(t, profileRepo.Create(ctx, author))

	resp, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.Equal(t, "acct_fresh_done", resp.AccountID)
	require.Equal(t, 1, api.CreateLoginLinkCalls, "fully onboarded account must get a login link")
	require.Zero(t, api.CreateAccountLinkCalls)

	stored := profileRepo.Profiles[author.ID]
	require.True(t, stored.StripeSetupComplete)
	require.NotNil(t, stored.StripeOnboardingCompletedAt)
}

func TestGetExpressOnboardingURL_RecreatesMissingAccount(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return nil, &stripe.Error{Code: stripe.ErrorCodeResourceMissing}
		},
	}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_stale")
	require.NoError(t, profileRepo.Create(ctx, author))

	resp, err := svc.GetExpressOnboardingURL(ctx, author.ID)
	require.NoError(t, err)
	require.NotEqual(t, "acct_stale", resp.AccountID)
	require.Equal(t, 1, api.CreateAccountCalls)

	stored := profileRepo.Profiles[author.ID]
	require.Equal(t, resp.AccountID, *stored.StripeAccountID)
}

func TestGetExpressOnboardingURL_RejectsNonAuthors(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	reader := newAuthorProfile()
	reader.Role = models.RoleReader
	require.NoError(t, profileRepo.Create(ctx, reader))

	_, err := svc.GetExpressOnboardingURL(ctx, reader.ID)
	require.ErrorIs(t, err, utils.ErrNotAnAuthor)
	require.Zero(t, api.CreateAccountCalls)

	_, err = svc.GetExpressOnboardingURL(ctx, uuid.New())
	require.ErrorIs(t, err, utils.ErrProfileNotFound)
}

func TestHandleAccountUpdated(t *testing.T) {
	ctx := context.Background()
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{}
	svc := NewStripeConnectService(testConfig(), profileRepo, api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_hook")
	require.NoError(t, profileRepo.Create(ctx, author))

	ourMetadata := map[string]string{"generated_by": "quilltips-payments-service"}

	t.Run("ignores accounts we did not create", func(t *testing.T) {
		err := svc.HandleAccountUpdated(ctx, &stripe.Account{
			ID:               "acct_hook",
			DetailsSubmitted: true,
			PayoutsEnabled:   true,
			Metadata:         map[string]string{"generated_by": "someone-else"},
		})
		require.NoError(t, err)
		require.False(t, profileRepo.Profiles[author.ID].StripeSetupComplete)
	})

	t.Run("records onboarding start", func(t *testing.T) {
		err := svc.HandleAccountUpdated(ctx, &stripe.Account{
			ID:               "acct_hook",
			DetailsSubmitted: true,
			Metadata:         ourMetadata,
		})
		require.NoError(t, err)
		stored := profileRepo.Profiles[author.ID]
		require.NotNil(t, stored.StripeOnboardingStartedAt)
		require.False(t, stored.StripeSetupComplete)
	})

	t.Run("marks setup complete when payable", func(t *testing.T) {
		err := svc.HandleAccountUpdated(ctx, &stripe.Account{
			ID:               "acct_hook",
			DetailsSubmitted: true,
			PayoutsEnabled:   true,
			Metadata:         ourMetadata,
		})
		require.NoError(t, err)
		stored := profileRepo.Profiles[author.ID]
		require.True(t, stored.StripeSetupComplete)
		require.NotNil(t, stored.StripeOnboardingCompletedAt)
	})
}
