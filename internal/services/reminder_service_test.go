package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quilltips/payments-service/internal/constants"
	"github.com/quilltips/payments-service/internal/testhelpers"
	"github.com/quilltips/payments-service/internal/utils"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

func newReminderFixture(api *testhelpers.FakeStripeAPI) (*ReminderService, *testhelpers.FakeProfileRepo, *testhelpers.FakeNotifier) {
	cfg := testConfig()
	profileRepo := testhelpers.NewFakeProfileRepo()
	notifier := &testhelpers.FakeNotifier{}
	connect := NewStripeConnectService(cfg, profileRepo, api)
	svc := NewReminderService(cfg, profileRepo, api, connect, notifier)
	return svc, profileRepo, notifier
}

func TestRunReminderSweep_SkipsCompletedProfiles(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{}
	svc, profileRepo, notifier := newReminderFixture(api)

	done := newAuthorProfile()
	done.StripeAccountID = utils.Ptr("acct_done")
	done.StripeSetupComplete = true
	done.StripeOnboardingCompletedAt = utils.Ptr(time.Now())
	require.NoError(t, profileRepo.Create(ctx, done))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, results.Processed)
	require.Zero(t, api.GetAccountCalls, "completed profiles must not trigger Stripe lookups")
	require.Empty(t, notifier.Reminders)
}

func TestRunReminderSweep_ReconcilesCompletedOnboarding(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{ID: id, DetailsSubmitted: true, PayoutsEnabled: true}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_finished")
	require.NoError(t, profileRepo.Create(ctx, author))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Processed)
	require.Zero(t, results.Day1RemindersSent)
	require.Zero(t, results.Day3RemindersSent)
	require.Empty(t, notifier.Reminders)

	stored := profileRepo.Profiles[author.ID]
	require.True(t, stored.StripeSetupComplete)
	require.NotNil(t, stored.StripeOnboardingCompletedAt)
}

func TestRunReminderSweep_Day1Reminder(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{ID: id, DetailsSubmitted: true}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_started")
	require.NoError(t, profileRepo.Create(ctx, author))

	// First sweep only records when onboarding was observed as started.
	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Processed)
	require.Zero(t, results.Day1RemindersSent)
	require.Empty(t, notifier.Reminders)
	require.NotNil(t, profileRepo.Profiles[author.ID].StripeOnboardingStartedAt)

	// Not yet 24h since the observation: still nothing.
	results, err = svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, results.Day1RemindersSent)

	// Push the observation 25h into the past.
	profileRepo.Profiles[author.ID].StripeOnboardingStartedAt = utils.Ptr(time.Now().Add(-25 * time.Hour))

	results, err = svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Day1RemindersSent)
	require.Len(t, notifier.Reminders, 1)
	require.Equal(t, constants.ReminderTypeDay1Incomplete, notifier.Reminders[0].ReminderType)
	require.NotEmpty(t, notifier.Reminders[0].URL)

	// Re-running never double-sends.
	results, err = svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, results.Day1RemindersSent)
	require.Len(t, notifier.Reminders, 1)
}

func TestRunReminderSweep_Day3Reminder(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{
				ID:      id,
				Created: time.Now().Add(-80 * time.Hour).Unix(),
			}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_untouched")
	require.NoError(t, profileRepo.Create(ctx, author))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Day3RemindersSent)
	require.Len(t, notifier.Reminders, 1)
	require.Equal(t, constants.ReminderTypeDay3NotStarted, notifier.Reminders[0].ReminderType)
	require.True(t, profileRepo.Profiles[author.ID].HasReminder(constants.ReminderTypeDay3NotStarted))

	results, err = svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, results.Day3RemindersSent)
	require.Len(t, notifier.Reminders, 1)
}

func TestRunReminderSweep_TooEarlyForDay3(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{
				ID:      id,
				Created: time.Now().Add(-time.Hour).Unix(),
			}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_fresh")
	require.NoError(t, profileRepo.Create(ctx, author))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Processed)
	require.Zero(t, results.Day3RemindersSent)
	require.Empty(t, notifier.Reminders)
}

func TestRunReminderSweep_OneFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			if id == "acct_broken" {
				return nil, errors.New("stripe timeout")
			}
			return &stripe.Account{
				ID:      id,
				Created: time.Now().Add(-80 * time.Hour).Unix(),
			}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)

	broken := newAuthorProfile()
	broken.StripeAccountID = utils.Ptr("acct_broken")
	broken.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, profileRepo.Create(ctx, broken))

	healthy := newAuthorProfile()
	healthy.StripeAccountID = utils.Ptr("acct_healthy")
	require.NoError(t, profileRepo.Create(ctx, healthy))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, results.Processed)
	require.Equal(t, 1, results.Errors)
	require.Equal(t, 1, results.Day3RemindersSent)
	require.Len(t, notifier.Reminders, 1)
	require.Equal(t, healthy.ID, notifier.Reminders[0].ProfileID)
}

func TestRunReminderSweep_EmailFailureCountsAsError(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{
		GetAccountFn: func(id string, params *stripe.AccountParams) (*stripe.Account, error) {
			return &stripe.Account{
				ID:      id,
				Created: time.Now().Add(-80 * time.Hour).Unix(),
			}, nil
		},
	}
	svc, profileRepo, notifier := newReminderFixture(api)
	notifier.Err = errors.New("sendgrid 503")

	author := newAuthorProfile()
	author.StripeAccountID = utils.Ptr("acct_nomail")
	require.NoError(t, profileRepo.Create(ctx, author))

	results, err := svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Errors)
	require.Zero(t, results.Day3RemindersSent)
	require.False(t, profileRepo.Profiles[author.ID].HasReminder(constants.ReminderTypeDay3NotStarted),
		"a failed email must not be recorded as sent")

	// Once email delivery recovers, the reminder goes out.
	notifier.Err = nil
	results, err = svc.RunReminderSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, results.Day3RemindersSent)
}

func TestRunReminderSweep_ListFailure(t *testing.T) {
	ctx := context.Background()
	api := &testhelpers.FakeStripeAPI{}
	svc, profileRepo, _ := newReminderFixture(api)
	profileRepo.ListErr = errors.New("db down")

	_, err := svc.RunReminderSweep(ctx)
	require.Error(t, err)
}
