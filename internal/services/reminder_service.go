package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/constants"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/utils"
)

// ReminderService sweeps profiles whose Stripe onboarding is incomplete
// and nudges them by email. One profile failing never aborts the sweep;
// failures are counted and reported in the results.
type ReminderService struct {
	Cfg         *config.Config
	profileRepo repositories.ProfileRepository
	stripeAPI   StripeAPI
	connect     *StripeConnectService
	notifier    Notifier
}

func NewReminderService(
	cfg *config.Config,
	profileRepo repositories.ProfileRepository,
	api StripeAPI,
	connect *StripeConnectService,
	notifier Notifier,
) *ReminderService {
	return &ReminderService{
		Cfg:         cfg,
		profileRepo: profileRepo,
		stripeAPI:   api,
		connect:     connect,
		notifier:    notifier,
	}
}

// RunReminderSweep examines every profile with a Connect account that
// has not finished onboarding. Completed accounts get reconciled (no
// email). Accounts mid-onboarding get a day-1 reminder once at least
// 24h have passed since onboarding was first observed as started.
// Accounts never started get a day-3 reminder once 72h have passed
// since the Stripe account was created. Each reminder type is sent at
// most once per profile, tracked on the profile itself.
func (s *ReminderService) RunReminderSweep(ctx context.Context) (*dtos.ReminderSweepResults, error) {
	profiles, err := s.profileRepo.ListPendingOnboarding(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list profiles pending onboarding")
		return nil, fmt.Errorf("could not list pending profiles: %w", err)
	}

	results := &dtos.ReminderSweepResults{}
	for _, profile := range profiles {
		results.Processed++
		if err := s.processProfile(ctx, profile, results); err != nil {
			utils.Logger.WithError(err).Errorf("Reminder sweep failed for profile %s", profile.ID)
			results.Errors++
		}
	}

	utils.Logger.Infof("Reminder sweep done: processed=%d day1=%d day3=%d errors=%d",
		results.Processed, results.Day1RemindersSent, results.Day3RemindersSent, results.Errors)
	return results, nil
}

func (s *ReminderService) processProfile(ctx context.Context, profile *models.Profile, results *dtos.ReminderSweepResults) error {
	if profile.StripeAccountID == nil || *profile.StripeAccountID == "" {
		return nil
	}

	acct, err := s.stripeAPI.GetAccount(*profile.StripeAccountID, nil)
	if err != nil {
		return fmt.Errorf("could not fetch Connect account %s: %w", *profile.StripeAccountID, err)
	}

	// Fully onboarded: reconcile our record and stop reminding.
	if acct.DetailsSubmitted && acct.PayoutsEnabled {
		return s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
			stored.StripeSetupComplete = true
			if stored.StripeOnboardingCompletedAt == nil {
				stored.StripeOnboardingCompletedAt = utils.Ptr(time.Now().UTC())
			}
			return nil
		})
	}

	if acct.DetailsSubmitted {
		return s.handleStarted(ctx, profile, results)
	}
	return s.handleNotStarted(ctx, profile, acct.Created, results)
}

// handleStarted covers profiles that submitted details but aren't
// payable yet. The first sweep that sees this state only records when
// it happened; the day-1 reminder fires on a later sweep, 24h after
// that timestamp.
func (s *ReminderService) handleStarted(ctx context.Context, profile *models.Profile, results *dtos.ReminderSweepResults) error {
	if profile.StripeOnboardingStartedAt == nil {
		return s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
			if stored.StripeOnboardingStartedAt == nil {
				stored.StripeOnboardingStartedAt = utils.Ptr(time.Now().UTC())
			}
			return nil
		})
	}

	if time.Since(*profile.StripeOnboardingStartedAt) < constants.Day1ReminderDelay {
		return nil
	}
	if profile.HasReminder(constants.ReminderTypeDay1Incomplete) {
		return nil
	}

	if err := s.sendReminder(ctx, profile, constants.ReminderTypeDay1Incomplete); err != nil {
		return err
	}
	results.Day1RemindersSent++
	return nil
}

// handleNotStarted covers profiles whose Stripe account exists but has
// no submitted details. accountCreated is the Unix timestamp Stripe
// reports for the account.
func (s *ReminderService) handleNotStarted(ctx context.Context, profile *models.Profile, accountCreated int64, results *dtos.ReminderSweepResults) error {
	createdAt := time.Unix(accountCreated, 0)
	if time.Since(createdAt) < constants.Day3ReminderDelay {
		return nil
	}
	if profile.HasReminder(constants.ReminderTypeDay3NotStarted) {
		return nil
	}

	if err := s.sendReminder(ctx, profile, constants.ReminderTypeDay3NotStarted); err != nil {
		return err
	}
	results.Day3RemindersSent++
	return nil
}

// sendReminder mints a fresh onboarding link, emails it, and records
// the reminder type on the profile so it never repeats.
func (s *ReminderService) sendReminder(ctx context.Context, profile *models.Profile, reminderType string) error {
	onboarding, err := s.connect.GetExpressOnboardingURL(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("could not mint onboarding link: %w", err)
	}

	if err := s.notifier.SendOnboardingReminder(profile, reminderType, onboarding.URL); err != nil {
		return fmt.Errorf("could not send %s email: %w", reminderType, err)
	}

	return s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
		if stored.HasReminder(reminderType) {
			return nil
		}
		stored.SentReminderEmails = append(stored.SentReminderEmails, models.SentReminderEmail{
			Type:   reminderType,
			SentAt: time.Now().UTC(),
		})
		return nil
	})
}
