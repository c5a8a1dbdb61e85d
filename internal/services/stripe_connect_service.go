package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/constants"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/utils"
	stripe "github.com/stripe/stripe-go/v82"
)

// StripeConnectService owns Connect Express account creation and
// onboarding/login link generation for authors.
type StripeConnectService struct {
	Cfg         *config.Config
	profileRepo repositories.ProfileRepository
	stripeAPI   StripeAPI
}

func NewStripeConnectService(cfg *config.Config, profileRepo repositories.ProfileRepository, api StripeAPI) *StripeConnectService {
	return &StripeConnectService{
		Cfg:         cfg,
		profileRepo: profileRepo,
		stripeAPI:   api,
	}
}

// GetExpressOnboardingURL returns a fresh onboarding link for the
// author's Connect account, creating the account first if the profile
// doesn't have one yet. Repeat calls reuse the stored account id, so at
// most one Stripe account ever exists per profile. Authors whose live
// account reports onboarding finished get an Express dashboard login
// link instead.
func (s *StripeConnectService) GetExpressOnboardingURL(ctx context.Context, profileID uuid.UUID) (*dtos.OnboardingURLResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to retrieve profile for onboarding URL")
		return nil, fmt.Errorf("could not retrieve profile: %w", err)
	}
	if profile == nil {
		return nil, utils.ErrProfileNotFound
	}
	if profile.Role != models.RoleAuthor {
		return nil, utils.ErrNotAnAuthor
	}

	acct, err := s.ensureConnectAccount(ctx, profile)
	if err != nil {
		return nil, err
	}
	acctID := acct.ID

	// The account Stripe just returned decides the link type; the stored
	// flag lags until a webhook or sweep catches up, so reconcile it here.
	if acct.DetailsSubmitted && acct.PayoutsEnabled {
		if !profile.StripeSetupComplete {
			if err := s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
				stored.StripeSetupComplete = true
				if stored.StripeOnboardingCompletedAt == nil {
					stored.StripeOnboardingCompletedAt = utils.Ptr(time.Now().UTC())
				}
				return nil
			}); err != nil {
				utils.Logger.WithError(err).Errorf("Failed to mark onboarding complete for profile %s", profile.ID)
				return nil, fmt.Errorf("could not update profile: %w", err)
			}
		}

		login, err := s.stripeAPI.CreateLoginLink(&stripe.LoginLinkParams{
			Account: stripe.String(acctID),
		})
		if err != nil {
			utils.Logger.WithError(err).Error("Failed to create Stripe login link")
			return nil, fmt.Errorf("could not create login link: %w", err)
		}
		return &dtos.OnboardingURLResponse{URL: login.URL, AccountID: acctID}, nil
	}

	linkParams := &stripe.AccountLinkParams{
		Account:    stripe.String(acctID),
		ReturnURL:  stripe.String(s.Cfg.FrontendURL + constants.OnboardingReturnPath),
		RefreshURL: stripe.String(s.Cfg.FrontendURL + constants.OnboardingRefreshPath),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
		CollectionOptions: &stripe.AccountLinkCollectionOptionsParams{
			Fields: stripe.String(stripe.AccountLinkCollectEventuallyDue),
		},
	}
	acctLink, err := s.stripeAPI.CreateAccountLink(linkParams)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create Stripe AccountLink")
		return nil, fmt.Errorf("could not create AccountLink: %w", err)
	}

	return &dtos.OnboardingURLResponse{URL: acctLink.URL, AccountID: acctID}, nil
}

// HandleAccountUpdated reconciles a profile when Stripe reports
// progress on its Connect account. Events for accounts we didn't
// create are ignored.
func (s *StripeConnectService) HandleAccountUpdated(ctx context.Context, acct *stripe.Account) error {
	if acct.Metadata[constants.MetadataKeyGeneratedBy] != constants.MetadataGeneratedByValue {
		utils.Logger.Infof("Skipping account.updated for %s; metadata=%q",
			acct.ID, acct.Metadata[constants.MetadataKeyGeneratedBy])
		return nil
	}
	utils.Logger.Infof("account.updated: acctID=%s details_submitted=%v payouts_enabled=%v",
		acct.ID, acct.DetailsSubmitted, acct.PayoutsEnabled)

	profile, err := s.profileRepo.GetByStripeAccountID(ctx, acct.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Could not find profile for Connect account %s", acct.ID)
		return err
	}
	if profile == nil {
		utils.Logger.Warnf("No profile found for Connect account %s", acct.ID)
		return nil
	}

	if !acct.DetailsSubmitted {
		return nil
	}

	return s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
		if stored.StripeOnboardingStartedAt == nil {
			stored.StripeOnboardingStartedAt = utils.Ptr(time.Now().UTC())
		}
		if acct.PayoutsEnabled {
			stored.StripeSetupComplete = true
			if stored.StripeOnboardingCompletedAt == nil {
				stored.StripeOnboardingCompletedAt = utils.Ptr(time.Now().UTC())
			}
		}
		return nil
	})
}

// ensureConnectAccount returns the profile's live Connect account,
// creating and persisting a new Express account when none is stored or
// the stored one no longer exists at Stripe.
func (s *StripeConnectService) ensureConnectAccount(ctx context.Context, profile *models.Profile) (*stripe.Account, error) {
	if profile.StripeAccountID != nil && *profile.StripeAccountID != "" {
		acctID := *profile.StripeAccountID
		acct, err := s.stripeAPI.GetAccount(acctID, nil)
		if err != nil {
			if stripeErr, ok := err.(*stripe.Error); ok &&
				(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.Code == stripe.ErrorCodeAccountInvalid) {
				utils.Logger.Warnf("Stored Connect account %s for profile %s is gone; creating a replacement", acctID, profile.ID)
				return s.initializeConnectExpressAccount(ctx, profile)
			}
			utils.Logger.WithError(err).Errorf("Failed to fetch Connect account %s", acctID)
			return nil, fmt.Errorf("could not verify Connect account: %w", err)
		}
		return acct, nil
	}
	return s.initializeConnectExpressAccount(ctx, profile)
}

func (s *StripeConnectService) initializeConnectExpressAccount(ctx context.Context, profile *models.Profile) (*stripe.Account, error) {
	acctParams := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Country:      stripe.String("US"),
		Email:        stripe.String(profile.Email),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			ProductDescription: stripe.String("Author receiving reader tips via Quilltips"),
		},
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		Metadata: map[string]string{
			constants.MetadataKeyGeneratedBy: constants.MetadataGeneratedByValue,
			constants.MetadataKeyAuthorID:    profile.ID.String(),
		},
	}

	acct, err := s.stripeAPI.CreateAccount(acctParams)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create Stripe Connect account")
		return nil, fmt.Errorf("could not create Stripe Connect account: %w", err)
	}
	acctID := acct.ID

	if err := s.profileRepo.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
		stored.StripeAccountID = &acctID
		stored.StripeSetupComplete = false
		stored.StripeOnboardingStartedAt = nil
		stored.StripeOnboardingCompletedAt = nil
		return nil
	}); err != nil {
		utils.Logger.WithError(err).Error("Failed to persist new Connect account ID")
		return nil, fmt.Errorf("could not update profile with new Connect account ID: %w", err)
	}

	return acct, nil
}
