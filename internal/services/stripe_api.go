package services

import (
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/loginlink"
)

// StripeAPI narrows the Stripe SDK surface this service touches so the
// services can take an injected client instead of calling package-level
// functions directly.
type StripeAPI interface {
	CreateAccount(params *stripe.AccountParams) (*stripe.Account, error)
	GetAccount(id string, params *stripe.AccountParams) (*stripe.Account, error)
	CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error)
	CreateLoginLink(params *stripe.LoginLinkParams) (*stripe.LoginLink, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeAPI struct{}

// NewStripeAPI sets the package-level API key and returns the live client.
func NewStripeAPI(secretKey string) StripeAPI {
	stripe.Key = secretKey
	return &stripeAPI{}
}

func (a *stripeAPI) CreateAccount(params *stripe.AccountParams) (*stripe.Account, error) {
	return account.New(params)
}

func (a *stripeAPI) GetAccount(id string, params *stripe.AccountParams) (*stripe.Account, error) {
	return account.GetByID(id, params)
}

func (a *stripeAPI) CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	return accountlink.New(params)
}

func (a *stripeAPI) CreateLoginLink(params *stripe.LoginLinkParams) (*stripe.LoginLink, error) {
	return loginlink.New(params)
}

func (a *stripeAPI) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}
