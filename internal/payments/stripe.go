package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
)

// CheckoutSession is the subset of the provider session the API exposes.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   int64  `json:"amount_cents"`
}

// Checkout abstracts the hosted checkout provider so handlers can be tested
// without network access.
type Checkout interface {
	CreateSession(ctx context.Context, amountCents int64, currency, description, successURL, cancelURL string) (CheckoutSession, error)
	GetSession(ctx context.Context, id string) (CheckoutSession, error)
}

// StripeCheckout is a thin wrapper around stripe-go hosted Checkout Sessions.
type StripeCheckout struct{}

// NewStripeCheckout sets the package-level API key used by stripe-go.
func NewStripeCheckout(apiKey string) *StripeCheckout {
	stripe.Key = apiKey
	return &StripeCheckout{}
}

func (s *StripeCheckout) CreateSession(ctx context.Context, amountCents int64, currency, description, successURL, cancelURL string) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(amountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(description),
				},
			},
		}},
	}
	sess, err := session.New(params)
	if err != nil {
		return CheckoutSession{}, err
	}
	return fromStripe(sess), nil
}

func (s *StripeCheckout) GetSession(ctx context.Context, id string) (CheckoutSession, error) {
	sess, err := session.Get(id, nil)
	if err != nil {
		return CheckoutSession{}, err
	}
	return fromStripe(sess), nil
}

func fromStripe(sess *stripe.CheckoutSession) CheckoutSession {
	return CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountCents:   sess.AmountTotal,
	}
}
