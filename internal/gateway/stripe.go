package gateway

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeGateway implements PaymentGateway against the Stripe API.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client with the secret key.
// The key never leaves the server; clients only ever see the publishable key.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

var _ PaymentGateway = (*StripeGateway)(nil)

// CreateIntent creates a Stripe payment intent with automatic payment methods
// enabled and the booking's audit metadata attached.
func (g *StripeGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Status:       IntentStatus(pi.Status),
	}, nil
}

// ConfirmIntent submits the charge. Stripe reports declines as *stripe.Error
// with a cardholder-safe message; those become a ConfirmResult decline rather
// than an error so the caller can show the gateway's own wording.
func (g *StripeGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*ConfirmResult, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			msg := stripeErr.Msg
			if msg == "" {
				msg = "Your card was declined."
			}
			return &ConfirmResult{Status: IntentRequiresPaymentMethod, Decline: msg}, nil
		}
		return nil, err
	}

	return &ConfirmResult{Status: IntentStatus(pi.Status), AmountMinor: pi.Amount}, nil
}
