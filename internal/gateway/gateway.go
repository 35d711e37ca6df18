package gateway

import "context"

// IntentStatus is the gateway's view of a payment intent.
type IntentStatus string

const (
	IntentSucceeded             IntentStatus = "succeeded"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentCanceled              IntentStatus = "canceled"
)

// Intent is an opaque handle authorizing collection of a specific amount,
// paired with the client secret used to complete the charge.
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Status       IntentStatus
}

// CreateIntentRequest carries the parameters for creating a payment intent.
type CreateIntentRequest struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string // ride/user/location audit trail
}

// ConfirmResult is the outcome of submitting a charge. AmountMinor echoes the
// amount the gateway actually collected against the intent. Decline carries
// the gateway's human-readable reason when the charge failed definitively; it
// is empty for succeeded and intermediate statuses.
type ConfirmResult struct {
	Status      IntentStatus
	AmountMinor int64
	Decline     string
}

// Declined reports whether the charge failed definitively.
func (r *ConfirmResult) Declined() bool {
	return r.Decline != ""
}

// PaymentGateway is the interface to the hosted payment provider.
type PaymentGateway interface {
	// CreateIntent creates a transaction intent for the given amount.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// ConfirmIntent submits the charge for an existing intent. A transport or
	// provider failure is returned as err; a card decline comes back in the
	// result so callers can surface the gateway's own message.
	ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*ConfirmResult, error)
}
