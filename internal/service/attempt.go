package service

import (
	"context"
	"errors"
	"log"
	"time"
)

// AttemptState is the client-visible state of one payment attempt.
type AttemptState string

const (
	AttemptIdle       AttemptState = "idle"
	AttemptProcessing AttemptState = "processing"
	AttemptSucceeded  AttemptState = "succeeded"
	AttemptError      AttemptState = "error"
	AttemptCancelled  AttemptState = "cancelled"
)

// PaymentOutcome classifies the result of a charge submission.
type PaymentOutcome string

const (
	// OutcomeSucceeded: charge confirmed and ride row reconciled.
	OutcomeSucceeded PaymentOutcome = "succeeded"

	// OutcomeGatewayError: the charge itself failed; no money moved.
	OutcomeGatewayError PaymentOutcome = "gateway_error"

	// OutcomePartialFailure: the charge succeeded but the ride-status
	// bookkeeping write failed. Money has moved, so this must never be
	// reported as a failed booking.
	OutcomePartialFailure PaymentOutcome = "partial_failure"
)

// SubmitResult is the user-facing result of a charge submission. Message is
// human wording, not the technical error that went to the log.
type SubmitResult struct {
	Outcome PaymentOutcome
	Message string
	Amount  float64 // dollars charged, set when money moved
}

const (
	// Setup failures are retried automatically with a fixed delay, bounded
	// both by attempt count and by wall clock.
	setupMaxRetries = 3
	setupRetryDelay = 1500 * time.Millisecond
	setupTimeout    = 30 * time.Second
)

const (
	msgSetupFailed    = "Unable to set up payment. Please try again."
	msgChargeFailed   = "Payment could not be processed. Please try again."
	msgPartialFailure = "Your payment went through, but we couldn't update your ride status."
	msgPaid           = "Your ride has been confirmed and paid."
)

// PaymentAttempt is the state machine behind the payment dialog: one attempt
// exists per dialog lifecycle and is discarded when the dialog closes. It
// never outlives its process and is not persisted.
type PaymentAttempt struct {
	svc    *PaymentService
	userID string
	rideID string

	intentID     string
	clientSecret string
	amountMinor  int64

	attempts int
	state    AttemptState
	errMsg   string
}

// NewAttempt creates an attempt for one ride owned by userID.
func (s *PaymentService) NewAttempt(userID, rideID string) *PaymentAttempt {
	return &PaymentAttempt{
		svc:    s,
		userID: userID,
		rideID: rideID,
		state:  AttemptIdle,
	}
}

// Setup obtains a client secret and charge amount for the attempt. Gateway
// setup failures are retried up to setupMaxRetries times with a fixed delay;
// validation failures are surfaced immediately and not retried. On
// exhaustion the attempt lands in the error state and a later Setup call
// starts over from a zero retry count.
func (a *PaymentAttempt) Setup(ctx context.Context, req IntentRequest) error {
	a.attempts = 0
	a.errMsg = ""

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	var lastErr error
	for try := 0; try <= setupMaxRetries; try++ {
		if try > 0 {
			if err := a.svc.sleep(ctx, setupRetryDelay); err != nil {
				lastErr = err
				break
			}
		}

		a.attempts++
		resp, err := a.svc.CreateIntent(ctx, a.userID, req)
		if err == nil {
			a.intentID = resp.IntentID
			a.clientSecret = resp.ClientSecret
			a.amountMinor = resp.AmountMinor
			a.state = AttemptIdle
			return nil
		}

		if !errors.Is(err, ErrGatewaySetup) {
			// Unauthenticated or invalid request: not retryable.
			a.state = AttemptError
			a.errMsg = msgSetupFailed
			return err
		}

		log.Printf("payment: intent setup attempt %d for ride %s failed: %v", a.attempts, a.rideID, err)
		lastErr = err
	}

	a.state = AttemptError
	a.errMsg = msgSetupFailed
	return lastErr
}

// Bind attaches an existing intent to the attempt, used when resuming a
// pay-now ride whose intent was created earlier.
func (a *PaymentAttempt) Bind(intentID string, amountMinor int64) {
	a.intentID = intentID
	a.amountMinor = amountMinor
	a.state = AttemptIdle
	a.errMsg = ""
}

// Submit confirms the charge with the gateway and reconciles the ride row.
// It rejects immediately with ErrPaymentNotReady unless the attempt is in a
// submit-ready state with an intent bound.
//
// Intermediate gateway statuses (processing, requires_action) are classified
// as success: sandbox charges may never reach a terminal succeeded status
// synchronously. Recorded product tradeoff, do not fold into the decline
// path without a product decision.
func (a *PaymentAttempt) Submit(ctx context.Context, paymentMethodID string) (*SubmitResult, error) {
	if a.state != AttemptIdle || a.intentID == "" {
		return nil, ErrPaymentNotReady
	}
	a.state = AttemptProcessing

	result, err := a.svc.gateway.ConfirmIntent(ctx, a.intentID, paymentMethodID)
	if err != nil {
		log.Printf("payment: confirm of intent %s for ride %s failed: %v", a.intentID, a.rideID, err)
		a.fail(msgChargeFailed)
		return &SubmitResult{Outcome: OutcomeGatewayError, Message: msgChargeFailed}, nil
	}
	if result.Declined() {
		a.fail(result.Decline)
		return &SubmitResult{Outcome: OutcomeGatewayError, Message: result.Decline}, nil
	}

	// Money has moved. From here on every outcome must read as a successful
	// charge, whatever happens to the bookkeeping write. The gateway-quoted
	// amount is the amount of record; the locally derived fare only covers
	// results that do not echo it.
	amountMinor := result.AmountMinor
	if amountMinor == 0 {
		amountMinor = a.amountMinor
	}
	amount := float64(amountMinor) / 100
	a.state = AttemptSucceeded

	if err := a.svc.rideRepo.MarkPaid(ctx, a.rideID, amount, a.svc.now()); err != nil {
		log.Printf("payment: ride %s charged but status update failed: %v", a.rideID, err)
		return &SubmitResult{Outcome: OutcomePartialFailure, Message: msgPartialFailure, Amount: amount}, nil
	}

	a.svc.afterPaid(ctx, a.rideID)
	return &SubmitResult{Outcome: OutcomeSucceeded, Message: msgPaid, Amount: amount}, nil
}

// TryAgain moves an errored attempt back to submit-ready. The existing
// client secret is reused; no new intent is requested. Returns false when
// the attempt is not in the error state.
func (a *PaymentAttempt) TryAgain() bool {
	if a.state != AttemptError {
		return false
	}
	a.state = AttemptIdle
	a.errMsg = ""
	return true
}

// Cancel abandons the attempt from any state. It never mutates the ride's
// payment fields; an in-flight gateway confirmation is left to complete on
// its own.
func (a *PaymentAttempt) Cancel() {
	a.state = AttemptCancelled
}

func (a *PaymentAttempt) fail(msg string) {
	a.state = AttemptError
	a.errMsg = msg
}

// State returns the attempt's current state.
func (a *PaymentAttempt) State() AttemptState { return a.state }

// ErrorMessage returns the user-facing message of the last failure.
func (a *PaymentAttempt) ErrorMessage() string { return a.errMsg }

// Attempts returns how many intent requests the last Setup issued.
func (a *PaymentAttempt) Attempts() int { return a.attempts }

// ClientSecret returns the secret authorizing the client to complete the
// charge, empty until Setup succeeds.
func (a *PaymentAttempt) ClientSecret() string { return a.clientSecret }

// AmountMinor returns the charge amount in minor currency units.
func (a *PaymentAttempt) AmountMinor() int64 { return a.amountMinor }
