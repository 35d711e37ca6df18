package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/gateway"
	"corpcab/internal/repository"
)

// stubRideRepo is a white-box test double with overridable behavior.
type stubRideRepo struct {
	rides            map[string]*domain.Ride
	markPaidErr      error
	setIntentErr     error
	markPaidCalls    int
	setIntentCalls   int
	lastPaidAmount   float64
	lastIntentAmount float64
}

func newStubRideRepo() *stubRideRepo {
	return &stubRideRepo{rides: make(map[string]*domain.Ride)}
}

func (s *stubRideRepo) Create(ctx context.Context, ride *domain.Ride) error {
	s.rides[ride.ID] = ride
	return nil
}

func (s *stubRideRepo) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	ride, ok := s.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (s *stubRideRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Ride, error) {
	return nil, nil
}

func (s *stubRideRepo) ListAll(ctx context.Context) ([]*domain.Ride, error) {
	return nil, nil
}

func (s *stubRideRepo) UpdateStatus(ctx context.Context, id string, to domain.RideStatus, allowedFrom ...domain.RideStatus) error {
	return nil
}

func (s *stubRideRepo) SetPaymentIntent(ctx context.Context, id, intentID string, amount float64, paymentDate time.Time) error {
	s.setIntentCalls++
	s.lastIntentAmount = amount
	if s.setIntentErr != nil {
		return s.setIntentErr
	}
	if ride, ok := s.rides[id]; ok {
		ride.PaymentIntentID = intentID
		ride.Status = domain.RideStatusPendingPayment
	}
	return nil
}

func (s *stubRideRepo) MarkPaid(ctx context.Context, id string, amount float64, paymentDate time.Time) error {
	s.markPaidCalls++
	s.lastPaidAmount = amount
	if s.markPaidErr != nil {
		return s.markPaidErr
	}
	if ride, ok := s.rides[id]; ok {
		ride.Status = domain.RideStatusPaid
		ride.Amount = amount
		ride.Charged = true
	}
	return nil
}

// stubGateway scripts gateway behavior per call.
type stubGateway struct {
	createErrs    []error // consumed per call; nil entry means success
	createCalls   int
	confirmResult *gateway.ConfirmResult
	confirmErr    error
}

func (s *stubGateway) CreateIntent(ctx context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	idx := s.createCalls
	s.createCalls++
	if idx < len(s.createErrs) && s.createErrs[idx] != nil {
		return nil, s.createErrs[idx]
	}
	return &gateway.Intent{
		ID:           "pi_stub",
		ClientSecret: "pi_stub_secret",
		AmountMinor:  req.AmountMinor,
		Status:       gateway.IntentRequiresPaymentMethod,
	}, nil
}

func (s *stubGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*gateway.ConfirmResult, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	if s.confirmResult != nil {
		return s.confirmResult, nil
	}
	return &gateway.ConfirmResult{Status: gateway.IntentSucceeded}, nil
}

func newTestPaymentService(repo *stubRideRepo, gw *stubGateway) (*PaymentService, *[]time.Duration) {
	svc := NewPaymentService(repo, gw, nil, nil, nil, nil)

	sleeps := &[]time.Duration{}
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc, sleeps
}

func validIntentRequest() IntentRequest {
	return IntentRequest{
		RideID:         "ride-1",
		PickupLocation: "Office Park",
		DropLocation:   "Airport",
		VehicleType:    "suv",
	}
}

func TestAttemptSetup_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1"}
	gw := &stubGateway{}
	svc, sleeps := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	if err := attempt.Setup(context.Background(), validIntentRequest()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if attempt.Attempts() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempt.Attempts())
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no retry delays, got %d", len(*sleeps))
	}
	if attempt.State() != AttemptIdle {
		t.Errorf("expected idle state, got %s", attempt.State())
	}
	if attempt.ClientSecret() != "pi_stub_secret" {
		t.Errorf("expected client secret to be set, got %q", attempt.ClientSecret())
	}
	if attempt.AmountMinor() != 3000 {
		t.Errorf("expected suv fare 3000, got %d", attempt.AmountMinor())
	}
}

func TestAttemptSetup_RetriesWithFixedDelay(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1"}
	gw := &stubGateway{createErrs: []error{errors.New("gateway down"), errors.New("gateway down"), nil}}
	svc, sleeps := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	if err := attempt.Setup(context.Background(), validIntentRequest()); err != nil {
		t.Fatalf("expected eventual success, got: %v", err)
	}

	if attempt.Attempts() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempt.Attempts())
	}
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 retry delays, got %d", len(*sleeps))
	}
	for i, d := range *sleeps {
		if d != 1500*time.Millisecond {
			t.Errorf("delay %d: expected 1.5s, got %s", i, d)
		}
	}
}

func TestAttemptSetup_ExhaustsAfterThreeRetries(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1"}
	gw := &stubGateway{createErrs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	svc, sleeps := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	err := attempt.Setup(context.Background(), validIntentRequest())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// One initial try plus exactly three retries.
	if attempt.Attempts() != 4 {
		t.Errorf("expected 4 attempts, got %d", attempt.Attempts())
	}
	if gw.createCalls != 4 {
		t.Errorf("expected 4 gateway calls, got %d", gw.createCalls)
	}
	if len(*sleeps) != 3 {
		t.Errorf("expected 3 retry delays, got %d", len(*sleeps))
	}
	if attempt.State() != AttemptError {
		t.Errorf("expected error state, got %s", attempt.State())
	}
	if attempt.ErrorMessage() != msgSetupFailed {
		t.Errorf("expected %q, got %q", msgSetupFailed, attempt.ErrorMessage())
	}
}

func TestAttemptSetup_ValidationErrorNotRetried(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	gw := &stubGateway{}
	svc, sleeps := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	req := validIntentRequest()
	req.PickupLocation = ""

	err := attempt.Setup(context.Background(), req)
	if !errors.Is(err, ErrMissingPickupLocation) {
		t.Fatalf("expected ErrMissingPickupLocation, got: %v", err)
	}
	if attempt.Attempts() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempt.Attempts())
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no retries for a validation error, got %d", len(*sleeps))
	}
	if gw.createCalls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.createCalls)
	}
}

func TestAttemptSetup_ManualRetryStartsFresh(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1"}
	gw := &stubGateway{createErrs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"), nil,
	}}
	svc, _ := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	if err := attempt.Setup(context.Background(), validIntentRequest()); err == nil {
		t.Fatal("expected first Setup to exhaust")
	}

	// A manual retry gets a full fresh budget, not the exhausted one.
	if err := attempt.Setup(context.Background(), validIntentRequest()); err != nil {
		t.Fatalf("expected second Setup to succeed, got: %v", err)
	}
	if attempt.Attempts() != 1 {
		t.Errorf("expected attempt counter reset to 1, got %d", attempt.Attempts())
	}
	if attempt.State() != AttemptIdle {
		t.Errorf("expected idle state, got %s", attempt.State())
	}
}

func TestAttemptSubmit_RejectsWhenNotReady(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	svc, _ := newTestPaymentService(repo, &stubGateway{})

	// No intent bound.
	attempt := svc.NewAttempt("user-1", "ride-1")
	if _, err := attempt.Submit(context.Background(), "pm_card"); !errors.Is(err, ErrPaymentNotReady) {
		t.Errorf("expected ErrPaymentNotReady without intent, got: %v", err)
	}

	// Errored attempt must go through TryAgain first.
	attempt.Bind("pi_stub", 2000)
	attempt.fail("declined")
	if _, err := attempt.Submit(context.Background(), "pm_card"); !errors.Is(err, ErrPaymentNotReady) {
		t.Errorf("expected ErrPaymentNotReady in error state, got: %v", err)
	}
}

func TestAttemptSubmit_TransportErrorIsGatewayError(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment}
	gw := &stubGateway{confirmErr: errors.New("connection reset")}
	svc, _ := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	attempt.Bind("pi_stub", 3000)

	result, err := attempt.Submit(context.Background(), "pm_card")
	if err != nil {
		t.Fatalf("expected classified result, got error: %v", err)
	}
	if result.Outcome != OutcomeGatewayError {
		t.Errorf("expected gateway_error outcome, got %s", result.Outcome)
	}
	if result.Message != msgChargeFailed {
		t.Errorf("expected %q, got %q", msgChargeFailed, result.Message)
	}
	if repo.markPaidCalls != 0 {
		t.Errorf("expected no MarkPaid call, got %d", repo.markPaidCalls)
	}
	if attempt.State() != AttemptError {
		t.Errorf("expected error state, got %s", attempt.State())
	}
}

func TestAttemptSubmit_DeclineUsesGatewayMessage(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment}
	gw := &stubGateway{confirmResult: &gateway.ConfirmResult{
		Status:  gateway.IntentRequiresPaymentMethod,
		Decline: "Your card has insufficient funds.",
	}}
	svc, _ := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	attempt.Bind("pi_stub", 3000)

	result, err := attempt.Submit(context.Background(), "pm_card")
	if err != nil {
		t.Fatalf("expected classified result, got error: %v", err)
	}
	if result.Outcome != OutcomeGatewayError {
		t.Errorf("expected gateway_error outcome, got %s", result.Outcome)
	}
	if result.Message != "Your card has insufficient funds." {
		t.Errorf("expected gateway's own message, got %q", result.Message)
	}
	if attempt.ErrorMessage() != "Your card has insufficient funds." {
		t.Errorf("expected decline message stored, got %q", attempt.ErrorMessage())
	}
}

func TestAttemptSubmit_IntermediateStatusCountsAsSuccess(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment}
	gw := &stubGateway{confirmResult: &gateway.ConfirmResult{Status: gateway.IntentProcessing}}
	svc, _ := newTestPaymentService(repo, gw)

	attempt := svc.NewAttempt("user-1", "ride-1")
	attempt.Bind("pi_stub", 5000)

	result, err := attempt.Submit(context.Background(), "pm_card")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Errorf("expected succeeded outcome for processing status, got %s", result.Outcome)
	}
	if repo.markPaidCalls != 1 {
		t.Errorf("expected MarkPaid called once, got %d", repo.markPaidCalls)
	}
	if repo.lastPaidAmount != 50.0 {
		t.Errorf("expected 50.00 recorded, got %.2f", repo.lastPaidAmount)
	}
}

func TestAttemptSubmit_PartialFailureNeverReadsAsChargeFailure(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment}
	repo.markPaidErr = errors.New("database unavailable")
	svc, _ := newTestPaymentService(repo, &stubGateway{})

	attempt := svc.NewAttempt("user-1", "ride-1")
	attempt.Bind("pi_stub", 3000)

	result, err := attempt.Submit(context.Background(), "pm_card")
	if err != nil {
		t.Fatalf("expected classified result, got error: %v", err)
	}
	if result.Outcome != OutcomePartialFailure {
		t.Fatalf("expected partial_failure outcome, got %s", result.Outcome)
	}
	if result.Message != msgPartialFailure {
		t.Errorf("expected partial-failure message, got %q", result.Message)
	}
	if result.Amount != 30.0 {
		t.Errorf("expected charged amount 30.00 reported, got %.2f", result.Amount)
	}
	// The charge succeeded: the attempt must not land in the error state.
	if attempt.State() != AttemptSucceeded {
		t.Errorf("expected succeeded state, got %s", attempt.State())
	}
}

func TestAttemptTryAgain(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1"}
	svc, _ := newTestPaymentService(repo, &stubGateway{})

	attempt := svc.NewAttempt("user-1", "ride-1")
	if err := attempt.Setup(context.Background(), validIntentRequest()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	secret := attempt.ClientSecret()

	if attempt.TryAgain() {
		t.Error("TryAgain from idle should report false")
	}

	attempt.fail("declined")
	if !attempt.TryAgain() {
		t.Fatal("TryAgain from error should report true")
	}
	if attempt.State() != AttemptIdle {
		t.Errorf("expected idle after TryAgain, got %s", attempt.State())
	}
	if attempt.ErrorMessage() != "" {
		t.Errorf("expected cleared error message, got %q", attempt.ErrorMessage())
	}
	// The existing client secret is reused; no new intent is requested.
	if attempt.ClientSecret() != secret {
		t.Errorf("expected client secret retained, got %q", attempt.ClientSecret())
	}
}

func TestAttemptCancel_NeverMutatesRide(t *testing.T) {
	t.Parallel()

	repo := newStubRideRepo()
	repo.rides["ride-1"] = &domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment}
	svc, _ := newTestPaymentService(repo, &stubGateway{})

	attempt := svc.NewAttempt("user-1", "ride-1")
	attempt.Bind("pi_stub", 2000)
	attempt.Cancel()

	if attempt.State() != AttemptCancelled {
		t.Errorf("expected cancelled state, got %s", attempt.State())
	}
	if repo.markPaidCalls != 0 {
		t.Errorf("expected no ride mutation, got %d MarkPaid calls", repo.markPaidCalls)
	}
	if repo.rides["ride-1"].Status != domain.RideStatusPendingPayment {
		t.Errorf("expected ride untouched, got status %s", repo.rides["ride-1"].Status)
	}
}
