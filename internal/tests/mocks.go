package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/gateway"
	"corpcab/internal/realtime"
	"corpcab/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount           int32
	UpdateStatusCallCount     int32
	SetPaymentIntentCallCount int32
	MarkPaidCallCount         int32

	// Error injection
	CreateError           error
	GetByIDError          error
	UpdateStatusError     error
	SetPaymentIntentError error
	MarkPaidError         error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) ListAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, to domain.RideStatus, allowedFrom ...domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, from := range allowedFrom {
		if ride.Status == from {
			ride.Status = to
			return nil
		}
	}
	// Same contract as the conditional UPDATE: no row matched the guard.
	return repository.ErrNotFound
}

func (m *MockRideRepository) SetPaymentIntent(ctx context.Context, id, intentID string, amount float64, paymentDate time.Time) error {
	atomic.AddInt32(&m.SetPaymentIntentCallCount, 1)
	if m.SetPaymentIntentError != nil {
		return m.SetPaymentIntentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.PaymentIntentID = intentID
	ride.Amount = amount
	ride.PaymentDate = paymentDate
	ride.Status = domain.RideStatusPendingPayment
	return nil
}

func (m *MockRideRepository) MarkPaid(ctx context.Context, id string, amount float64, paymentDate time.Time) error {
	atomic.AddInt32(&m.MarkPaidCallCount, 1)
	if m.MarkPaidError != nil {
		return m.MarkPaidError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = domain.RideStatusPaid
	ride.Amount = amount
	ride.Charged = true
	ride.PaymentDate = paymentDate
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID && len(result) < limit {
			copy := *n
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// All returns every stored notification (for test assertions).
func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK SERVICE AREA REPOSITORY
// ──────────────────────────────────────────────

// MockServiceAreaRepository is a mock implementation of ServiceAreaRepository.
type MockServiceAreaRepository struct {
	mu    sync.RWMutex
	areas map[string]*domain.ServiceArea

	// Error injection
	CreateError error
}

// NewMockServiceAreaRepository creates a new mock service area repository.
func NewMockServiceAreaRepository() *MockServiceAreaRepository {
	return &MockServiceAreaRepository{
		areas: make(map[string]*domain.ServiceArea),
	}
}

// AddArea adds an area to the mock repository.
func (m *MockServiceAreaRepository) AddArea(area *domain.ServiceArea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas[area.ID] = area
}

func (m *MockServiceAreaRepository) Create(ctx context.Context, area *domain.ServiceArea) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *area
	m.areas[area.ID] = &copy
	return nil
}

func (m *MockServiceAreaRepository) List(ctx context.Context) ([]*domain.ServiceArea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ServiceArea, 0, len(m.areas))
	for _, a := range m.areas {
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockServiceAreaRepository) Update(ctx context.Context, area *domain.ServiceArea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.areas[area.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = area.Name
	existing.City = area.City
	existing.Active = area.Active
	return nil
}

func (m *MockServiceAreaRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.areas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.areas, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CONTACT REPOSITORY
// ──────────────────────────────────────────────

// MockContactRepository is a mock implementation of ContactRepository.
type MockContactRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.ContactMessage

	// Error injection
	CreateError error
}

// NewMockContactRepository creates a new mock contact repository.
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{
		messages: make(map[string]*domain.ContactMessage),
	}
}

func (m *MockContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *msg
	m.messages[msg.ID] = &copy
	return nil
}

func (m *MockContactRepository) List(ctx context.Context) ([]*domain.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ContactMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		copy := *msg
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockContactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.Status = status
	return nil
}

// GetMessage returns a message by ID (for test assertions).
func (m *MockContactRepository) GetMessage(id string) *domain.ContactMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.messages[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock payment gateway with scriptable per-call results.
type MockGateway struct {
	mu sync.Mutex

	// CreateIntentResults is consumed one entry per call. When exhausted the
	// last entry repeats.
	CreateIntentResults []CreateIntentResult

	// ConfirmResult and ConfirmError control ConfirmIntent.
	ConfirmResult *gateway.ConfirmResult
	ConfirmError  error

	// Counters
	CreateIntentCallCount int32
	ConfirmCallCount      int32

	// Captured arguments
	LastCreateRequest gateway.CreateIntentRequest
	LastIntentID      string
	LastMethodID      string
}

// CreateIntentResult is one scripted CreateIntent outcome.
type CreateIntentResult struct {
	Intent *gateway.Intent
	Err    error
}

// NewMockGateway creates a mock gateway that succeeds by default.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		CreateIntentResults: []CreateIntentResult{
			{Intent: &gateway.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: gateway.IntentRequiresPaymentMethod}},
		},
		ConfirmResult: &gateway.ConfirmResult{Status: gateway.IntentSucceeded},
	}
}

func (m *MockGateway) CreateIntent(ctx context.Context, req gateway.CreateIntentRequest) (*gateway.Intent, error) {
	call := atomic.AddInt32(&m.CreateIntentCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCreateRequest = req

	idx := int(call) - 1
	if idx >= len(m.CreateIntentResults) {
		idx = len(m.CreateIntentResults) - 1
	}
	result := m.CreateIntentResults[idx]
	if result.Err != nil {
		return nil, result.Err
	}

	intent := *result.Intent
	intent.AmountMinor = req.AmountMinor
	return &intent, nil
}

func (m *MockGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*gateway.ConfirmResult, error) {
	atomic.AddInt32(&m.ConfirmCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastIntentID = intentID
	m.LastMethodID = paymentMethodID

	if m.ConfirmError != nil {
		return nil, m.ConfirmError
	}
	result := *m.ConfirmResult
	return &result, nil
}

// ──────────────────────────────────────────────
// MOCK BROKER
// ──────────────────────────────────────────────

// MockBroker is an in-process implementation of the realtime broker: published
// events are recorded and fanned out to matching subscribers.
type MockBroker struct {
	mu          sync.Mutex
	published   []realtime.Event
	subscribers []*mockSubscriber

	// Error injection
	PublishError   error
	SubscribeError error
}

type mockSubscriber struct {
	table  string
	userID string
	ch     chan realtime.Event
	closed bool
}

// NewMockBroker creates a new mock broker.
func NewMockBroker() *MockBroker {
	return &MockBroker{}
}

func (m *MockBroker) Publish(ctx context.Context, event realtime.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, event)
	for _, sub := range m.subscribers {
		if sub.closed || sub.table != event.Table || sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockBroker) Subscribe(ctx context.Context, table, userID string) (*realtime.Subscription, error) {
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &mockSubscriber{
		table:  table,
		userID: userID,
		ch:     make(chan realtime.Event, 64),
	}
	m.subscribers = append(m.subscribers, sub)

	return realtime.NewSubscription(sub.ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}), nil
}

// Published returns the recorded events (for test assertions).
func (m *MockBroker) Published() []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]realtime.Event, len(m.published))
	copy(result, m.published)
	return result
}

// PublishedFor returns recorded events for one table.
func (m *MockBroker) PublishedFor(table string) []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]realtime.Event, 0)
	for _, e := range m.published {
		if e.Table == table {
			result = append(result, e)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the payment lock store.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:payment:" + rideID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:payment:"+rideID)
	return nil
}

// IsLocked checks if a ride is locked (for test assertions).
func (m *MockLockStore) IsLocked(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:payment:"+rideID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

// MockSessionStore is a mock implementation of the session revocation list.
type MockSessionStore struct {
	mu      sync.Mutex
	revoked map[string]bool

	// Error injection
	RevokeError    error
	IsRevokedError error
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		revoked: make(map[string]bool),
	}
}

func (m *MockSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *MockSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

// CountRevoked returns the number of revoked tokens.
func (m *MockSessionStore) CountRevoked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revoked)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of the ride cache.
type MockCacheStore struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		rides: make(map[string]*domain.Ride),
	}
}

func (m *MockCacheStore) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return nil, nil
	}
	copy := *ride
	return &copy, nil
}

func (m *MockCacheStore) SetRide(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rides, rideID)
	return nil
}

// Has checks if a ride is cached (for test assertions).
func (m *MockCacheStore) Has(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rides[rideID]
	return ok
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBDown   = errors.New("mock: database unavailable")
	ErrMockGateway  = errors.New("mock: gateway unreachable")
	ErrMockRedisHit = errors.New("mock: redis error")
)
