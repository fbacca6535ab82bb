package tests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"shiporbit/internal/domain"
	"shiporbit/internal/processor"
	"shiporbit/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK CITY REPOSITORY
// ──────────────────────────────────────────────

// MockCityRepository is a mock implementation of CityRepository.
type MockCityRepository struct {
	mu     sync.RWMutex
	cities map[int64]*domain.City

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	GetError    error
}

// NewMockCityRepository creates a new mock city repository.
func NewMockCityRepository() *MockCityRepository {
	return &MockCityRepository{
		cities: make(map[int64]*domain.City),
	}
}

// AddCity adds a city to the mock repository.
func (m *MockCityRepository) AddCity(city *domain.City) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[city.ID] = city
}

func (m *MockCityRepository) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	city, ok := m.cities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *city
	return &copy, nil
}

func (m *MockCityRepository) Create(ctx context.Context, city *domain.City) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cities[city.ID]; ok {
		return repository.ErrDuplicate
	}
	copy := *city
	m.cities[city.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK ROUTE QUOTE REPOSITORY
// ──────────────────────────────────────────────

// MockRouteQuoteRepository is a mock implementation of RouteQuoteRepository.
type MockRouteQuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*domain.RouteQuote
	nextID int64

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	GetError    error
}

// NewMockRouteQuoteRepository creates a new mock route quote repository.
func NewMockRouteQuoteRepository() *MockRouteQuoteRepository {
	return &MockRouteQuoteRepository{
		quotes: make(map[string]*domain.RouteQuote),
	}
}

func routeKey(pickup, dropoff int64, equipment domain.Equipment) string {
	return fmt.Sprintf("%d:%d:%s", pickup, dropoff, equipment)
}

// AddQuote seeds a cached quote.
func (m *MockRouteQuoteRepository) AddQuote(quote *domain.RouteQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[routeKey(quote.PickupCityID, quote.DropoffCityID, quote.Equipment)] = quote
}

// QuoteCount returns the number of stored quotes.
func (m *MockRouteQuoteRepository) QuoteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.quotes)
}

func (m *MockRouteQuoteRepository) GetByRoute(ctx context.Context, pickupCityID, dropoffCityID int64, equipment domain.Equipment) (*domain.RouteQuote, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	quote, ok := m.quotes[routeKey(pickupCityID, dropoffCityID, equipment)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *quote
	return &copy, nil
}

func (m *MockRouteQuoteRepository) Create(ctx context.Context, quote *domain.RouteQuote) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := routeKey(quote.PickupCityID, quote.DropoffCityID, quote.Equipment)
	if _, ok := m.quotes[key]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	quote.ID = m.nextID
	quote.CreatedAt = time.Now()
	copy := *quote
	m.quotes[key] = &copy
	return nil
}

func (m *MockRouteQuoteRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RouteQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RouteQuote, 0, len(m.quotes))
	for _, q := range m.quotes {
		copy := *q
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK SHIPMENT REPOSITORY
// ──────────────────────────────────────────────

// MockShipmentRepository is a mock implementation of ShipmentRepository.
type MockShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]*domain.Shipment

	// Counters for verification
	CreateCallCount         int32
	UpdateCallCount         int32
	MarkInProgressCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockShipmentRepository creates a new mock shipment repository.
func NewMockShipmentRepository() *MockShipmentRepository {
	return &MockShipmentRepository{
		shipments: make(map[string]*domain.Shipment),
	}
}

// AddShipment adds a shipment to the mock repository.
func (m *MockShipmentRepository) AddShipment(shipment *domain.Shipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shipments[shipment.ID] = shipment
}

// GetShipment returns a shipment for test assertions.
func (m *MockShipmentRepository) GetShipment(id string) *domain.Shipment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shipments[id]
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shipment.CreatedAt = time.Now()
	shipment.UpdatedAt = shipment.CreatedAt
	copy := *shipment
	m.shipments[shipment.ID] = &copy
	return nil
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, id string) (*domain.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shipment, ok := m.shipments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *shipment
	return &copy, nil
}

func (m *MockShipmentRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shipment, ok := m.shipments[id]
	if !ok || shipment.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copy := *shipment
	return &copy, nil
}

func (m *MockShipmentRepository) ListByUser(ctx context.Context, userID string, status domain.ShipmentStatus) ([]*domain.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Shipment, 0)
	for _, s := range m.shipments {
		if s.UserID != userID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shipments[shipment.ID]; !ok {
		return repository.ErrNotFound
	}
	shipment.UpdatedAt = time.Now()
	copy := *shipment
	m.shipments[shipment.ID] = &copy
	return nil
}

func (m *MockShipmentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shipments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.shipments, id)
	return nil
}

func (m *MockShipmentRepository) MarkInProgress(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.MarkInProgressCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	shipment, ok := m.shipments[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if shipment.Status == domain.ShipmentStatusInProgress {
		return false, nil
	}
	shipment.Status = domain.ShipmentStatusInProgress
	shipment.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockShipmentRepository) CountByStatus(ctx context.Context, userID string) (map[domain.ShipmentStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.ShipmentStatus]int)
	for _, s := range m.shipments {
		if s.UserID == userID {
			counts[s.Status]++
		}
	}
	return counts, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION REPOSITORY
// ──────────────────────────────────────────────

// MockLocationRepository is a mock implementation of LocationRepository.
type MockLocationRepository struct {
	mu        sync.RWMutex
	locations map[string]*domain.Location
	nextID    int64

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockLocationRepository creates a new mock location repository.
func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{
		locations: make(map[string]*domain.Location),
	}
}

func locationKey(shipmentID string, locationType domain.LocationType) string {
	return shipmentID + ":" + string(locationType)
}

func (m *MockLocationRepository) Create(ctx context.Context, location *domain.Location) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	location.ID = m.nextID
	copy := *location
	m.locations[locationKey(location.ShipmentID, location.LocationType)] = &copy
	return nil
}

func (m *MockLocationRepository) GetByShipment(ctx context.Context, shipmentID string) ([]*domain.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Location, 0, 2)
	for _, locationType := range []domain.LocationType{domain.LocationTypePickup, domain.LocationTypeDropoff} {
		if loc, ok := m.locations[locationKey(shipmentID, locationType)]; ok {
			copy := *loc
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := locationKey(location.ShipmentID, location.LocationType)
	existing, ok := m.locations[key]
	if !ok {
		return repository.ErrNotFound
	}
	location.ID = existing.ID
	if location.CityID == 0 {
		location.CityID = existing.CityID
	}
	if location.Date.IsZero() {
		location.Date = existing.Date
	}
	copy := *location
	m.locations[key] = &copy
	return nil
}

// GetLocation returns a location for test assertions.
func (m *MockLocationRepository) GetLocation(shipmentID string, locationType domain.LocationType) *domain.Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locations[locationKey(shipmentID, locationType)]
}

// ──────────────────────────────────────────────
// MOCK STATUS HISTORY REPOSITORY
// ──────────────────────────────────────────────

// MockStatusHistoryRepository is a mock implementation of StatusHistoryRepository.
type MockStatusHistoryRepository struct {
	mu      sync.RWMutex
	changes []*domain.StatusChange
	nextID  int64

	// Error injection
	CreateError error
}

// NewMockStatusHistoryRepository creates a new mock status history repository.
func NewMockStatusHistoryRepository() *MockStatusHistoryRepository {
	return &MockStatusHistoryRepository{}
}

func (m *MockStatusHistoryRepository) Create(ctx context.Context, change *domain.StatusChange) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	change.ID = m.nextID
	change.CreatedAt = time.Now()
	copy := *change
	m.changes = append(m.changes, &copy)
	return nil
}

func (m *MockStatusHistoryRepository) ListByShipment(ctx context.Context, shipmentID string) ([]*domain.StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.StatusChange, 0)
	for i := len(m.changes) - 1; i >= 0; i-- {
		if m.changes[i].ShipmentID == shipmentID {
			copy := *m.changes[i]
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ChangeCount returns the number of recorded transitions.
func (m *MockStatusHistoryRepository) ChangeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.changes)
}

// ──────────────────────────────────────────────
// MOCK INVOICE REPOSITORY
// ──────────────────────────────────────────────

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
// Shipments, when set, is consulted for user-scoped lookups.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	Shipments *MockShipmentRepository

	// Counters for verification
	CreateCallCount   int32
	DeleteCallCount   int32
	MarkPaidCallCount int32

	// Error injection
	CreateError error
	DeleteError error
}

// NewMockInvoiceRepository creates a new mock invoice repository.
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

// AddInvoice adds an invoice to the mock repository.
func (m *MockInvoiceRepository) AddInvoice(invoice *domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice.TotalAmount = invoice.Amount.Add(invoice.DriverAssistFee)
	m.invoices[invoice.ID] = invoice
}

// GetInvoice returns an invoice for test assertions.
func (m *MockInvoiceRepository) GetInvoice(id string) *domain.Invoice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.invoices[id]
}

// InvoiceCount returns the number of stored invoices.
func (m *MockInvoiceRepository) InvoiceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.invoices)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.ShipmentID == invoice.ShipmentID {
			return repository.ErrDuplicate
		}
	}
	invoice.TotalAmount = invoice.Amount.Add(invoice.DriverAssistFee)
	invoice.CreatedAt = time.Now()
	copy := *invoice
	m.invoices[invoice.ID] = &copy
	return nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *invoice
	return &copy, nil
}

func (m *MockInvoiceRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Invoice, error) {
	invoice, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Shipments != nil {
		if _, err := m.Shipments.GetByIDForUser(ctx, invoice.ShipmentID, userID); err != nil {
			return nil, repository.ErrNotFound
		}
	}
	return invoice, nil
}

func (m *MockInvoiceRepository) GetByShipmentID(ctx context.Context, shipmentID string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invoices {
		if inv.ShipmentID == shipmentID {
			copy := *inv
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockInvoiceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Invoice, 0)
	for _, inv := range m.invoices {
		if m.Shipments != nil {
			if _, err := m.Shipments.GetByIDForUser(ctx, inv.ShipmentID, userID); err != nil {
				continue
			}
		}
		copy := *inv
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockInvoiceRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	atomic.AddInt32(&m.MarkPaidCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return repository.ErrNotFound
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil
	}
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = paidAt
	return nil
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
// Invoices, when set, is consulted for user-scoped lookups.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	Invoices *MockInvoiceRepository

	// Counters for verification
	CreateCallCount        int32
	UpdateStatusCallCount  int32
	MarkSucceededCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ProcessorIntentID == intentID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByIntentIDForUser(ctx context.Context, intentID, userID string) (*domain.Payment, error) {
	payment, err := m.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if m.Invoices != nil {
		if _, err := m.Invoices.GetByIDForUser(ctx, payment.InvoiceID, userID); err != nil {
			return nil, repository.ErrNotFound
		}
	}
	return payment, nil
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, failureReason string) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payment.Status.Terminal() {
		return nil
	}
	payment.Status = status
	payment.FailureReason = failureReason
	payment.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) MarkSucceeded(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.MarkSucceededCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if payment.Status == domain.PaymentStatusFailed || payment.Status == domain.PaymentStatusCancelled {
		return false, nil
	}
	payment.Status = domain.PaymentStatusSucceeded
	payment.UpdatedAt = time.Now()
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
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

func (m *MockUserRepository) UpdateProcessorCustomerID(ctx context.Context, id, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.ProcessorCustomerID = customerID
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROCESSOR CLIENT
// ──────────────────────────────────────────────

// MockProcessor is a scriptable implementation of processor.Client.
type MockProcessor struct {
	mu sync.Mutex

	// Scripted behavior
	IntentStatus   string // status returned by CreateIntent and ConfirmIntent
	GetStatus      string // status returned by GetIntent; falls back to IntentStatus
	FailureMessage string

	CreateCustomerError error
	CreateIntentError   error
	ConfirmError        error
	GetError            error

	VerifyEvent *processor.Event
	VerifyError error

	// Counters for verification
	CreateCustomerCallCount int32
	CreateIntentCallCount   int32
	ConfirmCallCount        int32
	GetCallCount            int32

	nextIntent int
}

// NewMockProcessor creates a mock processor that succeeds immediately.
func NewMockProcessor() *MockProcessor {
	return &MockProcessor{IntentStatus: processor.IntentStatusSucceeded}
}

func (m *MockProcessor) CreateCustomer(ctx context.Context, params processor.CustomerParams) (string, error) {
	atomic.AddInt32(&m.CreateCustomerCallCount, 1)
	if m.CreateCustomerError != nil {
		return "", m.CreateCustomerError
	}
	return "cus_mock", nil
}

func (m *MockProcessor) CreateIntent(ctx context.Context, params processor.CreateIntentParams) (*processor.Intent, error) {
	atomic.AddInt32(&m.CreateIntentCallCount, 1)
	if m.CreateIntentError != nil {
		return nil, m.CreateIntentError
	}
	m.mu.Lock()
	m.nextIntent++
	id := fmt.Sprintf("pi_mock_%d", m.nextIntent)
	m.mu.Unlock()
	return &processor.Intent{
		ID:             id,
		ClientSecret:   id + "_secret",
		Status:         m.IntentStatus,
		FailureMessage: m.FailureMessage,
		RequiresAction: m.IntentStatus == processor.IntentStatusRequiresAction,
	}, nil
}

func (m *MockProcessor) ConfirmIntent(ctx context.Context, intentID string) (*processor.Intent, error) {
	atomic.AddInt32(&m.ConfirmCallCount, 1)
	if m.ConfirmError != nil {
		return nil, m.ConfirmError
	}
	return &processor.Intent{
		ID:             intentID,
		Status:         m.IntentStatus,
		FailureMessage: m.FailureMessage,
	}, nil
}

func (m *MockProcessor) GetIntent(ctx context.Context, intentID string) (*processor.Intent, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	status := m.GetStatus
	if status == "" {
		status = m.IntentStatus
	}
	return &processor.Intent{
		ID:             intentID,
		Status:         status,
		FailureMessage: m.FailureMessage,
	}, nil
}

func (m *MockProcessor) VerifyWebhook(payload []byte, signature string) (*processor.Event, error) {
	if m.VerifyError != nil {
		return nil, m.VerifyError
	}
	return m.VerifyEvent, nil
}
