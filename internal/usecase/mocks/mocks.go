package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockVaultRepository is a mock implementation of VaultRepository.
type MockVaultRepository struct {
	mu    sync.Mutex
	State domain.VaultState

	LockForUpdateFunc    func(ctx context.Context, tx usecase.Transaction) (*domain.VaultState, error)
	GetFunc              func(ctx context.Context) (*domain.VaultState, error)
	UpdateTotalValueFunc func(ctx context.Context, tx usecase.Transaction, totalValueUSD decimal.Decimal, updatedAt time.Time) error
	SetPausedFunc        func(ctx context.Context, tx usecase.Transaction, paused bool, updatedAt time.Time) error
}

func NewMockVaultRepository() *MockVaultRepository {
	return &MockVaultRepository{State: domain.VaultState{TotalValueUSD: decimal.Zero}}
}

func (m *MockVaultRepository) LockForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.VaultState, error) {
	if m.LockForUpdateFunc != nil {
		return m.LockForUpdateFunc(ctx, tx)
	}
	return m.Get(ctx)
}

func (m *MockVaultRepository) Get(ctx context.Context) (*domain.VaultState, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.State
	return &state, nil
}

func (m *MockVaultRepository) UpdateTotalValue(ctx context.Context, tx usecase.Transaction, totalValueUSD decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateTotalValueFunc != nil {
		return m.UpdateTotalValueFunc(ctx, tx, totalValueUSD, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.State.TotalValueUSD = totalValueUSD
	m.State.UpdatedAt = updatedAt
	return nil
}

func (m *MockVaultRepository) SetPaused(ctx context.Context, tx usecase.Transaction, paused bool, updatedAt time.Time) error {
	if m.SetPausedFunc != nil {
		return m.SetPausedFunc(ctx, tx, paused, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.State.Paused = paused
	m.State.UpdatedAt = updatedAt
	return nil
}

// MockRoleRepository is a mock implementation of RoleRepository.
type MockRoleRepository struct {
	mu    sync.RWMutex
	roles map[string]map[domain.Role]*domain.RoleAssignment

	GrantFunc   func(ctx context.Context, tx usecase.Transaction, assignment *domain.RoleAssignment) (bool, error)
	RevokeFunc  func(ctx context.Context, tx usecase.Transaction, principal string, role domain.Role) (bool, error)
	HasRoleFunc func(ctx context.Context, principal string, role domain.Role) (bool, error)
}

func NewMockRoleRepository() *MockRoleRepository {
	return &MockRoleRepository{
		roles: make(map[string]map[domain.Role]*domain.RoleAssignment),
	}
}

func (m *MockRoleRepository) Grant(ctx context.Context, tx usecase.Transaction, assignment *domain.RoleAssignment) (bool, error) {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, tx, assignment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.roles[assignment.Principal]
	if held == nil {
		held = make(map[domain.Role]*domain.RoleAssignment)
		m.roles[assignment.Principal] = held
	}
	if _, ok := held[assignment.Role]; ok {
		return false, nil
	}
	held[assignment.Role] = assignment
	return true, nil
}

func (m *MockRoleRepository) Revoke(ctx context.Context, tx usecase.Transaction, principal string, role domain.Role) (bool, error) {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tx, principal, role)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[principal][role]; !ok {
		return false, nil
	}
	delete(m.roles[principal], role)
	return true, nil
}

func (m *MockRoleRepository) HasRole(ctx context.Context, principal string, role domain.Role) (bool, error) {
	if m.HasRoleFunc != nil {
		return m.HasRoleFunc(ctx, principal, role)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.roles[principal][role]
	return ok, nil
}

func (m *MockRoleRepository) ListByPrincipal(ctx context.Context, principal string) ([]*domain.RoleAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RoleAssignment
	for _, role := range domain.AllRoles() {
		if a, ok := m.roles[principal][role]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// EventTypes returns the types of all recorded events in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// MockMetricsRecorder records observations for assertions.
type MockMetricsRecorder struct {
	mu            sync.Mutex
	Deposits      int
	Withdrawals   int
	Rejections    map[string]int
	PriceFailures map[string]int
	TotalValue    decimal.Decimal
	AssetTotals   map[string]decimal.Decimal
	Discrepancies int
}

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{
		Rejections:    make(map[string]int),
		PriceFailures: make(map[string]int),
		AssetTotals:   make(map[string]decimal.Decimal),
	}
}

func (m *MockMetricsRecorder) ObserveDeposit(assetID string, canonicalAmount, valueUSD decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deposits++
}

func (m *MockMetricsRecorder) ObserveWithdrawal(assetID string, canonicalAmount, valueUSD decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Withdrawals++
}

func (m *MockMetricsRecorder) ObserveRejection(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejections[domain.ErrorCode(err)]++
}

func (m *MockMetricsRecorder) ObservePriceFailure(assetID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceFailures[domain.ErrorCode(err)]++
}

func (m *MockMetricsRecorder) SetTotalValueLocked(valueUSD decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalValue = valueUSD
}

func (m *MockMetricsRecorder) SetAssetTotal(assetID string, total decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssetTotals[assetID] = total
}

func (m *MockMetricsRecorder) SetReconciliationDiscrepancies(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Discrepancies = count
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
