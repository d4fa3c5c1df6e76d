package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

// onRollback registers an undo step when tx is a *MockTransaction.
func onRollback(tx usecase.Transaction, undo func()) {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.OnRollback(undo)
	}
}

// MockAccountRepository is an in-memory AccountRepository. Reads return
// copies so callers never alias stored state, as with a real database.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByNumberFunc       func(ctx context.Context, number string) (*domain.Account, error)
	ListByOwnerFunc       func(ctx context.Context, userID string) ([]*domain.Account, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores accounts directly, bypassing Create.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		c := *a
		m.accounts[a.ID] = &c
	}
}

// Balance returns the stored balance of an account.
func (m *MockAccountRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrConflict)
	}
	c := *account
	m.accounts[account.ID] = &c
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.accounts, account.ID)
	})
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		c := *acc
		return &c, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.AccountNumber == number || acc.Card.Number == number {
			c := *acc
			return &c, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, userID)
	}
	var out []*domain.Account
	for _, acc := range m.sorted() {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	all := m.sorted()
	if offset >= len(all) {
		return []*domain.Account{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			c := *acc
			accounts = append(accounts, &c)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, expectedVersion, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != expectedVersion {
		return domain.ErrConflict
	}
	prev := *acc
	acc.Balance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		*m.accounts[id] = prev
	})
	return nil
}

func (m *MockAccountRepository) sorted() []*domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		c := *acc
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockTransactionRepository is an in-memory TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	FindFunc             func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.TransactionStatus, updatedAt time.Time) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		records: make(map[string]*domain.Transaction),
	}
}

// Seed stores records directly, bypassing Create.
func (m *MockTransactionRepository) Seed(records ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		c := *r
		m.records[r.ID] = &c
	}
}

// Len returns the number of stored records.
func (m *MockTransactionRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.records[t.ID] = &c
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.records, t.ID)
	})
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Find(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, filter)
	}
	m.mu.RLock()
	var out []*domain.Transaction
	for _, r := range m.records {
		if filter.Matches(r) {
			c := *r
			out = append(out, &c)
		}
	}
	m.mu.RUnlock()

	// newest first, as the SQL store orders
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*domain.Transaction{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.TransactionStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, from, to, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if r.Status != from {
		return domain.ErrInvalidState
	}
	prev := *r
	r.Status = to
	r.UpdatedAt = updatedAt
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		*m.records[id] = prev
	})
	return nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns the stored events in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = slices.DeleteFunc(m.events, func(e *domain.OutboxEvent) bool { return e == event })
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
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
	m.events = slices.DeleteFunc(m.events, func(e *domain.OutboxEvent) bool {
		return e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before)
	})
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu    sync.Mutex
	begun int

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitFunc, when set, is installed on every transaction handed out.
	CommitFunc func(ctx context.Context) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

// Begun returns how many transactions were started.
func (m *MockTransactionManager) Begun() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begun
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.begun++
	m.mu.Unlock()
	return &MockTransaction{CommitFunc: m.CommitFunc}, nil
}

// MockTransaction is a mock implementation of Transaction. Repositories
// register undo steps that run if the transaction ends without a commit.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu        sync.Mutex
	undo      []func()
	committed bool
}

// OnRollback registers an undo step.
func (m *MockTransaction) OnRollback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, fn)
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = true
	m.undo = nil
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	if m.committed {
		m.mu.Unlock()
		return nil
	}
	undo := m.undo
	m.undo = nil
	m.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	return nil
}

// MockRetrier retries operations that fail with domain.ErrConflict.
type MockRetrier struct {
	MaxRetries int

	mu       sync.Mutex
	attempts int
}

// Attempts returns how many times operations were run.
func (m *MockRetrier) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i <= m.MaxRetries; i++ {
		m.mu.Lock()
		m.attempts++
		m.mu.Unlock()

		err = operation()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
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

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
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
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockCache is an in-memory Cache. TTLs are ignored.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

var ErrCacheMiss = errors.New("cache miss")

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	m.hits++
	return slices.Clone(v), nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Hits returns how many Get calls found a value.
func (m *MockCache) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
