package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// ErrTransactionClosed is returned when a MockTransaction is reused.
var ErrTransactionClosed = errors.New("mock transaction already closed")

// MockTransaction buffers repository writes until Commit, so a rolled back
// transaction leaves the in-memory repositories untouched.
type MockTransaction struct {
	mu         sync.Mutex
	ops        []func()
	CommitErr  error
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) stage(op func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = append(t.ops, op)
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Committed || t.RolledBack {
		return ErrTransactionClosed
	}
	if t.CommitErr != nil {
		return t.CommitErr
	}
	for _, op := range t.ops {
		op()
	}
	t.ops = nil
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Committed {
		return nil
	}
	t.ops = nil
	t.RolledBack = true
	return nil
}

// stage applies op on commit of tx, or immediately when tx is not a
// MockTransaction.
func stage(tx usecase.Transaction, op func()) {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.stage(op)
		return
	}
	op()
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu          sync.RWMutex
	accounts    map[string]*domain.Account
	LockedOrder [][]string

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalancesFunc    func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
}

func NewMockAccountRepository(accounts ...*domain.Account) *MockAccountRepository {
	m := &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
	for _, acc := range accounts {
		m.accounts[acc.ID] = acc.Clone()
	}
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account.Clone()
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Clone(), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockedOrder = append(m.LockedOrder, append([]string(nil), ids...))
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc.Clone())
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateBalancesFunc != nil {
		if err := m.UpdateBalancesFunc(ctx, tx, account); err != nil {
			return err
		}
	}
	updated := account.Clone()
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		updated.Version++
		m.accounts[updated.ID] = updated
	})
	return nil
}

func (m *MockAccountRepository) ListStaffByMerchant(ctx context.Context, merchantID string) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var staff []*domain.Account
	for _, acc := range m.accounts {
		if acc.Kind == domain.AccountKindStaff && acc.MerchantID == merchantID {
			staff = append(staff, acc.Clone())
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	return staff, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Get returns the committed state of an account or nil.
func (m *MockAccountRepository) Get(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Clone()
	}
	return nil
}

// MockLedgerTransactionRepository is a mock implementation of LedgerTransactionRepository.
type MockLedgerTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.LedgerTransaction
	// StatusHistory records every committed status per transaction.
	StatusHistory map[string][]domain.TransactionStatus

	GetByIDFunc func(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	UpdateFunc  func(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error
}

func NewMockLedgerTransactionRepository(txns ...*domain.LedgerTransaction) *MockLedgerTransactionRepository {
	m := &MockLedgerTransactionRepository{
		txns:          make(map[string]*domain.LedgerTransaction),
		StatusHistory: make(map[string][]domain.TransactionStatus),
	}
	for _, txn := range txns {
		m.txns[txn.ID] = txn.Clone()
	}
	return m
}

func (m *MockLedgerTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	created := txn.Clone()
	stage(tx, func() { m.put(created) })
	return nil
}

func (m *MockLedgerTransactionRepository) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		return txn.Clone(), nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLedgerTransactionRepository) GetByUUID(ctx context.Context, uuid string) (*domain.LedgerTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.UUID == uuid {
			return txn.Clone(), nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLedgerTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		return txn.Clone(), nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLedgerTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, tx, txn); err != nil {
			return err
		}
	}
	updated := txn.Clone()
	stage(tx, func() { m.put(updated) })
	return nil
}

func (m *MockLedgerTransactionRepository) ListStuck(ctx context.Context, staleBefore, now time.Time, limit int) ([]*domain.LedgerTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stuck []*domain.LedgerTransaction
	for _, txn := range m.txns {
		switch txn.Status {
		case domain.StatusPending, domain.StatusRefundPending:
			if txn.ModifiedAt.Before(staleBefore) {
				stuck = append(stuck, txn.Clone())
			}
		case domain.StatusProcessing, domain.StatusRefunding:
			if txn.ProcessingDeadline == nil || txn.ProcessingDeadline.Before(now) {
				stuck = append(stuck, txn.Clone())
			}
		}
	}
	sort.Slice(stuck, func(i, j int) bool { return stuck[i].ID < stuck[j].ID })
	if len(stuck) > limit {
		stuck = stuck[:limit]
	}
	return stuck, nil
}

func (m *MockLedgerTransactionRepository) put(txn *domain.LedgerTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	m.StatusHistory[txn.ID] = append(m.StatusHistory[txn.ID], txn.Status)
}

// Get returns the committed state of a transaction or nil.
func (m *MockLedgerTransactionRepository) Get(id string) *domain.LedgerTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		return txn.Clone()
	}
	return nil
}

// MockFundingInstrumentRepository is a mock implementation of FundingInstrumentRepository.
type MockFundingInstrumentRepository struct {
	mu          sync.RWMutex
	instruments map[string]*domain.FundingInstrument
}

func NewMockFundingInstrumentRepository(instruments ...*domain.FundingInstrument) *MockFundingInstrumentRepository {
	m := &MockFundingInstrumentRepository{instruments: make(map[string]*domain.FundingInstrument)}
	for _, fi := range instruments {
		cp := *fi
		m.instruments[fi.ID] = &cp
	}
	return m
}

func (m *MockFundingInstrumentRepository) GetByID(ctx context.Context, id string) (*domain.FundingInstrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if fi, ok := m.instruments[id]; ok {
		cp := *fi
		return &cp, nil
	}
	return nil, domain.ErrFundingInstrumentNotFound
}

// MockReceiptRepository is a mock implementation of ReceiptRepository.
type MockReceiptRepository struct {
	mu       sync.RWMutex
	receipts []*domain.AuditReceipt

	CreateFunc func(ctx context.Context, tx usecase.Transaction, receipt *domain.AuditReceipt) error
}

func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{}
}

func (m *MockReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.AuditReceipt) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, tx, receipt); err != nil {
			return err
		}
	}
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, r := range m.receipts {
			if r.AccountID == receipt.AccountID && r.TransactionID == receipt.TransactionID && r.Status == receipt.Status {
				return
			}
		}
		m.receipts = append(m.receipts, receipt)
	})
	return nil
}

func (m *MockReceiptRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditReceipt
	for i := len(m.receipts) - 1; i >= 0; i-- {
		if m.receipts[i].AccountID == accountID {
			out = append(out, m.receipts[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every committed receipt.
func (m *MockReceiptRepository) All() []*domain.AuditReceipt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditReceipt(nil), m.receipts...)
}

// ForTransaction returns the committed receipts of one transaction.
func (m *MockReceiptRepository) ForTransaction(txnID string) []*domain.AuditReceipt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditReceipt
	for _, r := range m.receipts {
		if r.TransactionID == txnID {
			out = append(out, r)
		}
	}
	return out
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) CreateIfAbsent(ctx context.Context, event *domain.OutboxEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == event.ID {
			return false, nil
		}
	}
	m.events = append(m.events, event)
	return true, nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
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
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// Events returns every stored event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
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

// MockRetrier runs the operation once, or RetryFunc when set.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockLocker is an in-process Locker. Keys in Held are treated as owned by
// another worker.
type MockLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	Acquired []string
	Options  map[string]usecase.LockOptions

	AcquireFunc func(ctx context.Context, key string, opts usecase.LockOptions) (usecase.Lease, error)
}

func NewMockLocker() *MockLocker {
	return &MockLocker{
		held:    make(map[string]bool),
		Options: make(map[string]usecase.LockOptions),
	}
}

// Hold marks key as taken by someone else.
func (m *MockLocker) Hold(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[key] = true
}

// Free releases a key taken with Hold.
func (m *MockLocker) Free(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
}

// IsHeld reports whether key is currently locked.
func (m *MockLocker) IsHeld(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[key]
}

func (m *MockLocker) Acquire(ctx context.Context, key string, opts usecase.LockOptions) (usecase.Lease, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key, opts)
	}
	for {
		m.mu.Lock()
		if !m.held[key] {
			m.held[key] = true
			m.Acquired = append(m.Acquired, key)
			m.Options[key] = opts
			m.mu.Unlock()
			return &mockLease{locker: m, key: key}, nil
		}
		m.mu.Unlock()

		if !opts.Unbounded {
			return nil, fmt.Errorf("%w: %s", usecase.ErrLockContention, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

type mockLease struct {
	locker *MockLocker
	key    string
}

func (l *mockLease) Release(ctx context.Context) error {
	l.locker.Free(l.key)
	return nil
}

// RecordingQueue is an in-memory TaskQueue.
type RecordingQueue struct {
	mu       sync.Mutex
	Enqueued []string

	EnqueueFunc func(ctx context.Context, txnID string) error
}

func NewRecordingQueue() *RecordingQueue {
	return &RecordingQueue{}
}

func (q *RecordingQueue) Enqueue(ctx context.Context, txnID string) error {
	if q.EnqueueFunc != nil {
		if err := q.EnqueueFunc(ctx, txnID); err != nil {
			return err
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Enqueued = append(q.Enqueued, txnID)
	return nil
}

// Items returns a copy of the enqueued ids.
func (q *RecordingQueue) Items() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.Enqueued...)
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
		m.data[key] = []byte(usecase.IdempotencyPending)
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, claimed := m.data[key]; claimed {
		m.data[key] = response
	}
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockStatusCache is an in-memory StatusCache.
type MockStatusCache struct {
	mu       sync.Mutex
	statuses map[string]domain.TransactionStatus
	Reads    int
	GetErr   error
}

func NewMockStatusCache() *MockStatusCache {
	return &MockStatusCache{statuses: map[string]domain.TransactionStatus{}}
}

func (m *MockStatusCache) GetStatus(ctx context.Context, uuid string) (domain.TransactionStatus, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	status, ok := m.statuses[uuid]
	return status, ok, nil
}

func (m *MockStatusCache) SetStatus(ctx context.Context, uuid string, status domain.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[uuid] = status
	return nil
}

// Cached reports the cached status of uuid.
func (m *MockStatusCache) Cached(uuid string) (domain.TransactionStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[uuid]
	return status, ok
}
