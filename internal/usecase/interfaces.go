package usecase

import (
	"context"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks rows in the order given; callers pass sorted ids.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalances(ctx context.Context, tx Transaction, account *domain.Account) error
	ListStaffByMerchant(ctx context.Context, merchantID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// LedgerTransactionRepository defines data access for ledger transactions.
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.LedgerTransaction) error
	GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	GetByUUID(ctx context.Context, uuid string) (*domain.LedgerTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerTransaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.LedgerTransaction) error
	// ListStuck returns queued transactions last touched before staleBefore and
	// in-flight transactions whose lease ended before now.
	ListStuck(ctx context.Context, staleBefore, now time.Time, limit int) ([]*domain.LedgerTransaction, error)
}

// FundingInstrumentRepository defines data access for funding instruments.
type FundingInstrumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.FundingInstrument, error)
}

// ReceiptRepository defines data access for audit receipts.
type ReceiptRepository interface {
	// Create is a no-op when a receipt for the same account, transaction and
	// status already exists.
	Create(ctx context.Context, tx Transaction, receipt *domain.AuditReceipt) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error)
}

// LedgerRepository defines data access for ledger-wide totals.
type LedgerRepository interface {
	// Totals returns, for currency, the sum of all balances plus fee accruals
	// and the net amount deposited through settled deposits.
	Totals(ctx context.Context, currency domain.Currency) (held, funded int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	// CreateIfAbsent inserts the event unless one with the same id exists.
	CreateIfAbsent(ctx context.Context, event *domain.OutboxEvent) (bool, error)
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim whose request failed so the client can retry.
	Release(ctx context.Context, key string) error
}

// StatusCache remembers transaction statuses that can no longer change,
// keyed by correlation UUID.
type StatusCache interface {
	GetStatus(ctx context.Context, uuid string) (domain.TransactionStatus, bool, error)
	SetStatus(ctx context.Context, uuid string, status domain.TransactionStatus) error
}

// LockOptions bounds how hard Acquire tries.
type LockOptions struct {
	// MaxAttempts is the number of acquisition attempts; values below 1 mean 1.
	MaxAttempts int
	// Unbounded retries until the context is done.
	Unbounded bool
}

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker provides named, expiring, cross-process mutual exclusion.
type Locker interface {
	// Acquire returns ErrLockContention when the budget is exhausted.
	Acquire(ctx context.Context, key string, opts LockOptions) (Lease, error)
}
