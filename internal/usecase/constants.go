package usecase

import (
	"errors"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultProcessingDeadline is how long a worker owns an in-flight transaction.
	DefaultProcessingDeadline = 10 * time.Minute

	// DefaultTxnLockAttempts keeps a second delivery of the same item from waiting.
	DefaultTxnLockAttempts = 1

	// DefaultAccountLockAttempts is the bounded budget for account locks.
	DefaultAccountLockAttempts = 2

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a claimed key until its request finishes.
	IdempotencyPending = "processing"
)

// Processing outcomes reported to metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeRefunded  = "refunded"
	OutcomeCancelled = "cancelled"
	OutcomeSkipped   = "skipped"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
)

var (
	// ErrLockContention is returned when a lock could not be taken within its budget.
	ErrLockContention = errors.New("lock contention")
	// ErrInFlight marks a transaction left in Processing or Refunding with its
	// lease released; the work item must be redelivered.
	ErrInFlight = errors.New("transaction left in flight")
)

// TransactionLockKey names the lock guarding a ledger transaction.
func TransactionLockKey(id string) string {
	return "lock:txn:" + id
}

// AccountLockKey names the lock guarding an account.
func AccountLockKey(id string) string {
	return "lock:account:" + id
}

// IsRetryable reports whether a failed work item should be redelivered.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInFlight) {
		return true
	}
	if errors.Is(err, domain.ErrInvalidCancel) || domain.IsCancellation(err) {
		return false
	}
	return true
}
