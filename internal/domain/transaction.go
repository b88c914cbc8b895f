package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what a ledger transaction moves money for.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypePurchase TransactionType = "purchase"
)

// Validate rejects unknown transaction types.
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransfer, TransactionTypePurchase:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransferType, string(t))
	}
}

// TransactionStatus is a state of the transaction lifecycle.
type TransactionStatus string

const (
	StatusPending       TransactionStatus = "pending"
	StatusProcessing    TransactionStatus = "processing"
	StatusCompleted     TransactionStatus = "completed"
	StatusCancelled     TransactionStatus = "cancelled"
	StatusRefundPending TransactionStatus = "refund_pending"
	StatusRefunding     TransactionStatus = "refunding"
	StatusRefunded      TransactionStatus = "refunded"
)

// transitions lists every edge the processor may take.
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:       {StatusProcessing, StatusCancelled},
	StatusProcessing:    {StatusCompleted, StatusCancelled},
	StatusCompleted:     {StatusRefundPending},
	StatusRefundPending: {StatusRefunding},
	StatusRefunding:     {StatusRefunded, StatusCancelled},
}

// LedgerTransaction is a single monetary movement between accounts.
type LedgerTransaction struct {
	ID                  string
	UUID                string
	Type                TransactionType
	Status              TransactionStatus
	Currency            Currency
	Amount              int64
	TipAmount           int64
	Fees                int64
	TotalAmount         int64
	SenderID            string
	RecipientID         string
	VerifierID          string
	FundingInstrumentID string
	ChargeID            string
	ProcessingDeadline  *time.Time
	CreatedAt           time.Time
	ModifiedAt          time.Time
	VerifiedAt          *time.Time
}

// IsTerminal reports whether processing may no longer change the transaction.
func (t *LedgerTransaction) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// IsRefund reports whether the transaction is on the refund path.
func (t *LedgerTransaction) IsRefund() bool {
	switch t.Status {
	case StatusRefundPending, StatusRefunding, StatusRefunded:
		return true
	}
	return false
}

// IsCardDeposit reports whether the deposit is funded by a card charge.
func (t *LedgerTransaction) IsCardDeposit() bool {
	return t.Type == TransactionTypeDeposit && t.FundingInstrumentID != ""
}

// IsCashDeposit reports whether the deposit is originated by a privileged sender.
func (t *LedgerTransaction) IsCashDeposit() bool {
	return t.Type == TransactionTypeDeposit && t.FundingInstrumentID == "" && t.SenderID != ""
}

// Gross is amount plus tip, the sum leaving the payer.
func (t *LedgerTransaction) Gross() int64 {
	return t.Amount + t.TipAmount
}

// MerchantCredit is what the recipient balance moves by.
func (t *LedgerTransaction) MerchantCredit() int64 {
	return t.Gross() - t.Fees
}

// Validate checks the structural invariants every transaction must hold
// before money moves.
func (t *LedgerTransaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Currency.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 || t.TipAmount < 0 {
		return ErrNegativeAmount
	}
	if t.RecipientID == "" {
		return ErrMissingRecipient
	}

	switch t.Type {
	case TransactionTypeDeposit:
		if t.FundingInstrumentID == "" && t.SenderID == "" {
			return ErrMissingFundingSource
		}
		if t.SenderID != "" && t.SenderID == t.RecipientID {
			return ErrSameAccount
		}
	default:
		if t.SenderID == "" {
			return ErrMissingSender
		}
		if t.SenderID == t.RecipientID {
			return ErrSameAccount
		}
	}

	return nil
}

// CanTransition reports whether moving to status to is a legal edge.
func (t *LedgerTransaction) CanTransition(to TransactionStatus) bool {
	for _, s := range transitions[t.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the transaction to status to.
func (t *LedgerTransaction) Transition(to TransactionStatus, now time.Time) error {
	if !t.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	t.ModifiedAt = now
	if to != StatusProcessing && to != StatusRefunding {
		t.ProcessingDeadline = nil
	}
	return nil
}

// Claimable reports whether a worker may take ownership at now. In-flight
// transactions are claimable again once their lease lapsed or was released.
func (t *LedgerTransaction) Claimable(now time.Time) bool {
	switch t.Status {
	case StatusPending, StatusRefundPending:
		return true
	case StatusProcessing, StatusRefunding:
		return t.ProcessingDeadline == nil || !now.Before(*t.ProcessingDeadline)
	}
	return false
}

// Claim flips the transaction into its in-flight state with a lease ending
// at deadline. fresh is true when the transaction left Pending or
// RefundPending on this call.
func (t *LedgerTransaction) Claim(now, deadline time.Time) (fresh bool, err error) {
	if !t.Claimable(now) {
		return false, fmt.Errorf("%w: status %s", ErrNotClaimable, t.Status)
	}

	switch t.Status {
	case StatusPending:
		t.Status = StatusProcessing
		fresh = true
	case StatusRefundPending:
		t.Status = StatusRefunding
		fresh = true
	}

	t.ProcessingDeadline = &deadline
	t.ModifiedAt = now

	return fresh, nil
}

// ReleaseLease gives up ownership so a redelivery can reclaim immediately.
func (t *LedgerTransaction) ReleaseLease(now time.Time) {
	t.ProcessingDeadline = nil
	t.ModifiedAt = now
}

// Price computes fees and total_amount. Only purchases carry fees.
func (t *LedgerTransaction) Price(feePercentage decimal.Decimal) {
	if t.Type != TransactionTypePurchase {
		t.Fees = 0
		t.TotalAmount = t.Amount
		return
	}
	t.Fees, t.TotalAmount = CalculateFees(t.Amount, t.TipAmount, feePercentage)
}

// Finish moves an in-flight transaction to its successful terminal state.
func (t *LedgerTransaction) Finish(now time.Time) error {
	switch t.Status {
	case StatusProcessing:
		return t.Transition(StatusCompleted, now)
	case StatusRefunding:
		return t.Transition(StatusRefunded, now)
	default:
		return fmt.Errorf("%w: cannot finish from %s", ErrInvalidTransition, t.Status)
	}
}

// Cancel ends the transaction as Cancelled. It is only legal from Pending,
// Processing or Refunding.
func (t *LedgerTransaction) Cancel(now time.Time) error {
	switch t.Status {
	case StatusPending, StatusProcessing, StatusRefunding:
		t.Status = StatusCancelled
		t.ModifiedAt = now
		t.ProcessingDeadline = nil
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidCancel, t.Status)
	}
}

// Verify attaches the verifying staff member.
func (t *LedgerTransaction) Verify(staffID string, now time.Time) error {
	if t.VerifierID != "" {
		return ErrAlreadyVerified
	}
	if t.Type != TransactionTypePurchase || t.Status != StatusCompleted {
		return ErrNotVerifiable
	}
	t.VerifierID = staffID
	t.VerifiedAt = &now
	t.ModifiedAt = now
	return nil
}

// RequestRefund moves a completed transaction back into the queue on the
// refund path.
func (t *LedgerTransaction) RequestRefund(now time.Time) error {
	if t.Status != StatusCompleted {
		return ErrNotRefundable
	}
	if t.Type != TransactionTypePurchase && !t.IsCashDeposit() {
		return ErrNotRefundable
	}
	return t.Transition(StatusRefundPending, now)
}

// ReceiptOwners lists the accounts that get an audit receipt when the
// transaction reaches a terminal or cancelled state.
func (t *LedgerTransaction) ReceiptOwners() []string {
	if t.IsCardDeposit() {
		return []string{t.RecipientID}
	}

	owners := make([]string, 0, 3)
	if t.SenderID != "" {
		owners = append(owners, t.SenderID)
	}
	owners = append(owners, t.RecipientID)
	if t.VerifierID != "" && t.Status == StatusRefunded {
		owners = append(owners, t.VerifierID)
	}
	return owners
}

// Clone returns a copy safe to mutate independently.
func (t *LedgerTransaction) Clone() *LedgerTransaction {
	cp := *t
	if t.ProcessingDeadline != nil {
		d := *t.ProcessingDeadline
		cp.ProcessingDeadline = &d
	}
	if t.VerifiedAt != nil {
		v := *t.VerifiedAt
		cp.VerifiedAt = &v
	}
	return &cp
}
