package domain

import (
	"encoding/json"
	"time"
)

// AuditReceipt is an immutable per-account snapshot of a ledger transaction
// taken when it reached a terminal or cancelled state.
type AuditReceipt struct {
	ID            string
	AccountID     string
	TransactionID string
	Status        TransactionStatus
	Snapshot      JSON
	CreatedAt     time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// TransactionSnapshot is the serialized form stored on a receipt.
type TransactionSnapshot struct {
	ID                  string     `json:"id"`
	UUID                string     `json:"uuid"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	Currency            string     `json:"currency"`
	Amount              int64      `json:"amount"`
	TipAmount           int64      `json:"tip_amount"`
	Fees                int64      `json:"fees"`
	TotalAmount         int64      `json:"total_amount"`
	SenderID            string     `json:"sender_id,omitempty"`
	RecipientID         string     `json:"recipient_id"`
	VerifierID          string     `json:"verifier_id,omitempty"`
	FundingInstrumentID string     `json:"funding_instrument_id,omitempty"`
	Created             time.Time  `json:"created"`
	Modified            time.Time  `json:"modified"`
	VerifiedTime        *time.Time `json:"verified_time,omitempty"`
}

// Snapshot captures the transaction as it is at this instant.
func (t *LedgerTransaction) Snapshot() TransactionSnapshot {
	s := TransactionSnapshot{
		ID:                  t.ID,
		UUID:                t.UUID,
		Type:                string(t.Type),
		Status:              string(t.Status),
		Currency:            string(t.Currency),
		Amount:              t.Amount,
		TipAmount:           t.TipAmount,
		Fees:                t.Fees,
		TotalAmount:         t.TotalAmount,
		SenderID:            t.SenderID,
		RecipientID:         t.RecipientID,
		VerifierID:          t.VerifierID,
		FundingInstrumentID: t.FundingInstrumentID,
		Created:             t.CreatedAt,
		Modified:            t.ModifiedAt,
	}
	if t.VerifiedAt != nil {
		v := *t.VerifiedAt
		s.VerifiedTime = &v
	}
	return s
}

// NewAuditReceipt builds the receipt of txn for accountID.
func NewAuditReceipt(id, accountID string, txn *LedgerTransaction, now time.Time) *AuditReceipt {
	return &AuditReceipt{
		ID:            id,
		AccountID:     accountID,
		TransactionID: txn.ID,
		Status:        txn.Status,
		Snapshot:      MarshalState(txn.Snapshot()),
		CreatedAt:     now,
	}
}

// MarshalState converts a domain object to a JSON document.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
