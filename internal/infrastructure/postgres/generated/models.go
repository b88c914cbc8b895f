package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Capabilities  int32              `json:"capabilities"`
	MerchantID    pgtype.Text        `json:"merchant_id"`
	FeePercentage pgtype.Numeric     `json:"fee_percentage"`
	Active        bool               `json:"active"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type AccountBalance struct {
	AccountID  string `json:"account_id"`
	Currency   string `json:"currency"`
	Balance    int64  `json:"balance"`
	FeeAccrual int64  `json:"fee_accrual"`
	TipBalance int64  `json:"tip_balance"`
}

type AuditReceipt struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	TransactionID string             `json:"transaction_id"`
	Status        string             `json:"status"`
	Snapshot      []byte             `json:"snapshot"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type FundingInstrument struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	CustomerRef string             `json:"customer_ref"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type LedgerTransaction struct {
	ID                  string             `json:"id"`
	Uuid                string             `json:"uuid"`
	Type                string             `json:"type"`
	Status              string             `json:"status"`
	Currency            string             `json:"currency"`
	Amount              int64              `json:"amount"`
	TipAmount           int64              `json:"tip_amount"`
	Fees                int64              `json:"fees"`
	TotalAmount         int64              `json:"total_amount"`
	SenderID            string             `json:"sender_id"`
	RecipientID         string             `json:"recipient_id"`
	VerifierID          string             `json:"verifier_id"`
	FundingInstrumentID string             `json:"funding_instrument_id"`
	ChargeID            string             `json:"charge_id"`
	ProcessingDeadline  pgtype.Timestamptz `json:"processing_deadline"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
	ModifiedAt          pgtype.Timestamptz `json:"modified_at"`
	VerifiedAt          pgtype.Timestamptz `json:"verified_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}
