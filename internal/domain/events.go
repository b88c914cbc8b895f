package domain

import "time"

// Event types
const (
	EventTypeTransactionProcessed = "transaction.processed"
	EventTypeTransactionRefunded  = "transaction.refunded"
	EventTypeTransactionVerified  = "transaction.verified"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionAnalyticsEvent is the analytics record emitted once a
// transaction is processed.
type TransactionAnalyticsEvent struct {
	UUID        string `json:"uuid"`
	Type        string `json:"type"`
	Sender      string `json:"sender,omitempty"`
	Recipient   string `json:"recipient"`
	TotalAmount int64  `json:"total_amount"`
	Amount      int64  `json:"amount"`
	TipAmount   int64  `json:"tip_amount"`
	Currency    string `json:"currency"`
	Fees        int64  `json:"fees"`
	Created     string `json:"created"`
	Status      string `json:"status"`
}

// NewTransactionAnalyticsEvent builds the analytics payload for txn.
func NewTransactionAnalyticsEvent(txn *LedgerTransaction) TransactionAnalyticsEvent {
	return TransactionAnalyticsEvent{
		UUID:        txn.UUID,
		Type:        string(txn.Type),
		Sender:      txn.SenderID,
		Recipient:   txn.RecipientID,
		TotalAmount: txn.TotalAmount,
		Amount:      txn.Amount,
		TipAmount:   txn.TipAmount,
		Currency:    string(txn.Currency),
		Fees:        txn.Fees,
		Created:     txn.CreatedAt.UTC().Format(time.RFC3339),
		Status:      string(txn.Status),
	}
}

// NotificationKind classifies an outbound notification.
type NotificationKind string

const (
	NotificationTransferReceived NotificationKind = "transfer_received"
	NotificationDepositReceived  NotificationKind = "deposit_received"
	NotificationPurchaseReceipt  NotificationKind = "purchase_receipt"
	NotificationPurchaseRefund   NotificationKind = "purchase_refund"
)

// Notification is handed to the notification dispatcher after processing.
type Notification struct {
	Kind          NotificationKind
	AccountID     string
	Destination   string
	TransactionID string
	Amount        int64
	Currency      Currency
}
