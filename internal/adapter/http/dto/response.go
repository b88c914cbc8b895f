package dto

import (
	"time"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	Email         string           `json:"email,omitempty"`
	MerchantID    string           `json:"merchant_id,omitempty"`
	FeePercentage string           `json:"fee_percentage"`
	Capabilities  []string         `json:"capabilities"`
	Active        bool             `json:"active"`
	Balance       map[string]int64 `json:"balance"`
	FeeAccrual    map[string]int64 `json:"fee_accrual"`
	TipBalance    map[string]int64 `json:"tip_balance"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Kind:          string(a.Kind),
		Name:          a.Name,
		Email:         a.Email,
		MerchantID:    a.MerchantID,
		FeePercentage: a.FeePercentage.String(),
		Capabilities:  a.Capabilities.Names(),
		Active:        a.Active,
		Balance:       balancesFromDomain(a.Balance),
		FeeAccrual:    balancesFromDomain(a.FeeAccrual),
		TipBalance:    balancesFromDomain(a.TipBalance),
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// balancesFromDomain reports every supported currency, zero included.
func balancesFromDomain(b domain.Balances) map[string]int64 {
	out := make(map[string]int64, len(domain.SupportedCurrencies))
	for _, c := range domain.SupportedCurrencies {
		out[string(c)] = b.Get(c)
	}
	return out
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
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
	CreatedAt           time.Time  `json:"created_at"`
	ModifiedAt          time.Time  `json:"modified_at"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.LedgerTransaction) *TransactionResponse {
	return &TransactionResponse{
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
		CreatedAt:           t.CreatedAt,
		ModifiedAt:          t.ModifiedAt,
		VerifiedAt:          t.VerifiedAt,
	}
}

// StatusResponse is the client-visible status of a transaction.
type StatusResponse struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}

// ReceiptResponse represents an audit receipt in API responses.
type ReceiptResponse struct {
	ID            string         `json:"id"`
	AccountID     string         `json:"account_id"`
	TransactionID string         `json:"transaction_id"`
	Status        string         `json:"status"`
	Snapshot      map[string]any `json:"snapshot"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ReceiptsFromDomain converts domain receipts to responses.
func ReceiptsFromDomain(receipts []*domain.AuditReceipt) []*ReceiptResponse {
	result := make([]*ReceiptResponse, len(receipts))
	for i, r := range receipts {
		result[i] = &ReceiptResponse{
			ID:            r.ID,
			AccountID:     r.AccountID,
			TransactionID: r.TransactionID,
			Status:        string(r.Status),
			Snapshot:      r.Snapshot,
			CreatedAt:     r.CreatedAt,
		}
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListReceiptsResponse represents a page of receipts.
type ListReceiptsResponse struct {
	Receipts []*ReceiptResponse `json:"receipts"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// TaskResponse reports how a pushed work item was handled.
type TaskResponse struct {
	TransactionID string `json:"transaction_id"`
	Result        string `json:"result"`
}

// CurrencyTotalsResponse is one currency of a consistency report.
type CurrencyTotalsResponse struct {
	Currency   string `json:"currency"`
	Held       int64  `json:"held"`
	Funded     int64  `json:"funded"`
	Difference int64  `json:"difference"`
}

// ConsistencyResponse represents a ledger consistency report.
type ConsistencyResponse struct {
	Status     string                   `json:"status"`
	Consistent bool                     `json:"consistent"`
	Totals     []CurrencyTotalsResponse `json:"totals"`
	CheckedAt  time.Time                `json:"checked_at"`
}

// ConsistencyFromReport converts a use case report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:     "consistent",
		Consistent: r.Consistent,
		Totals:     make([]CurrencyTotalsResponse, len(r.Totals)),
		CheckedAt:  r.CheckedAt,
	}
	if !r.Consistent {
		resp.Status = "inconsistent"
	}
	for i, t := range r.Totals {
		resp.Totals[i] = CurrencyTotalsResponse{
			Currency:   string(t.Currency),
			Held:       t.Held,
			Funded:     t.Funded,
			Difference: t.Difference,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
