package dto

import (
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Kind          string   `json:"kind"`
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	MerchantID    string   `json:"merchant_id,omitempty"`
	FeePercentage string   `json:"fee_percentage,omitempty"`
	Capabilities  []string `json:"capabilities,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	caps, err := domain.ParseCapabilities(r.Capabilities)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}
	return usecase.CreateAccountInput{
		Kind:          domain.AccountKind(r.Kind),
		Name:          r.Name,
		Email:         r.Email,
		MerchantID:    r.MerchantID,
		FeePercentage: r.FeePercentage,
		Capabilities:  caps,
	}, nil
}

// CreateTransactionRequest represents a request to create a ledger transaction.
type CreateTransactionRequest struct {
	Type                string `json:"type"`
	Currency            string `json:"currency"`
	Amount              int64  `json:"amount"`
	TipAmount           int64  `json:"tip_amount"`
	SenderID            string `json:"sender_id,omitempty"`
	RecipientID         string `json:"recipient_id"`
	FundingInstrumentID string `json:"funding_instrument_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		Type:                domain.TransactionType(r.Type),
		Currency:            r.Currency,
		Amount:              r.Amount,
		TipAmount:           r.TipAmount,
		SenderID:            r.SenderID,
		RecipientID:         r.RecipientID,
		FundingInstrumentID: r.FundingInstrumentID,
	}
}

// StaffActionRequest carries the acting staff member for verify and refund.
type StaffActionRequest struct {
	StaffID string `json:"staff_id"`
}

// ProcessTaskRequest is a pushed work item.
type ProcessTaskRequest struct {
	TransactionID string `json:"transaction_id"`
}
