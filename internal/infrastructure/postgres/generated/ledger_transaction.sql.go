package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerTransaction = `-- name: CreateLedgerTransaction :exec
INSERT INTO ledger_transactions (id, uuid, type, status, currency, amount, tip_amount, fees, total_amount, sender_id, recipient_id, verifier_id, funding_instrument_id, charge_id, processing_deadline, created_at, modified_at, verified_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

type CreateLedgerTransactionParams struct {
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

func (q *Queries) CreateLedgerTransaction(ctx context.Context, arg CreateLedgerTransactionParams) error {
	_, err := q.db.Exec(ctx, createLedgerTransaction,
		arg.ID,
		arg.Uuid,
		arg.Type,
		arg.Status,
		arg.Currency,
		arg.Amount,
		arg.TipAmount,
		arg.Fees,
		arg.TotalAmount,
		arg.SenderID,
		arg.RecipientID,
		arg.VerifierID,
		arg.FundingInstrumentID,
		arg.ChargeID,
		arg.ProcessingDeadline,
		arg.CreatedAt,
		arg.ModifiedAt,
		arg.VerifiedAt,
	)
	return err
}

const getLedgerTransactionByID = `-- name: GetLedgerTransactionByID :one
SELECT id, uuid, type, status, currency, amount, tip_amount, fees, total_amount, sender_id, recipient_id, verifier_id, funding_instrument_id, charge_id, processing_deadline, created_at, modified_at, verified_at FROM ledger_transactions WHERE id = $1
`

func (q *Queries) GetLedgerTransactionByID(ctx context.Context, id string) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, getLedgerTransactionByID, id)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Uuid,
		&i.Type,
		&i.Status,
		&i.Currency,
		&i.Amount,
		&i.TipAmount,
		&i.Fees,
		&i.TotalAmount,
		&i.SenderID,
		&i.RecipientID,
		&i.VerifierID,
		&i.FundingInstrumentID,
		&i.ChargeID,
		&i.ProcessingDeadline,
		&i.CreatedAt,
		&i.ModifiedAt,
		&i.VerifiedAt,
	)
	return i, err
}

const getLedgerTransactionByIDForUpdate = `-- name: GetLedgerTransactionByIDForUpdate :one
SELECT id, uuid, type, status, currency, amount, tip_amount, fees, total_amount, sender_id, recipient_id, verifier_id, funding_instrument_id, charge_id, processing_deadline, created_at, modified_at, verified_at FROM ledger_transactions WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLedgerTransactionByIDForUpdate(ctx context.Context, id string) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, getLedgerTransactionByIDForUpdate, id)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Uuid,
		&i.Type,
		&i.Status,
		&i.Currency,
		&i.Amount,
		&i.TipAmount,
		&i.Fees,
		&i.TotalAmount,
		&i.SenderID,
		&i.RecipientID,
		&i.VerifierID,
		&i.FundingInstrumentID,
		&i.ChargeID,
		&i.ProcessingDeadline,
		&i.CreatedAt,
		&i.ModifiedAt,
		&i.VerifiedAt,
	)
	return i, err
}

const getLedgerTransactionByUUID = `-- name: GetLedgerTransactionByUUID :one
SELECT id, uuid, type, status, currency, amount, tip_amount, fees, total_amount, sender_id, recipient_id, verifier_id, funding_instrument_id, charge_id, processing_deadline, created_at, modified_at, verified_at FROM ledger_transactions WHERE uuid = $1
`

func (q *Queries) GetLedgerTransactionByUUID(ctx context.Context, uuid string) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, getLedgerTransactionByUUID, uuid)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Uuid,
		&i.Type,
		&i.Status,
		&i.Currency,
		&i.Amount,
		&i.TipAmount,
		&i.Fees,
		&i.TotalAmount,
		&i.SenderID,
		&i.RecipientID,
		&i.VerifierID,
		&i.FundingInstrumentID,
		&i.ChargeID,
		&i.ProcessingDeadline,
		&i.CreatedAt,
		&i.ModifiedAt,
		&i.VerifiedAt,
	)
	return i, err
}

const listStuckLedgerTransactions = `-- name: ListStuckLedgerTransactions :many
SELECT id, uuid, type, status, currency, amount, tip_amount, fees, total_amount, sender_id, recipient_id, verifier_id, funding_instrument_id, charge_id, processing_deadline, created_at, modified_at, verified_at FROM ledger_transactions
WHERE (status IN ('pending', 'refund_pending') AND modified_at < $1)
   OR (status IN ('processing', 'refunding') AND (processing_deadline IS NULL OR processing_deadline < $2))
ORDER BY modified_at, id
LIMIT $3
`

type ListStuckLedgerTransactionsParams struct {
	StaleBefore pgtype.Timestamptz `json:"stale_before"`
	Now         pgtype.Timestamptz `json:"now"`
	Limit       int32              `json:"limit"`
}

func (q *Queries) ListStuckLedgerTransactions(ctx context.Context, arg ListStuckLedgerTransactionsParams) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listStuckLedgerTransactions, arg.StaleBefore, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LedgerTransaction{}
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Uuid,
			&i.Type,
			&i.Status,
			&i.Currency,
			&i.Amount,
			&i.TipAmount,
			&i.Fees,
			&i.TotalAmount,
			&i.SenderID,
			&i.RecipientID,
			&i.VerifierID,
			&i.FundingInstrumentID,
			&i.ChargeID,
			&i.ProcessingDeadline,
			&i.CreatedAt,
			&i.ModifiedAt,
			&i.VerifiedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLedgerTransaction = `-- name: UpdateLedgerTransaction :exec
UPDATE ledger_transactions
SET status = $2, fees = $3, total_amount = $4, verifier_id = $5, charge_id = $6, processing_deadline = $7, modified_at = $8, verified_at = $9
WHERE id = $1
`

type UpdateLedgerTransactionParams struct {
	ID                 string             `json:"id"`
	Status             string             `json:"status"`
	Fees               int64              `json:"fees"`
	TotalAmount        int64              `json:"total_amount"`
	VerifierID         string             `json:"verifier_id"`
	ChargeID           string             `json:"charge_id"`
	ProcessingDeadline pgtype.Timestamptz `json:"processing_deadline"`
	ModifiedAt         pgtype.Timestamptz `json:"modified_at"`
	VerifiedAt         pgtype.Timestamptz `json:"verified_at"`
}

func (q *Queries) UpdateLedgerTransaction(ctx context.Context, arg UpdateLedgerTransactionParams) error {
	_, err := q.db.Exec(ctx, updateLedgerTransaction,
		arg.ID,
		arg.Status,
		arg.Fees,
		arg.TotalAmount,
		arg.VerifierID,
		arg.ChargeID,
		arg.ProcessingDeadline,
		arg.ModifiedAt,
		arg.VerifiedAt,
	)
	return err
}
