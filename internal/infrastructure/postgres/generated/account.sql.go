package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, kind, name, email, capabilities, merchant_id, fee_percentage, active, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateAccountParams struct {
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

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.Kind,
		arg.Name,
		arg.Email,
		arg.Capabilities,
		arg.MerchantID,
		arg.FeePercentage,
		arg.Active,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, kind, name, email, capabilities, merchant_id, fee_percentage, active, version, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Name,
		&i.Email,
		&i.Capabilities,
		&i.MerchantID,
		&i.FeePercentage,
		&i.Active,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountsByIDsForUpdate = `-- name: GetAccountsByIDsForUpdate :many
SELECT id, kind, name, email, capabilities, merchant_id, fee_percentage, active, version, created_at, updated_at FROM accounts WHERE id = ANY($1::text[]) ORDER BY id FOR UPDATE
`

func (q *Queries) GetAccountsByIDsForUpdate(ctx context.Context, dollar_1 []string) ([]Account, error) {
	rows, err := q.db.Query(ctx, getAccountsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Name,
			&i.Email,
			&i.Capabilities,
			&i.MerchantID,
			&i.FeePercentage,
			&i.Active,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listAccounts = `-- name: ListAccounts :many
SELECT id, kind, name, email, capabilities, merchant_id, fee_percentage, active, version, created_at, updated_at FROM accounts ORDER BY created_at DESC, id LIMIT $1 OFFSET $2
`

type ListAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Name,
			&i.Email,
			&i.Capabilities,
			&i.MerchantID,
			&i.FeePercentage,
			&i.Active,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listStaffByMerchant = `-- name: ListStaffByMerchant :many
SELECT id, kind, name, email, capabilities, merchant_id, fee_percentage, active, version, created_at, updated_at FROM accounts WHERE kind = 'staff' AND merchant_id = $1 ORDER BY id
`

func (q *Queries) ListStaffByMerchant(ctx context.Context, merchantID pgtype.Text) ([]Account, error) {
	rows, err := q.db.Query(ctx, listStaffByMerchant, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Name,
			&i.Email,
			&i.Capabilities,
			&i.MerchantID,
			&i.FeePercentage,
			&i.Active,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const touchAccount = `-- name: TouchAccount :exec
UPDATE accounts SET version = version + 1, updated_at = $2 WHERE id = $1
`

type TouchAccountParams struct {
	ID        string             `json:"id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) TouchAccount(ctx context.Context, arg TouchAccountParams) error {
	_, err := q.db.Exec(ctx, touchAccount, arg.ID, arg.UpdatedAt)
	return err
}

const getBalancesByAccountIDs = `-- name: GetBalancesByAccountIDs :many
SELECT account_id, currency, balance, fee_accrual, tip_balance FROM account_balances WHERE account_id = ANY($1::text[]) ORDER BY account_id, currency
`

func (q *Queries) GetBalancesByAccountIDs(ctx context.Context, dollar_1 []string) ([]AccountBalance, error) {
	rows, err := q.db.Query(ctx, getBalancesByAccountIDs, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AccountBalance{}
	for rows.Next() {
		var i AccountBalance
		if err := rows.Scan(
			&i.AccountID,
			&i.Currency,
			&i.Balance,
			&i.FeeAccrual,
			&i.TipBalance,
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

const upsertAccountBalance = `-- name: UpsertAccountBalance :exec
INSERT INTO account_balances (account_id, currency, balance, fee_accrual, tip_balance)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (account_id, currency) DO UPDATE
SET balance = EXCLUDED.balance, fee_accrual = EXCLUDED.fee_accrual, tip_balance = EXCLUDED.tip_balance
`

type UpsertAccountBalanceParams struct {
	AccountID  string `json:"account_id"`
	Currency   string `json:"currency"`
	Balance    int64  `json:"balance"`
	FeeAccrual int64  `json:"fee_accrual"`
	TipBalance int64  `json:"tip_balance"`
}

func (q *Queries) UpsertAccountBalance(ctx context.Context, arg UpsertAccountBalanceParams) error {
	_, err := q.db.Exec(ctx, upsertAccountBalance,
		arg.AccountID,
		arg.Currency,
		arg.Balance,
		arg.FeeAccrual,
		arg.TipBalance,
	)
	return err
}
