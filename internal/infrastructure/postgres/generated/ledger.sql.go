package generated

import (
	"context"
)

const getFundedTotal = `-- name: GetFundedTotal :one
SELECT COALESCE(SUM(t.amount), 0)::bigint AS funded FROM ledger_transactions t
WHERE t.type = 'deposit' AND t.currency = $1
  AND EXISTS (SELECT 1 FROM audit_receipts r WHERE r.transaction_id = t.id AND r.status = 'completed')
  AND NOT EXISTS (SELECT 1 FROM audit_receipts r WHERE r.transaction_id = t.id AND r.status = 'refunded')
`

func (q *Queries) GetFundedTotal(ctx context.Context, currency string) (int64, error) {
	row := q.db.QueryRow(ctx, getFundedTotal, currency)
	var funded int64
	err := row.Scan(&funded)
	return funded, err
}

const getHeldTotal = `-- name: GetHeldTotal :one
SELECT COALESCE(SUM(balance + fee_accrual), 0)::bigint AS held FROM account_balances WHERE currency = $1
`

func (q *Queries) GetHeldTotal(ctx context.Context, currency string) (int64, error) {
	row := q.db.QueryRow(ctx, getHeldTotal, currency)
	var held int64
	err := row.Scan(&held)
	return held, err
}
