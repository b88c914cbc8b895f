package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAuditReceipt = `-- name: CreateAuditReceipt :exec
INSERT INTO audit_receipts (id, account_id, transaction_id, status, snapshot, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (account_id, transaction_id, status) DO NOTHING
`

type CreateAuditReceiptParams struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	TransactionID string             `json:"transaction_id"`
	Status        string             `json:"status"`
	Snapshot      []byte             `json:"snapshot"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAuditReceipt(ctx context.Context, arg CreateAuditReceiptParams) error {
	_, err := q.db.Exec(ctx, createAuditReceipt,
		arg.ID,
		arg.AccountID,
		arg.TransactionID,
		arg.Status,
		arg.Snapshot,
		arg.CreatedAt,
	)
	return err
}

const listAuditReceiptsByAccount = `-- name: ListAuditReceiptsByAccount :many
SELECT id, account_id, transaction_id, status, snapshot, created_at FROM audit_receipts
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListAuditReceiptsByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

func (q *Queries) ListAuditReceiptsByAccount(ctx context.Context, arg ListAuditReceiptsByAccountParams) ([]AuditReceipt, error) {
	rows, err := q.db.Query(ctx, listAuditReceiptsByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AuditReceipt{}
	for rows.Next() {
		var i AuditReceipt
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.TransactionID,
			&i.Status,
			&i.Snapshot,
			&i.CreatedAt,
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
