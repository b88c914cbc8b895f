package generated

import (
	"context"
)

const getFundingInstrumentByID = `-- name: GetFundingInstrumentByID :one
SELECT id, owner_id, customer_ref, status, created_at, updated_at FROM funding_instruments WHERE id = $1
`

func (q *Queries) GetFundingInstrumentByID(ctx context.Context, id string) (FundingInstrument, error) {
	row := q.db.QueryRow(ctx, getFundingInstrumentByID, id)
	var i FundingInstrument
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.CustomerRef,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
