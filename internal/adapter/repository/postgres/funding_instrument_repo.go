package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
)

// FundingInstrumentRepository implements usecase.FundingInstrumentRepository.
type FundingInstrumentRepository struct {
	queries *generated.Queries
}

// NewFundingInstrumentRepository creates a new FundingInstrumentRepository.
func NewFundingInstrumentRepository(db generated.DBTX) *FundingInstrumentRepository {
	return &FundingInstrumentRepository{queries: generated.New(db)}
}

// GetByID retrieves a funding instrument by ID.
func (r *FundingInstrumentRepository) GetByID(ctx context.Context, id string) (*domain.FundingInstrument, error) {
	row, err := r.queries.GetFundingInstrumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFundingInstrumentNotFound
		}
		return nil, err
	}

	return &domain.FundingInstrument{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		CustomerRef: row.CustomerRef,
		Status:      domain.FundingInstrumentStatus(row.Status),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}, nil
}
