package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/blazeledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository. Balances live in
// account_balances, one row per account and currency.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:            account.ID,
		Kind:          string(account.Kind),
		Name:          account.Name,
		Email:         account.Email,
		Capabilities:  int32(account.Capabilities),
		MerchantID:    optionalText(account.MerchantID),
		FeePercentage: decimalToNumeric(account.FeePercentage),
		Active:        account.Active,
		Version:       account.Version,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves an account and its balances.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	accounts, err := withBalances(ctx, r.queries, []generated.Account{row})
	if err != nil {
		return nil, err
	}

	return accounts[0], nil
}

// GetByIDsForUpdate locks the account rows in id order and loads their
// balances inside tx. Missing ids are omitted from the result.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	return withBalances(ctx, queries, rows)
}

// UpdateBalances writes every currency bucket of account and bumps its
// version.
func (r *AccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	for _, currency := range touchedCurrencies(account) {
		err := queries.UpsertAccountBalance(ctx, generated.UpsertAccountBalanceParams{
			AccountID:  account.ID,
			Currency:   string(currency),
			Balance:    account.Balance.Get(currency),
			FeeAccrual: account.FeeAccrual.Get(currency),
			TipBalance: account.TipBalance.Get(currency),
		})
		if err != nil {
			return fmt.Errorf("upsert %s balance of %s: %w", currency, account.ID, err)
		}
	}

	return queries.TouchAccount(ctx, generated.TouchAccountParams{
		ID:        account.ID,
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
}

// ListStaffByMerchant returns the staff accounts of a merchant.
func (r *AccountRepository) ListStaffByMerchant(ctx context.Context, merchantID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListStaffByMerchant(ctx, optionalText(merchantID))
	if err != nil {
		return nil, err
	}

	return withBalances(ctx, r.queries, rows)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return withBalances(ctx, r.queries, rows)
}

func withBalances(ctx context.Context, queries *generated.Queries, rows []generated.Account) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(rows))
	if len(rows) == 0 {
		return accounts, nil
	}

	byID := make(map[string]*domain.Account, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		acc := rowToAccount(row)
		accounts = append(accounts, acc)
		byID[acc.ID] = acc
		ids = append(ids, acc.ID)
	}

	balances, err := queries.GetBalancesByAccountIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}

	for _, b := range balances {
		acc, ok := byID[b.AccountID]
		if !ok {
			continue
		}
		currency := domain.Currency(b.Currency)
		acc.Balance[currency] = b.Balance
		acc.FeeAccrual[currency] = b.FeeAccrual
		acc.TipBalance[currency] = b.TipBalance
	}

	return accounts, nil
}

func touchedCurrencies(account *domain.Account) []domain.Currency {
	var out []domain.Currency
	for _, c := range domain.SupportedCurrencies {
		_, inBalance := account.Balance[c]
		_, inFees := account.FeeAccrual[c]
		_, inTips := account.TipBalance[c]
		if inBalance || inFees || inTips {
			out = append(out, c)
		}
	}
	return out
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		Kind:          domain.AccountKind(row.Kind),
		Name:          row.Name,
		Email:         row.Email,
		Capabilities:  domain.Capability(row.Capabilities),
		MerchantID:    row.MerchantID.String,
		FeePercentage: numericToDecimal(row.FeePercentage),
		Active:        row.Active,
		Balance:       domain.Balances{},
		FeeAccrual:    domain.Balances{},
		TipBalance:    domain.Balances{},
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
