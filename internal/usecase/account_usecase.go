package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/blazeledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Kind          domain.AccountKind
	Name          string
	Email         string
	MerchantID    string
	FeePercentage string
	Capabilities  domain.Capability
}

// CreateAccount creates a new account with zero balances.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	name, err := domain.NormalizeAccountName(input.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	pct := decimal.Zero
	switch input.Kind {
	case domain.AccountKindMerchant:
		if pct, err = domain.ParseFeePercentage(input.FeePercentage); err != nil {
			return nil, err
		}
	case domain.AccountKindStaff:
		merchant, err := uc.accountRepo.GetByID(ctx, input.MerchantID)
		if err != nil {
			return nil, err
		}
		if !merchant.IsMerchant() {
			return nil, fmt.Errorf("%w: staff must belong to a merchant", domain.ErrInvalidAccountKind)
		}
	case domain.AccountKindProfile:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAccountKind, input.Kind)
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		Kind:          input.Kind,
		Name:          name,
		Email:         email,
		Capabilities:  input.Capabilities,
		FeePercentage: pct,
		Active:        true,
		Balance:       domain.Balances{},
		FeeAccrual:    domain.Balances{},
		TipBalance:    domain.Balances{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.Kind == domain.AccountKindStaff {
		account.MerchantID = input.MerchantID
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	page := domain.NewPage(input.Limit, input.Offset, 20, 100)
	return uc.accountRepo.List(ctx, page.Limit, page.Offset)
}

// ListStaff returns every staff account of a merchant.
func (uc *AccountUseCase) ListStaff(ctx context.Context, merchantID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListStaffByMerchant(ctx, merchantID)
}
