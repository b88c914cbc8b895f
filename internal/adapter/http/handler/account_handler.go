package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListStaff(ctx context.Context, merchantID string) ([]*domain.Account, error)
}

// ReceiptService lists audit receipts of an account.
type ReceiptService interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	receipts  ReceiptService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, receipts ReceiptService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, receipts: receipts}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), input)
	if err != nil {
		writeDomainError(w, "create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Staff lists every staff account of a merchant.
func (h *AccountHandler) Staff(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "id")

	staff, err := h.accountUC.ListStaff(r.Context(), merchantID)
	if err != nil {
		writeDomainError(w, "list staff", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(staff),
		Total:    int64(len(staff)),
	})
}

// Receipts lists the audit receipts of an account, newest first.
func (h *AccountHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page := domain.NewPage(queryInt(r, "limit", 0), queryInt(r, "offset", 0), domain.DefaultPageSize, domain.MaxPageSize)

	receipts, err := h.receipts.ListByAccount(r.Context(), id, page.Limit, page.Offset)
	if err != nil {
		writeDomainError(w, "list receipts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListReceiptsResponse{
		Receipts: dto.ReceiptsFromDomain(receipts),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}
