package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// TransactionService creates and looks up ledger transactions.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.LedgerTransaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	RefreshStatus(ctx context.Context, uuid string) (domain.TransactionStatus, error)
}

// VerificationService verifies completed purchases.
type VerificationService interface {
	Verify(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error)
}

// RefundService moves completed transactions onto the refund path.
type RefundService interface {
	RequestRefund(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error)
	RequestCashDepositRefund(ctx context.Context, txnID, actorID string) (*domain.LedgerTransaction, error)
}

// Enqueuer schedules a transaction for processing.
type Enqueuer interface {
	EnqueueProcessing(ctx context.Context, txnID string) error
}

// TransactionHandler handles ledger transaction requests.
type TransactionHandler struct {
	txns     TransactionService
	verifier VerificationService
	refunds  RefundService
	queue    Enqueuer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txns TransactionService, verifier VerificationService, refunds RefundService, queue Enqueuer) *TransactionHandler {
	return &TransactionHandler{
		txns:     txns,
		verifier: verifier,
		refunds:  refunds,
		queue:    queue,
	}
}

// Create stores a pending transaction and schedules it.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.txns.CreateTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "create transaction", err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.txns.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Status reports the current status of a transaction. The path segment is
// the correlation UUID, not the transaction ID.
func (h *TransactionHandler) Status(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "id")

	status, err := h.txns.RefreshStatus(r.Context(), uuid)
	if err != nil {
		writeDomainError(w, "refresh status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{UUID: uuid, Status: string(status)})
}

// Enqueue schedules an existing transaction for processing.
func (h *TransactionHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.queue.EnqueueProcessing(r.Context(), id); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TaskResponse{TransactionID: id, Result: "enqueued"})
}

// Verify attaches a staff verifier to a completed purchase.
func (h *TransactionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStaffAction(w, r)
	if !ok {
		return
	}

	txn, err := h.verifier.Verify(r.Context(), chi.URLParam(r, "id"), req.StaffID)
	if err != nil {
		writeDomainError(w, "verify transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Refund requests the refund of a completed purchase by merchant staff.
func (h *TransactionHandler) Refund(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStaffAction(w, r)
	if !ok {
		return
	}

	txn, err := h.refunds.RequestRefund(r.Context(), chi.URLParam(r, "id"), req.StaffID)
	if err != nil {
		writeDomainError(w, "request refund", err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(txn))
}

// RefundCashDeposit requests the reversal of a cash deposit by a privileged account.
func (h *TransactionHandler) RefundCashDeposit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStaffAction(w, r)
	if !ok {
		return
	}

	txn, err := h.refunds.RequestCashDepositRefund(r.Context(), chi.URLParam(r, "id"), req.StaffID)
	if err != nil {
		writeDomainError(w, "request refund", err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(txn))
}

func decodeStaffAction(w http.ResponseWriter, r *http.Request) (dto.StaffActionRequest, bool) {
	var req dto.StaffActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	if req.StaffID == "" {
		writeError(w, http.StatusBadRequest, "missing staff_id", "")
		return req, false
	}
	return req, true
}
