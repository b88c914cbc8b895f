package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/usecase"
)

// Processor handles one delivery of a work item.
type Processor interface {
	Process(ctx context.Context, txnID string) error
}

// TaskHandler receives work items pushed by the task queue. Any non-2xx
// response makes the queue redeliver the item.
type TaskHandler struct {
	processor Processor
	logger    zerolog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(processor Processor, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{processor: processor, logger: logger}
}

// Process runs the processor for the pushed transaction.
func (h *TaskHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessTaskRequest
	if err := decodeJSON(w, r, &req); err != nil || req.TransactionID == "" {
		writeError(w, http.StatusBadRequest, "invalid work item", "transaction_id is required")
		return
	}

	err := h.processor.Process(r.Context(), req.TransactionID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dto.TaskResponse{TransactionID: req.TransactionID, Result: "handled"})
	case usecase.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, "retry later", err.Error())
	default:
		h.logger.Error().Err(err).Str("txn_id", req.TransactionID).Msg("work item failed permanently")
		writeJSON(w, http.StatusOK, dto.TaskResponse{TransactionID: req.TransactionID, Result: "dropped"})
	}
}
