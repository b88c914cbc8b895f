package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Message: details})
}

// writeDomainError reports a failed action with the status statusFor picks.
func writeDomainError(w http.ResponseWriter, action string, err error) {
	writeError(w, statusFor(err), "failed to "+action, err.Error())
}

// errorStatuses is checked in order; the first errors.Is match wins.
var errorStatuses = []struct {
	target error
	status int
}{
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrTransactionNotFound, http.StatusNotFound},
	{domain.ErrFundingInstrumentNotFound, http.StatusNotFound},

	{domain.ErrInvalidAccountName, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrAmountTooLarge, http.StatusBadRequest},
	{domain.ErrNegativeAmount, http.StatusBadRequest},
	{domain.ErrInvalidCurrency, http.StatusBadRequest},
	{domain.ErrInvalidTransferType, http.StatusBadRequest},
	{domain.ErrInvalidFeePercent, http.StatusBadRequest},
	{domain.ErrInvalidAccountKind, http.StatusBadRequest},
	{domain.ErrUnknownCapability, http.StatusBadRequest},
	{domain.ErrSameAccount, http.StatusBadRequest},
	{domain.ErrMissingRecipient, http.StatusBadRequest},
	{domain.ErrMissingSender, http.StatusBadRequest},
	{domain.ErrMissingFundingSource, http.StatusBadRequest},

	{domain.ErrNotAuthorizedStaff, http.StatusForbidden},
	{domain.ErrUnauthorizedDeposit, http.StatusForbidden},

	{domain.ErrAlreadyVerified, http.StatusConflict},
	{domain.ErrNotVerifiable, http.StatusConflict},
	{domain.ErrNotRefundable, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},

	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},

	{usecase.ErrLockContention, http.StatusServiceUnavailable},
	{domain.ErrChargeUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// queryInt returns the integer query parameter key, or def when it is
// missing or malformed.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}
