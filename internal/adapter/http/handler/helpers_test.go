package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

func TestQueryInt(t *testing.T) {
	cases := map[string]int{
		"/receipts?limit=75":   75,
		"/receipts?limit=-3":   -3,
		"/receipts?limit=many": 10,
		"/receipts":            10,
	}
	for target, want := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if got := queryInt(req, "limit", 10); got != want {
			t.Errorf("%s: expected %d, got %d", target, want, got)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{fmt.Errorf("load staff: %w", domain.ErrAccountNotFound), http.StatusNotFound},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrInvalidFeePercent, http.StatusBadRequest},
		{domain.ErrUnauthorizedDeposit, http.StatusForbidden},
		{domain.ErrNotAuthorizedStaff, http.StatusForbidden},
		{domain.ErrNotVerifiable, http.StatusConflict},
		{domain.ErrNotRefundable, http.StatusConflict},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{fmt.Errorf("acquire: %w", usecase.ErrLockContention), http.StatusServiceUnavailable},
		{domain.ErrChargeUnavailable, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestWriteDomainError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeDomainError(rr, "verify transaction", domain.ErrAlreadyVerified)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "failed to verify transaction" {
		t.Fatalf("unexpected error field %q", resp.Error)
	}
	if resp.Message != domain.ErrAlreadyVerified.Error() {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
