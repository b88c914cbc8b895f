package charge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

func depositCharge() usecase.ChargeRequest {
	return usecase.ChargeRequest{
		IdempotencyKey: "uuid-txn-1",
		CustomerRef:    "cus_1",
		Amount:         2000,
		Currency:       domain.USD,
		Description:    "deposit uuid-txn-1",
	}
}

func TestClientChargeSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "uuid-txn-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, chargeRequest{Customer: "cus_1", Amount: 2000, Currency: "usd", Description: "deposit uuid-txn-1"}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ch_123","status":"succeeded"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "sk_test"}, zerolog.Nop())

	id, err := client.Charge(context.Background(), depositCharge())
	require.NoError(t, err)
	assert.Equal(t, "ch_123", id)
}

func TestClientChargeClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "card declined", status: http.StatusPaymentRequired, body: `{"error":{"code":"card_declined"}}`, wantErr: domain.ErrChargeDeclined},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantErr: domain.ErrChargeDeclined},
		{name: "failed status", status: http.StatusOK, body: `{"id":"ch_1","status":"failed"}`, wantErr: domain.ErrChargeDeclined},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: domain.ErrChargeUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, body: ``, wantErr: domain.ErrChargeUnavailable},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, wantErr: domain.ErrChargeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())

			_, err := client.Charge(context.Background(), depositCharge())
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestClientConnectionFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url, Timeout: time.Second}, zerolog.Nop())

	_, err := client.Charge(context.Background(), depositCharge())
	assert.True(t, errors.Is(err, domain.ErrChargeUnavailable), "got %v", err)
}

func TestClientMalformedRequestIsUnavailable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://charges.internal\n"}, zerolog.Nop())

	_, err := client.Charge(context.Background(), depositCharge())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrChargeUnavailable), "got %v", err)
	assert.False(t, errors.Is(err, domain.ErrChargeDeclined), "got %v", err)
}

func TestClientBreakerOpensOnUnavailability(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := client.Charge(context.Background(), depositCharge())
		require.ErrorIs(t, err, domain.ErrChargeUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.Charge(context.Background(), depositCharge())
	assert.ErrorIs(t, err, domain.ErrChargeUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the API")
}

func TestClientDeclinesDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, ConsecutiveFailures: 1}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := client.Charge(context.Background(), depositCharge())
		require.ErrorIs(t, err, domain.ErrChargeDeclined)
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestStaticGateway(t *testing.T) {
	gw := NewStaticGateway("cus_declined")

	first, err := gw.Charge(context.Background(), depositCharge())
	require.NoError(t, err)
	again, err := gw.Charge(context.Background(), depositCharge())
	require.NoError(t, err)
	assert.Equal(t, first, again)

	req := depositCharge()
	req.CustomerRef = "cus_declined"
	_, err = gw.Charge(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrChargeDeclined)
}
