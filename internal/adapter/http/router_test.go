package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
	"github.com/iho/blazeledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/blazeledger/internal/adapter/http/middleware"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON health response")
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("blazeledger_up 1\n"))
		})
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "blazeledger_up") {
		t.Fatalf("unexpected /metrics response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"kind":"profile","name":"Main"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if !store.updated {
		t.Fatalf("expected the created account response to be stored")
	}
}

func TestNewRouter_TaskPushBypassesIdempotency(t *testing.T) {
	store := &stubIdempotencyStore{}
	processed := []string{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.TaskHandler = handler.NewTaskHandler(processorFunc(func(ctx context.Context, txnID string) error {
			processed = append(processed, txnID)
			return nil
		}), zerolog.Nop())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/process", strings.NewReader(`{"transaction_id":"txn-9"}`))
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "delivery-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.checkCalled {
		t.Fatalf("task pushes must not go through the idempotency store")
	}
	if len(processed) != 1 || processed[0] != "txn-9" {
		t.Fatalf("expected txn-9 to be processed, got %v", processed)
	}
}

func TestNewRouter_StatusRoute(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/5b6c1f3e/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UUID != "5b6c1f3e" || resp.Status != "completed" {
		t.Fatalf("unexpected status response %+v", resp)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/tasks/process",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/staff",
		"GET /api/v1/accounts/{id}/receipts",
		"POST /api/v1/transactions/",
		"GET /api/v1/transactions/{id}",
		"GET /api/v1/transactions/{id}/status",
		"POST /api/v1/transactions/{id}/enqueue",
		"POST /api/v1/transactions/{id}/verify",
		"POST /api/v1/transactions/{id}/refund",
		"POST /api/v1/transactions/{id}/cash-refund",
		"GET /api/v1/ledger/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	ok := handler.PingFunc(func(ctx context.Context) error { return nil })
	txns := stubTransactionService{}

	cfg := RouterConfig{
		HealthHandler:      handler.NewHealthHandler(handler.Check{Name: "postgres", Pinger: ok}),
		AccountHandler:     handler.NewAccountHandler(stubAccountService{}, stubReceiptService{}),
		TransactionHandler: handler.NewTransactionHandler(txns, txns, txns, txns),
		TaskHandler: handler.NewTaskHandler(processorFunc(func(ctx context.Context, txnID string) error {
			return nil
		}), zerolog.Nop()),
		LedgerHandler: handler.NewLedgerHandler(usecase.NewLedgerUseCase(stubLedgerRepository{})),
		Logger:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type processorFunc func(ctx context.Context, txnID string) error

func (f processorFunc) Process(ctx context.Context, txnID string) error { return f(ctx, txnID) }

type stubAccountService struct{}

func (stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc", Kind: input.Kind, Name: input.Name}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

func (stubAccountService) ListStaff(ctx context.Context, merchantID string) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

type stubReceiptService struct{}

func (stubReceiptService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error) {
	return []*domain.AuditReceipt{}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.LedgerTransaction, error) {
	return &domain.LedgerTransaction{ID: "txn", Status: domain.StatusPending}, nil
}

func (stubTransactionService) GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	return &domain.LedgerTransaction{ID: id}, nil
}

func (stubTransactionService) RefreshStatus(ctx context.Context, uuid string) (domain.TransactionStatus, error) {
	return domain.StatusCompleted, nil
}

func (stubTransactionService) Verify(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error) {
	return &domain.LedgerTransaction{ID: txnID, VerifierID: staffID}, nil
}

func (stubTransactionService) RequestRefund(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error) {
	return &domain.LedgerTransaction{ID: txnID, Status: domain.StatusRefundPending}, nil
}

func (stubTransactionService) RequestCashDepositRefund(ctx context.Context, txnID, actorID string) (*domain.LedgerTransaction, error) {
	return &domain.LedgerTransaction{ID: txnID, Status: domain.StatusRefundPending}, nil
}

func (stubTransactionService) EnqueueProcessing(ctx context.Context, txnID string) error {
	return nil
}

type stubLedgerRepository struct{}

func (stubLedgerRepository) Totals(ctx context.Context, currency domain.Currency) (int64, int64, error) {
	return 0, 0, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
	updated     bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updated = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
