package app

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/adapter/charge"
	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/infrastructure/postgres"
	"github.com/iho/blazeledger/internal/usecase"
)

// recordingQueue collects enqueued ids instead of talking to a broker.
type recordingQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *recordingQueue) Enqueue(_ context.Context, txnID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, txnID)
	return nil
}

type ledgerEnv struct {
	t    *testing.T
	pool *pgxpool.Pool
	svc  *Services
}

// newLedgerEnv runs against the database in BLAZELEDGER_TEST_DATABASE_URL
// and an in-memory Redis.
func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("BLAZELEDGER_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("BLAZELEDGER_TEST_DATABASE_URL not set")
	}

	if err := postgres.NewMigrator(dbURL, "../infrastructure/postgres/migrations", zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 10, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE audit_receipts, outbox_events, ledger_transactions, funding_instruments, account_balances, accounts CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Environment:         config.EnvTest,
		TxnLockAttempts:     1,
		AccountLockAttempts: 5,
		LockRetryDelay:      5 * time.Millisecond,
		ProcessingDeadline:  time.Minute,
		StatusCacheTTL:      time.Minute,
	}

	svc := NewServices(cfg, Deps{
		Pool:    pool,
		Redis:   rdb,
		Queue:   &recordingQueue{},
		Charges: charge.NewStaticGateway(),
		Logger:  zerolog.Nop(),
	})

	return &ledgerEnv{t: t, pool: pool, svc: svc}
}

func (e *ledgerEnv) account(ctx context.Context, input usecase.CreateAccountInput) *domain.Account {
	e.t.Helper()
	acc, err := e.svc.Accounts.CreateAccount(ctx, input)
	if err != nil {
		e.t.Fatalf("create %s account: %v", input.Kind, err)
	}
	return acc
}

func (e *ledgerEnv) instrument(ctx context.Context, id, ownerID string) {
	e.t.Helper()
	_, err := e.pool.Exec(ctx,
		`INSERT INTO funding_instruments (id, owner_id, customer_ref, status) VALUES ($1, $2, $3, 'accepted')`,
		id, ownerID, "cus_"+id)
	if err != nil {
		e.t.Fatalf("insert funding instrument: %v", err)
	}
}

// settle delivers txnID until the processor no longer asks for a retry.
func (e *ledgerEnv) settle(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	for attempt := 0; attempt < 50; attempt++ {
		err := e.svc.Processor.Process(ctx, txnID)
		if err == nil || !usecase.IsRetryable(err) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	return e.svc.Transactions.GetTransaction(ctx, txnID)
}

func (e *ledgerEnv) process(ctx context.Context, txnID string) *domain.LedgerTransaction {
	e.t.Helper()
	txn, err := e.settle(ctx, txnID)
	if err != nil {
		e.t.Fatalf("get transaction: %v", err)
	}
	return txn
}

func TestCardDepositAndPurchaseKeepLedgerConsistent(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	profile := env.account(ctx, usecase.CreateAccountInput{Kind: domain.AccountKindProfile, Name: "Payer"})
	merchant := env.account(ctx, usecase.CreateAccountInput{Kind: domain.AccountKindMerchant, Name: "Shop", FeePercentage: "0.05"})
	env.instrument(ctx, "fi-1", profile.ID)

	deposit, err := env.svc.Transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		Type:                domain.TransactionTypeDeposit,
		Currency:            "USD",
		Amount:              10000,
		RecipientID:         profile.ID,
		FundingInstrumentID: "fi-1",
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if got := env.process(ctx, deposit.ID); got.Status != domain.StatusCompleted {
		t.Fatalf("expected deposit completed, got %s", got.Status)
	}

	purchase, err := env.svc.Transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		Type:        domain.TransactionTypePurchase,
		Currency:    "USD",
		Amount:      1000,
		TipAmount:   100,
		SenderID:    profile.ID,
		RecipientID: merchant.ID,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	settled := env.process(ctx, purchase.ID)
	if settled.Status != domain.StatusCompleted {
		t.Fatalf("expected purchase completed, got %s", settled.Status)
	}
	if settled.Fees != 55 || settled.TotalAmount != 945 {
		t.Fatalf("expected fees 55 and total 945, got %d and %d", settled.Fees, settled.TotalAmount)
	}

	payer, _ := env.svc.Accounts.GetAccount(ctx, profile.ID)
	shop, _ := env.svc.Accounts.GetAccount(ctx, merchant.ID)
	if got := payer.Balance.Get(domain.USD); got != 8900 {
		t.Fatalf("expected payer balance 8900, got %d", got)
	}
	if got := shop.Balance.Get(domain.USD); got != 1045 {
		t.Fatalf("expected merchant balance 1045, got %d", got)
	}
	if got := shop.FeeAccrual.Get(domain.USD); got != 55 {
		t.Fatalf("expected fee accrual 55, got %d", got)
	}

	receipts, err := env.svc.Receipts.ListByAccount(ctx, profile.ID, 10, 0)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts for payer, got %d", len(receipts))
	}

	report, err := env.svc.Ledger.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("expected consistent ledger, got %v (%+v)", err, report)
	}
}

func TestConcurrentPurchasesNeverOverdraw(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	profile := env.account(ctx, usecase.CreateAccountInput{Kind: domain.AccountKindProfile, Name: "Payer"})
	merchant := env.account(ctx, usecase.CreateAccountInput{Kind: domain.AccountKindMerchant, Name: "Shop", FeePercentage: "0"})
	env.instrument(ctx, "fi-2", profile.ID)

	deposit, err := env.svc.Transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
		Type:                domain.TransactionTypeDeposit,
		Currency:            "USD",
		Amount:              10000,
		RecipientID:         profile.ID,
		FundingInstrumentID: "fi-2",
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	env.process(ctx, deposit.ID)

	const purchases = 20
	ids := make([]string, purchases)
	for i := range ids {
		txn, err := env.svc.Transactions.CreateTransaction(ctx, usecase.CreateTransactionInput{
			Type:        domain.TransactionTypePurchase,
			Currency:    "USD",
			Amount:      1000,
			SenderID:    profile.ID,
			RecipientID: merchant.ID,
		})
		if err != nil {
			t.Fatalf("create purchase: %v", err)
		}
		ids[i] = txn.ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[domain.TransactionStatus]int{}
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			txn, err := env.settle(ctx, id)
			if err != nil {
				t.Errorf("settle %s: %v", id, err)
				return
			}
			mu.Lock()
			statuses[txn.Status]++
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if statuses[domain.StatusCompleted] != 10 || statuses[domain.StatusCancelled] != 10 {
		t.Fatalf("expected 10 completed and 10 cancelled, got %v", statuses)
	}

	payer, _ := env.svc.Accounts.GetAccount(ctx, profile.ID)
	if got := payer.Balance.Get(domain.USD); got != 0 {
		t.Fatalf("expected payer drained to 0, got %d", got)
	}

	if _, err := env.svc.Ledger.CheckConsistency(ctx); err != nil {
		t.Fatalf("expected consistent ledger, got %v", err)
	}
}
