package app

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/blazeledger/internal/adapter/charge"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/usecase/mocks"
)

func TestNewChargeGatewaySelectsStaticWithoutURL(t *testing.T) {
	gw := NewChargeGateway(&config.Config{}, zerolog.Nop())
	if _, ok := gw.(*charge.StaticGateway); !ok {
		t.Fatalf("expected static gateway, got %T", gw)
	}
}

func TestNewChargeGatewaySelectsHTTPClient(t *testing.T) {
	gw := NewChargeGateway(&config.Config{ChargeAPIURL: "http://charges.local", ChargeTimeout: time.Second}, zerolog.Nop())
	if _, ok := gw.(*charge.Client); !ok {
		t.Fatalf("expected http client, got %T", gw)
	}
}

func TestNewServicesWiresEveryUseCase(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()

	cfg := &config.Config{
		Environment:         config.EnvTest,
		TxnLockAttempts:     1,
		AccountLockAttempts: 5,
		ProcessingDeadline:  time.Minute,
	}

	svc := NewServices(cfg, Deps{
		Redis:   client,
		Queue:   mocks.NewMockTaskQueue(gomock.NewController(t)),
		Charges: charge.NewStaticGateway(),
		Logger:  zerolog.Nop(),
	})

	if svc.Accounts == nil || svc.Transactions == nil || svc.Receipts == nil {
		t.Fatalf("account services not wired: %+v", svc)
	}
	if svc.Verification == nil || svc.Refunds == nil || svc.Processor == nil {
		t.Fatalf("processing services not wired: %+v", svc)
	}
	if svc.Sweeper == nil || svc.Ledger == nil || svc.Outbox == nil || svc.Idempotency == nil {
		t.Fatalf("support services not wired: %+v", svc)
	}
}

type recordingGauge struct {
	mu      sync.Mutex
	samples []int32
}

func (g *recordingGauge) SetDBConnections(n int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.samples = append(g.samples, n)
}

func (g *recordingGauge) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.samples)
}

func TestWatchPoolSamplesUntilCancelled(t *testing.T) {
	gauge := &recordingGauge{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		WatchPool(ctx, func() int32 { return 3 }, gauge, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for gauge.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("WatchPool did not stop after cancel")
	}

	if gauge.count() < 3 {
		t.Fatalf("expected at least 3 samples, got %d", gauge.count())
	}
	if gauge.samples[0] != 3 {
		t.Fatalf("expected sample 3, got %d", gauge.samples[0])
	}
}
