package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLedgerTransaction_Validate(t *testing.T) {
	base := func() *LedgerTransaction {
		return &LedgerTransaction{
			Type:        TransactionTypeTransfer,
			Currency:    USD,
			Amount:      100,
			SenderID:    "a",
			RecipientID: "b",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*LedgerTransaction)
		wantErr error
	}{
		{name: "valid transfer", mutate: func(*LedgerTransaction) {}},
		{name: "zero amount allowed", mutate: func(tx *LedgerTransaction) { tx.Amount = 0 }},
		{name: "negative amount", mutate: func(tx *LedgerTransaction) { tx.Amount = -1 }, wantErr: ErrNegativeAmount},
		{name: "negative tip", mutate: func(tx *LedgerTransaction) { tx.TipAmount = -1 }, wantErr: ErrNegativeAmount},
		{name: "self transfer", mutate: func(tx *LedgerTransaction) { tx.RecipientID = "a" }, wantErr: ErrSameAccount},
		{name: "missing sender", mutate: func(tx *LedgerTransaction) { tx.SenderID = "" }, wantErr: ErrMissingSender},
		{name: "missing recipient", mutate: func(tx *LedgerTransaction) { tx.RecipientID = "" }, wantErr: ErrMissingRecipient},
		{name: "bad currency", mutate: func(tx *LedgerTransaction) { tx.Currency = "EUR" }, wantErr: ErrInvalidCurrency},
		{name: "bad type", mutate: func(tx *LedgerTransaction) { tx.Type = "gift" }, wantErr: ErrInvalidTransferType},
		{
			name: "deposit without source",
			mutate: func(tx *LedgerTransaction) {
				tx.Type = TransactionTypeDeposit
				tx.SenderID = ""
			},
			wantErr: ErrMissingFundingSource,
		},
		{
			name: "card deposit",
			mutate: func(tx *LedgerTransaction) {
				tx.Type = TransactionTypeDeposit
				tx.SenderID = ""
				tx.FundingInstrumentID = "fi"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base()
			tt.mutate(tx)

			err := tx.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLedgerTransaction_Claim(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	deadline := now.Add(10 * time.Minute)

	t.Run("pending becomes processing", func(t *testing.T) {
		tx := &LedgerTransaction{Status: StatusPending}
		fresh, err := tx.Claim(now, deadline)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !fresh || tx.Status != StatusProcessing {
			t.Fatalf("expected fresh processing claim, got fresh=%v status=%s", fresh, tx.Status)
		}
		if tx.ProcessingDeadline == nil || !tx.ProcessingDeadline.Equal(deadline) {
			t.Fatalf("expected deadline %v, got %v", deadline, tx.ProcessingDeadline)
		}
	})

	t.Run("refund pending becomes refunding", func(t *testing.T) {
		tx := &LedgerTransaction{Status: StatusRefundPending}
		fresh, err := tx.Claim(now, deadline)
		if err != nil || !fresh || tx.Status != StatusRefunding {
			t.Fatalf("expected fresh refunding claim, got fresh=%v status=%s err=%v", fresh, tx.Status, err)
		}
	})

	t.Run("live lease blocks reclaim", func(t *testing.T) {
		live := now.Add(time.Minute)
		tx := &LedgerTransaction{Status: StatusProcessing, ProcessingDeadline: &live}
		if _, err := tx.Claim(now, deadline); !errors.Is(err, ErrNotClaimable) {
			t.Fatalf("expected ErrNotClaimable, got %v", err)
		}
	})

	t.Run("expired lease is reclaimed without being fresh", func(t *testing.T) {
		expired := now.Add(-time.Second)
		tx := &LedgerTransaction{Status: StatusRefunding, ProcessingDeadline: &expired}
		fresh, err := tx.Claim(now, deadline)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fresh || tx.Status != StatusRefunding {
			t.Fatalf("expected stale reclaim, got fresh=%v status=%s", fresh, tx.Status)
		}
	})

	t.Run("released lease is reclaimed", func(t *testing.T) {
		tx := &LedgerTransaction{Status: StatusProcessing}
		if _, err := tx.Claim(now, deadline); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	for _, status := range []TransactionStatus{StatusCompleted, StatusCancelled, StatusRefunded} {
		t.Run("terminal "+string(status), func(t *testing.T) {
			tx := &LedgerTransaction{Status: status}
			if _, err := tx.Claim(now, deadline); !errors.Is(err, ErrNotClaimable) {
				t.Fatalf("expected ErrNotClaimable, got %v", err)
			}
		})
	}
}

func TestLedgerTransaction_Transitions(t *testing.T) {
	allowed := map[TransactionStatus][]TransactionStatus{
		StatusPending:       {StatusProcessing, StatusCancelled},
		StatusProcessing:    {StatusCompleted, StatusCancelled},
		StatusCompleted:     {StatusRefundPending},
		StatusRefundPending: {StatusRefunding},
		StatusRefunding:     {StatusRefunded, StatusCancelled},
	}
	all := []TransactionStatus{
		StatusPending, StatusProcessing, StatusCompleted, StatusCancelled,
		StatusRefundPending, StatusRefunding, StatusRefunded,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}

			tx := &LedgerTransaction{Status: from}
			if got := tx.CanTransition(to); got != want {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestLedgerTransaction_Cancel(t *testing.T) {
	now := time.Now().UTC()

	for _, status := range []TransactionStatus{StatusPending, StatusProcessing, StatusRefunding} {
		tx := &LedgerTransaction{Status: status, ProcessingDeadline: &now}
		if err := tx.Cancel(now); err != nil {
			t.Errorf("%s: unexpected error: %v", status, err)
		}
		if tx.Status != StatusCancelled || tx.ProcessingDeadline != nil {
			t.Errorf("%s: expected cancelled with no lease, got %s", status, tx.Status)
		}
	}

	for _, status := range []TransactionStatus{StatusCompleted, StatusCancelled, StatusRefundPending, StatusRefunded} {
		tx := &LedgerTransaction{Status: status}
		if err := tx.Cancel(now); !errors.Is(err, ErrInvalidCancel) {
			t.Errorf("%s: expected ErrInvalidCancel, got %v", status, err)
		}
		if tx.Status != status {
			t.Errorf("%s: status must not change on rejected cancel", status)
		}
	}
}

func TestLedgerTransaction_Finish(t *testing.T) {
	now := time.Now().UTC()

	tx := &LedgerTransaction{Status: StatusProcessing}
	if err := tx.Finish(now); err != nil || tx.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s %v", tx.Status, err)
	}

	tx = &LedgerTransaction{Status: StatusRefunding}
	if err := tx.Finish(now); err != nil || tx.Status != StatusRefunded {
		t.Fatalf("expected refunded, got %s %v", tx.Status, err)
	}

	tx = &LedgerTransaction{Status: StatusPending}
	if err := tx.Finish(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestLedgerTransaction_Price(t *testing.T) {
	purchase := &LedgerTransaction{Type: TransactionTypePurchase, Amount: 2000}
	purchase.Price(decimal.RequireFromString("0.02"))
	if purchase.Fees != 40 || purchase.TotalAmount != 1960 {
		t.Fatalf("expected fees 40 total 1960, got %d %d", purchase.Fees, purchase.TotalAmount)
	}
	if purchase.MerchantCredit() != 1960 {
		t.Fatalf("expected merchant credit 1960, got %d", purchase.MerchantCredit())
	}

	transfer := &LedgerTransaction{Type: TransactionTypeTransfer, Amount: 2000}
	transfer.Price(decimal.RequireFromString("0.02"))
	if transfer.Fees != 0 || transfer.TotalAmount != 2000 {
		t.Fatalf("transfers carry no fees, got %d %d", transfer.Fees, transfer.TotalAmount)
	}
}

func TestLedgerTransaction_Verify(t *testing.T) {
	now := time.Now().UTC()

	tx := &LedgerTransaction{Type: TransactionTypePurchase, Status: StatusCompleted}
	if err := tx.Verify("staff", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Verify("other", now); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if tx.VerifierID != "staff" || tx.VerifiedAt == nil {
		t.Fatalf("expected verifier recorded, got %q", tx.VerifierID)
	}

	pending := &LedgerTransaction{Type: TransactionTypePurchase, Status: StatusPending}
	if err := pending.Verify("staff", now); !errors.Is(err, ErrNotVerifiable) {
		t.Fatalf("expected ErrNotVerifiable, got %v", err)
	}

	transfer := &LedgerTransaction{Type: TransactionTypeTransfer, Status: StatusCompleted}
	if err := transfer.Verify("staff", now); !errors.Is(err, ErrNotVerifiable) {
		t.Fatalf("expected ErrNotVerifiable, got %v", err)
	}
}

func TestLedgerTransaction_RequestRefund(t *testing.T) {
	now := time.Now().UTC()

	purchase := &LedgerTransaction{Type: TransactionTypePurchase, Status: StatusCompleted}
	if err := purchase.RequestRefund(now); err != nil || purchase.Status != StatusRefundPending {
		t.Fatalf("expected refund pending, got %s %v", purchase.Status, err)
	}

	cash := &LedgerTransaction{Type: TransactionTypeDeposit, Status: StatusCompleted, SenderID: "teller"}
	if err := cash.RequestRefund(now); err != nil {
		t.Fatalf("cash deposits are refundable: %v", err)
	}

	card := &LedgerTransaction{Type: TransactionTypeDeposit, Status: StatusCompleted, FundingInstrumentID: "fi"}
	if err := card.RequestRefund(now); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable for card deposit, got %v", err)
	}

	transfer := &LedgerTransaction{Type: TransactionTypeTransfer, Status: StatusCompleted}
	if err := transfer.RequestRefund(now); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable for transfer, got %v", err)
	}

	cancelled := &LedgerTransaction{Type: TransactionTypePurchase, Status: StatusCancelled}
	if err := cancelled.RequestRefund(now); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable, got %v", err)
	}
}

func TestLedgerTransaction_ReceiptOwners(t *testing.T) {
	card := &LedgerTransaction{Type: TransactionTypeDeposit, FundingInstrumentID: "fi", RecipientID: "r"}
	if got := card.ReceiptOwners(); len(got) != 1 || got[0] != "r" {
		t.Fatalf("card deposit: expected [r], got %v", got)
	}

	purchase := &LedgerTransaction{Type: TransactionTypePurchase, SenderID: "s", RecipientID: "m", VerifierID: "v", Status: StatusCompleted}
	if got := purchase.ReceiptOwners(); len(got) != 2 {
		t.Fatalf("completed purchase: expected sender and merchant, got %v", got)
	}

	purchase.Status = StatusRefunded
	if got := purchase.ReceiptOwners(); len(got) != 3 || got[2] != "v" {
		t.Fatalf("refunded verified purchase: expected verifier included, got %v", got)
	}
}

func TestIsCancellation(t *testing.T) {
	if !IsCancellation(ErrSameAccount) {
		t.Error("self transfer must cancel")
	}
	if !IsCancellation(ErrChargeDeclined) {
		t.Error("declines must cancel")
	}
	if IsCancellation(ErrChargeUnavailable) {
		t.Error("connection failures must not cancel")
	}
	if IsCancellation(errors.New("boom")) {
		t.Error("unknown errors are not validation failures")
	}
}
