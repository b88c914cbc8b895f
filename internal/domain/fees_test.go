package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateFees(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		tip       int64
		pct       string
		wantFees  int64
		wantTotal int64
	}{
		{name: "two percent", amount: 2000, tip: 0, pct: "0.02", wantFees: 40, wantTotal: 1960},
		{name: "tip included in fee base", amount: 2000, tip: 500, pct: "0.02", wantFees: 50, wantTotal: 1950},
		{name: "floor rounding", amount: 999, tip: 0, pct: "0.025", wantFees: 24, wantTotal: 975},
		{name: "zero percent", amount: 1234, tip: 10, pct: "0", wantFees: 0, wantTotal: 1234},
		{name: "zero amount", amount: 0, tip: 0, pct: "0.03", wantFees: 0, wantTotal: 0},
		{name: "exact decimal third", amount: 300, tip: 0, pct: "0.0333", wantFees: 9, wantTotal: 291},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, total := CalculateFees(tt.amount, tt.tip, decimal.RequireFromString(tt.pct))
			if fees != tt.wantFees {
				t.Errorf("fees: expected %d, got %d", tt.wantFees, fees)
			}
			if total != tt.wantTotal {
				t.Errorf("total: expected %d, got %d", tt.wantTotal, total)
			}
		})
	}
}

func TestParseFeePercentage(t *testing.T) {
	pct, err := ParseFeePercentage("0.02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pct.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("expected 0.02, got %s", pct)
	}

	if pct, err := ParseFeePercentage(""); err != nil || !pct.IsZero() {
		t.Fatalf("expected empty string to mean zero, got %s %v", pct, err)
	}

	for _, bad := range []string{"abc", "-0.1", "1.5"} {
		if _, err := ParseFeePercentage(bad); !errors.Is(err, ErrInvalidFeePercent) {
			t.Errorf("%q: expected ErrInvalidFeePercent, got %v", bad, err)
		}
	}
}
