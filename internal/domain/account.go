package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes the three account families.
type AccountKind string

const (
	AccountKindProfile  AccountKind = "profile"
	AccountKindMerchant AccountKind = "merchant"
	AccountKindStaff    AccountKind = "staff"
)

// Capability is a bitset of privileges granted to an account.
type Capability uint32

const (
	// CapabilityCashDeposit allows an account to originate cash deposits
	// without a funding instrument.
	CapabilityCashDeposit Capability = 1 << iota
	// CapabilityRefundCashDeposit allows an account to reverse cash deposits.
	CapabilityRefundCashDeposit
)

var capabilityNames = []struct {
	name string
	bit  Capability
}{
	{"cash_deposit", CapabilityCashDeposit},
	{"refund_cash_deposit", CapabilityRefundCashDeposit},
}

// ParseCapabilities turns capability names into a bitset.
func ParseCapabilities(names []string) (Capability, error) {
	var c Capability
	for _, n := range names {
		found := false
		for _, cn := range capabilityNames {
			if cn.name == n {
				c |= cn.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, n)
		}
	}
	return c, nil
}

// Names lists the granted capabilities.
func (c Capability) Names() []string {
	names := []string{}
	for _, cn := range capabilityNames {
		if c&cn.bit == cn.bit {
			names = append(names, cn.name)
		}
	}
	return names
}

// Balances holds an integer minor-unit amount per currency.
type Balances map[Currency]int64

// Get returns the amount held in currency c.
func (b Balances) Get(c Currency) int64 {
	if b == nil {
		return 0
	}
	return b[c]
}

// Account represents a party that can hold money on the platform.
type Account struct {
	ID            string
	Kind          AccountKind
	Name          string
	Email         string
	Capabilities  Capability
	MerchantID    string
	FeePercentage decimal.Decimal
	Active        bool
	Balance       Balances
	FeeAccrual    Balances
	TipBalance    Balances
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCapability reports whether all bits of c are granted.
func (a *Account) HasCapability(c Capability) bool {
	return a.Capabilities&c == c
}

// IsMerchant reports whether the account accrues fees.
func (a *Account) IsMerchant() bool {
	return a.Kind == AccountKindMerchant
}

// CanActFor reports whether a staff account may act on behalf of merchantID.
func (a *Account) CanActFor(merchantID string) bool {
	return a.Kind == AccountKindStaff && a.Active && a.MerchantID != "" && a.MerchantID == merchantID
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(c Currency, amount int64) error {
	if a.Balance.Get(c) < amount {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit removes amount from the balance in currency c.
func (a *Account) ApplyDebit(c Currency, amount int64) {
	a.ensure()
	a.Balance[c] -= amount
}

// ApplyCredit adds amount to the balance in currency c.
func (a *Account) ApplyCredit(c Currency, amount int64) {
	a.ensure()
	a.Balance[c] += amount
}

// AccrueFees records platform fees withheld from a merchant credit.
func (a *Account) AccrueFees(c Currency, fees int64) {
	a.ensure()
	a.FeeAccrual[c] += fees
}

// ReverseFees undoes a previous AccrueFees.
func (a *Account) ReverseFees(c Currency, fees int64) {
	a.ensure()
	a.FeeAccrual[c] -= fees
}

// CreditTip settles a gratuity on a staff account.
func (a *Account) CreditTip(c Currency, tip int64) {
	a.ensure()
	a.TipBalance[c] += tip
}

// DebitTip claws back a settled gratuity.
func (a *Account) DebitTip(c Currency, tip int64) {
	a.ensure()
	a.TipBalance[c] -= tip
}

func (a *Account) ensure() {
	if a.Balance == nil {
		a.Balance = Balances{}
	}
	if a.FeeAccrual == nil {
		a.FeeAccrual = Balances{}
	}
	if a.TipBalance == nil {
		a.TipBalance = Balances{}
	}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Balance = cloneBalances(a.Balance)
	cp.FeeAccrual = cloneBalances(a.FeeAccrual)
	cp.TipBalance = cloneBalances(a.TipBalance)
	return &cp
}

func cloneBalances(b Balances) Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
