package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code supported by the ledger.
type Currency string

const (
	USD Currency = "USD"
	JMD Currency = "JMD"
)

// SupportedCurrencies lists every currency an account keeps a balance in.
var SupportedCurrencies = []Currency{USD, JMD}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate returns ErrInvalidCurrency for anything other than USD or JMD.
func (c Currency) Validate() error {
	switch c {
	case USD, JMD:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, string(c))
	}
}
