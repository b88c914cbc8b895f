package domain

import "github.com/shopspring/decimal"

// CalculateFees returns the platform fee for a purchase and the net
// total_amount the merchant is reported as receiving.
//
//	fees  = floor((amount + tip) * pct)
//	total = amount - fees
func CalculateFees(amount, tip int64, pct decimal.Decimal) (fees, total int64) {
	gross := decimal.NewFromInt(amount + tip)
	fees = gross.Mul(pct).Floor().IntPart()
	return fees, amount - fees
}

// ValidateFeePercentage checks that pct is a fraction in [0, 1].
func ValidateFeePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidFeePercent
	}
	return nil
}

// ParseFeePercentage parses a decimal fraction such as "0.02".
func ParseFeePercentage(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidFeePercent
	}
	if err := ValidateFeePercentage(pct); err != nil {
		return decimal.Zero, err
	}
	return pct, nil
}
