package entities

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// humanPrecision matches the 8 fractional digits quotes are reported with.
const humanPrecision = 8

// FormatAmount converts base units to a human-readable decimal string.
func FormatAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(humanPrecision)
}

// ParseAmount converts a human-readable amount ("1.5") to base units.
func ParseAmount(value string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, NewValidationError("parse amount", "invalid amount format: %s", value)
	}
	if d.Sign() <= 0 {
		return nil, NewValidationError("parse amount", "amount must be greater than 0, got %s", value)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, NewValidationError("parse amount", "amount %s has more than %d decimals", value, decimals)
	}
	return scaled.BigInt(), nil
}

// ParseRawAmount parses a positive base-10 integer in base units.
func ParseRawAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, NewValidationError("parse amount", "amountIn must be a positive integer, got %q", value)
	}
	return amount, nil
}

// ParseSlippage accepts a fraction in [0, 1], e.g. "0.005" for 0.5%.
func ParseSlippage(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, NewValidationError("parse slippage", "invalid slippage format: %s", value)
	}
	if err := ValidateSlippage(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func ValidateSlippage(slippage decimal.Decimal) error {
	if slippage.LessThan(decimal.Zero) || slippage.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("slippage", "slippage must be between 0 and 1, got %s", slippage.String())
	}
	return nil
}

// MinAmountOut is floor(quoteAmount * (1 - slippage)).
func MinAmountOut(quoteAmount *big.Int, slippage decimal.Decimal) (*big.Int, error) {
	if err := ValidateSlippage(slippage); err != nil {
		return nil, err
	}
	if quoteAmount == nil || quoteAmount.Sign() < 0 {
		return nil, NewValidationError("min amount out", "quote amount must be non-negative")
	}
	keep := decimal.NewFromInt(1).Sub(slippage)
	return decimal.NewFromBigInt(quoteAmount, 0).Mul(keep).Floor().BigInt(), nil
}
