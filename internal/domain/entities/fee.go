package entities

import "github.com/shopspring/decimal"

// FeeTier is a Uniswap V3 pool fee in hundredths of a bip (1 = 0.0001%)
type FeeTier uint32

const (
	Fee100   FeeTier = 100   // 0.01%
	Fee500   FeeTier = 500   // 0.05%
	Fee3000  FeeTier = 3000  // 0.30%
	Fee10000 FeeTier = 10000 // 1.00%
)

// FeeTiers is the fixed enumeration order used everywhere a "first tier"
// decision is made.
var FeeTiers = []FeeTier{Fee100, Fee500, Fee3000, Fee10000}

func (f FeeTier) Valid() bool {
	for _, tier := range FeeTiers {
		if f == tier {
			return true
		}
	}
	return false
}

// Percent renders the tier as a percentage, e.g. 3000 -> "0.30%".
func (f FeeTier) Percent() string {
	return decimal.New(int64(f), -4).StringFixed(2) + "%"
}

func ParseFeeTier(v uint64) (FeeTier, error) {
	fee := FeeTier(v)
	if v > uint64(^uint32(0)) || !fee.Valid() {
		return 0, NewValidationError("parse fee", "invalid fee: %d, must be one of %v", v, FeeTiers)
	}
	return fee, nil
}
