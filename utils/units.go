package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a human-readable decimal amount into an integer amount with the given precision.
// Digits beyond the precision are truncated.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// ToDecimal converts a native integer amount into token units
func ToDecimal(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatUnits renders a native integer amount in token units
func FormatUnits(amount *big.Int, decimals uint8) string {
	return ToDecimal(amount, decimals).String()
}

// BasisPoints returns amount * bps / 10000, rounded down
func BasisPoints(amount *big.Int, bps uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Div(out, big.NewInt(10000))
}
