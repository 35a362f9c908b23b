package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBigInt converts a raw integer amount to a decimal string, considering the
// given number of decimals. The conversion is exact for any magnitude.
// Trailing fractional zeros are trimmed but at least one fractional digit is kept:
//
//	amount=1234500000000000000, decimals=18 => "1.2345"
//	amount=2000000000000000000, decimals=18 => "2.0"
//	amount=42, decimals=0 => "42.0"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0.0"
	}

	// NewFromBigInt copies the value, so the caller's big.Int is never mutated.
	formatted := decimal.NewFromBigInt(amount, -int32(decimals)).String()
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}
