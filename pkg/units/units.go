// pkg/units/units.go
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed-point precision of both ETH and SRC.
const TokenDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

// ToTokenUnits converts a human amount to 18-decimal integer units, flooring any
// precision beyond the 18th decimal.
func ToTokenUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(TokenDecimals).Floor().BigInt()
}

// FromTokenUnits converts integer units back to a human amount.
func FromTokenUnits(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -TokenDecimals)
}

// FormatToken renders token units with two decimals, the precision balances are displayed at.
func FormatToken(units *big.Int) string {
	return FromTokenUnits(units).StringFixed(2)
}

// FormatEther renders wei with a fixed number of decimals using integer math only.
// The fraction is truncated, never rounded up.
func FormatEther(wei *big.Int, decimals int) string {
	if wei == nil {
		wei = new(big.Int)
	}

	integer := new(big.Int).Quo(wei, weiPerEther)
	fraction := new(big.Int).Rem(wei, weiPerEther)

	if decimals <= 0 {
		return integer.String()
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	fractionScaled := new(big.Int).Quo(new(big.Int).Mul(fraction, scale), weiPerEther)

	frac := fractionScaled.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	return fmt.Sprintf("%s.%s", integer.String(), frac)
}

// ParseUnits converts a decimal string ("1.25", "3") to integer units with the
// given number of decimals. Extra fractional digits are truncated.
func ParseUnits(amountStr string, decimals int) (*big.Int, error) {
	amountStr = strings.TrimSpace(amountStr)
	if amountStr == "" {
		return nil, fmt.Errorf("empty amount")
	}

	parts := strings.Split(amountStr, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal format")
	}

	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}

	decimalPart := ""
	if len(parts) == 2 {
		decimalPart = parts[1]
	}

	// Pad or truncate decimal part to match decimals
	if len(decimalPart) > decimals {
		decimalPart = decimalPart[:decimals]
	} else {
		decimalPart = decimalPart + strings.Repeat("0", decimals-len(decimalPart))
	}

	combined := wholePart + decimalPart
	for _, r := range combined {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("invalid amount format: %q", amountStr)
		}
	}

	amount, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse amount")
	}

	return amount, nil
}

// ParseEther converts an ETH amount string to wei.
func ParseEther(amountStr string) (*big.Int, error) {
	return ParseUnits(amountStr, TokenDecimals)
}

