package upi

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyGlyph prefixes amounts shown to the user.
const CurrencyGlyph = "₹"

// StripAmount removes surrounding whitespace and a leading currency glyph.
func StripAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencyGlyph)
	return strings.TrimSpace(s)
}

// ParseAmount parses s after StripAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(StripAmount(s))
}

// IsUsableAmount reports whether s is a positive number once the currency
// glyph and surrounding whitespace are stripped.
func IsUsableAmount(s string) bool {
	d, err := ParseAmount(s)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// DisplayAmount prefixes the stripped amount with the currency glyph.
func DisplayAmount(s string) string {
	return CurrencyGlyph + StripAmount(s)
}
