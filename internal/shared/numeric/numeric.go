// Package numeric parses the loosely formatted numbers providers send as strings.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseFloat strips thousands separators and a trailing percent sign and
// parses the remainder as a decimal. Empty input, NaN and infinities are
// rejected.
func ParseFloat(value string) (float64, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSuffix(raw, "%")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseFloatPtr is ParseFloat returning nil when the value is not a number.
func ParseFloatPtr(value string) *float64 {
	f, ok := ParseFloat(value)
	if !ok {
		return nil
	}
	return &f
}

// FloatOrZero parses value and falls back to 0.
func FloatOrZero(value string) float64 {
	f, _ := ParseFloat(value)
	return f
}
