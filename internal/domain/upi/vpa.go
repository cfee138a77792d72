package upi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// vpaPattern matches a virtual payment address: handle@provider.
var vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z][a-zA-Z0-9]{1,63}$`)

func ValidVPA(s string) bool {
	return vpaPattern.MatchString(s)
}

// ParseAmount reads a user-entered amount. Blank input yields an absent
// amount rather than an error.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}
