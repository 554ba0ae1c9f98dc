package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"financeiro/internal/shared/apperror"
)

var (
	ErrInvalidAmount = apperror.Validation("amount must be a positive value")
	ErrSubCent       = apperror.Validation("amount must have at most 2 decimal places")
)

// IsCents reports whether d has no precision below one cent. Trailing
// zeros do not count: 1.500 is whole cents.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ParseAmount converts a user-typed amount into a decimal.
//
// With a comma present the text is read pt-BR style: dots group thousands
// and the comma is the decimal separator ("1.250,99"). Without a comma the
// dot is the decimal separator and commas are dropped ("1,250.99").
//
// Empty or unparseable input yields zero instead of an error. Callers that
// must reject such input use ParsePositiveAmount.
func ParseAmount(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePositiveAmount parses like ParseAmount and rejects results <= 0
// and fractions of a cent.
func ParsePositiveAmount(text string) (decimal.Decimal, error) {
	d := ParseAmount(text)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if !IsCents(d) {
		return decimal.Zero, ErrSubCent
	}
	return d, nil
}

// Format renders an amount the way the app shows it to users: R$ 1.250,99
func Format(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(fixed) + 6)
	if d.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
