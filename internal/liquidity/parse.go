package liquidity

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount extracts a goal amount from free text such as "€5.000,00" or
// "$10,000". When both separators appear, the later one is the decimal
// separator. A lone comma is a thousands separator only when more than one
// group exists and exactly three digits follow the last comma. Text that
// does not reduce to a valid non-negative number yields zero. Digits from any
// script ("٥٠٠٠") count as their ASCII value.
func ParseAmount(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == ',' || r == '.':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if d, ok := digitValue(r); ok {
				b.WriteByte('0' + d)
			}
		}
	}
	clean := b.String()

	comma := strings.LastIndexByte(clean, ',')
	dot := strings.LastIndexByte(clean, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		groups := strings.Split(clean, ",")
		if len(groups) > 1 && len(groups[len(groups)-1]) == 3 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	}

	if !strings.ContainsAny(clean, "0123456789") || strings.Count(clean, ".") > 1 {
		return decimal.Zero
	}
	if strings.HasPrefix(clean, ".") {
		clean = "0" + clean
	}
	clean = strings.TrimSuffix(clean, ".")
	v, err := decimal.NewFromString(clean)
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// digitValue returns the value of a decimal digit (category Nd). Unicode
// allocates every Nd run as consecutive blocks of ten starting at zero.
func digitValue(r rune) (byte, bool) {
	if r >= '0' && r <= '9' {
		return byte(r - '0'), true
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi && rg.Stride == 1 {
			return byte((r - lo) % 10), true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi && rg.Stride == 1 {
			return byte((r - lo) % 10), true
		}
	}
	return 0, false
}

// FormatAmount renders v with two decimals, dropping a ".00" suffix.
func FormatAmount(v decimal.Decimal) string {
	return strings.TrimSuffix(v.StringFixed(2), ".00")
}
