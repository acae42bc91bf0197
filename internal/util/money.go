package util

import (
	"fmt"
	"strings"
)

// FormatUSD renders a dollar amount with thousands separators and two
// decimal places, e.g. 1234567.5 -> "1,234,567.50".
func FormatUSD(value float64) string {
	raw := fmt.Sprintf("%.2f", value)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}
	whole, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + "." + frac
}
