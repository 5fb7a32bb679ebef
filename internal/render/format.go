// Package render turns priced quotes into the documents sent to couples:
// the HTML print view and its PDF rendering.
package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEUR formats v the Italian way, e.g. "€ 1.342,00".
func FormatEUR(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "€ " + sign + b.String() + "," + frac
}
