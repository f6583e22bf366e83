package quote

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RubleSign is appended to formatted amounts
const RubleSign = "₽"

var ruPrinter = message.NewPrinter(language.Russian)

// FormatRub renders whole rubles with Russian digit grouping, e.g. "932 400 ₽".
// Amounts are rounded half-up; negative amounts render as zero.
func FormatRub(v decimal.Decimal) string {
	if v.IsNegative() {
		v = decimal.Zero
	}
	return ruPrinter.Sprintf("%d", v.Round(0).IntPart()) + " " + RubleSign
}

// FormatNumber renders an integer with Russian digit grouping
func FormatNumber(n int) string {
	return ruPrinter.Sprintf("%d", n)
}

// FormatPercent renders a percent with a decimal comma when fractional, e.g. "12,5%"
func FormatPercent(pct decimal.Decimal) string {
	if pct.Equal(pct.Truncate(0)) {
		return ruPrinter.Sprintf("%d%%", pct.IntPart())
	}
	f, _ := pct.Round(1).Float64()
	return ruPrinter.Sprintf("%.1f%%", f)
}

// PluralMonths returns the Russian word for "month" agreeing with n
func PluralMonths(n int) string {
	return plural(n, "месяц", "месяца", "месяцев")
}

// PluralBranches returns the Russian word for "branch" agreeing with n
func PluralBranches(n int) string {
	return plural(n, "филиал", "филиала", "филиалов")
}

func plural(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return one
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return few
	default:
		return many
	}
}
