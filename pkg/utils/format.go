// Package utils provides common utility functions for techlens.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatUSD formats an amount with thousands separators, e.g. "$1,234.57".
func FormatUSD(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "N/A"
	}
	if amount < 0 {
		return "-$" + humanize.CommafWithDigits(math.Abs(amount), 2)
	}
	return "$" + humanize.CommafWithDigits(amount, 2)
}

// FormatMarketCap formats a raw market capitalisation compactly,
// e.g. 3.2e12 → "$3.20T", 4.5e9 → "$4.50B".
func FormatMarketCap(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "N/A"
	}
	switch {
	case amount >= 1e12:
		return fmt.Sprintf("$%.2fT", amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("$%.2fB", amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("$%.2fM", amount/1e6)
	default:
		return FormatUSD(amount)
	}
}

// FormatPct formats a decimal ratio as a percentage: 0.1234 → "12.34%".
func FormatPct(ratio float64) string {
	switch {
	case math.IsNaN(ratio):
		return "N/A"
	case math.IsInf(ratio, 1):
		return "∞"
	case math.IsInf(ratio, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatRatio formats a plain ratio with two decimals, rendering infinities.
func FormatRatio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "N/A"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatVolume formats a share count with thousands separators.
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// FormatDays renders a day count, with negative values meaning "not yet".
func FormatDays(days int) string {
	if days < 0 {
		return "not recovered"
	}
	return fmt.Sprintf("%d %s", days, pluralize(days, "day", "days"))
}

// Bullets renders items as a dashed list, one per line.
func Bullets(items []string) string {
	if len(items) == 0 {
		return "- None\n"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
