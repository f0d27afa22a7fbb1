package utils

import (
	"strings"
)

// Index tickers accepted as market benchmarks, keyed by common aliases.
var indexTickers = map[string]string{
	"SPX":     "^GSPC",
	"S&P500":  "^GSPC",
	"S&P 500": "^GSPC",
	"SP500":   "^GSPC",
	"^GSPC":   "^GSPC",
	"NDX":     "^NDX",
	"NASDAQ":  "^IXIC",
	"^IXIC":   "^IXIC",
	"^NDX":    "^NDX",
	"DOW":     "^DJI",
	"DJIA":    "^DJI",
	"^DJI":    "^DJI",
}

// Exchange suffixes stripped before a ticker is used as a lookup key.
var exchangeSuffixes = []string{".NS", ".BO"}

// NormalizeTicker canonicalises user or provider input to the form used for
// lookups: trimmed, uppercased, "$" prefix and exchange suffix removed.
// Index aliases resolve to their Yahoo symbol.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if idx, ok := indexTickers[ticker]; ok {
		return idx
	}

	for _, suffix := range exchangeSuffixes {
		ticker = strings.TrimSuffix(ticker, suffix)
	}
	return strings.TrimSpace(ticker)
}

// IsIndex reports whether ticker refers to a market index.
func IsIndex(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	return strings.HasPrefix(ticker, "^")
}

// NormalizeTickers normalises and de-duplicates a list, keeping first-seen order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		n := NormalizeTicker(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
