// Package fundamental turns a data provider's raw key/value fundamentals into
// the scoring model's models.Fundamentals, deriving ratios the provider left
// out and ranking companies against their peers.
package fundamental

import (
	"math"

	"github.com/seenimoa/techlens/pkg/models"
)

// Raw is a provider's flat fundamentals map using Yahoo Finance key names
// (trailingPE, returnOnEquity, totalDebt, ...). Missing keys are unknown.
type Raw map[string]float64

// Get returns the value for key when it is present and finite.
func (r Raw) Get(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// first returns the first present key's value.
func (r Raw) first(keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := r.Get(k); ok {
			return v, true
		}
	}
	return 0, false
}

// Direct provider keys, in priority order, for fields copied as-is.
var directKeys = map[models.FundamentalField][]string{
	models.FieldPE:             {"trailingPE"},
	models.FieldPB:             {"priceToBook"},
	models.FieldPS:             {"priceToSalesTrailing12Months"},
	models.FieldDividendYield:  {"dividendYield"},
	models.FieldROE:            {"returnOnEquity"},
	models.FieldNetMargin:      {"profitMargins"},
	models.FieldROIC:           {"returnOnCapital"},
	models.FieldROA:            {"returnOnAssets"},
	models.FieldRevenueGrowth:  {"revenueGrowth"},
	models.FieldEarningsGrowth: {"earningsGrowth"},
	models.FieldPEG:            {"pegRatio", "trailingPegRatio"},
	models.FieldFreeCashFlow:   {"freeCashflow", "freeCashFlow"},
}

// MomentumWindow is the number of trading days in 52 weeks.
const MomentumWindow = 252

// Normalize maps raw onto models.Fundamentals. Fields that are neither
// reported nor derivable stay absent; nothing is defaulted. closes, oldest
// first, backs the 52-week momentum when the provider omits it.
func Normalize(raw Raw, closes []float64) models.Fundamentals {
	out := make(models.Fundamentals, len(directKeys)+4)

	for field, keys := range directKeys {
		if v, ok := raw.first(keys...); ok {
			out[field] = v
		}
	}

	if v, ok := DebtToEquity(raw); ok {
		out[models.FieldDebtToEquity] = v
	}
	if v, ok := CurrentRatio(raw); ok {
		out[models.FieldCurrentRatio] = v
	}
	if v, ok := InterestCoverage(raw); ok {
		out[models.FieldInterestCoverage] = v
	}
	if v, ok := Momentum52w(raw, closes); ok {
		out[models.FieldMomentum52w] = v
	}
	return out
}
