package fundamental

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/techlens/pkg/models"
)

// PeerEntry is one company's position in a peer ranking.
type PeerEntry struct {
	Ticker    string                  `json:"ticker" yaml:"ticker"`
	Composite float64                 `json:"composite" yaml:"composite"`
	Signal    models.InvestmentSignal `json:"signal" yaml:"signal"`
	Rank      int                     `json:"rank" yaml:"rank"` // 1 = best
	Summary   string                  `json:"summary" yaml:"summary"`
}

// RankPeers orders evaluations by composite score, best first. Ties keep
// their input order.
func RankPeers(evals []models.Evaluation) []PeerEntry {
	out := make([]PeerEntry, len(evals))
	for i, e := range evals {
		out[i] = PeerEntry{Ticker: e.Ticker, Composite: e.Scores.Composite, Signal: e.Signal}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Composite > out[j].Composite
	})
	for i := range out {
		out[i].Rank = i + 1
		out[i].Summary = buildPeerSummary(out[i].Ticker, out[i].Rank, len(out))
	}
	return out
}

// RelativeMetric compares one of a company's fundamentals with its peers.
type RelativeMetric struct {
	Field       models.FundamentalField `json:"field" yaml:"field"`
	TargetValue float64                 `json:"target_value" yaml:"target_value"`
	PeerAvg     float64                 `json:"peer_avg" yaml:"peer_avg"`
	PeerMedian  float64                 `json:"peer_median" yaml:"peer_median"`
	Percentile  float64                 `json:"percentile" yaml:"percentile"` // share of peers the target beats, 0-100
}

// relativeFields lists the compared fields and whether lower is better.
var relativeFields = []struct {
	field       models.FundamentalField
	lowerBetter bool
}{
	{models.FieldPE, true},
	{models.FieldPB, true},
	{models.FieldPS, true},
	{models.FieldROE, false},
	{models.FieldNetMargin, false},
	{models.FieldRevenueGrowth, false},
	{models.FieldDebtToEquity, true},
	{models.FieldDividendYield, false},
}

// RelativeMetrics compares target with peers on valuation, profitability,
// growth and leverage. Fields the target lacks, or no peer reports, are skipped.
func RelativeMetrics(target models.Fundamentals, peers []models.Fundamentals) []RelativeMetric {
	var results []RelativeMetric

	for _, rf := range relativeFields {
		tv, ok := target.Get(rf.field)
		if !ok {
			continue
		}

		var vals []float64
		for _, p := range peers {
			if v, ok := p.Get(rf.field); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}

		beaten := 0
		for _, v := range vals {
			if (rf.lowerBetter && v > tv) || (!rf.lowerBetter && v < tv) {
				beaten++
			}
		}

		results = append(results, RelativeMetric{
			Field:       rf.field,
			TargetValue: tv,
			PeerAvg:     stat.Mean(vals, nil),
			PeerMedian:  medianFloat(vals),
			Percentile:  float64(beaten) / float64(len(vals)) * 100,
		})
	}

	return results
}

// --- helpers ---

func buildPeerSummary(ticker string, rank, total int) string {
	pctile := (1 - float64(rank-1)/float64(total)) * 100
	switch {
	case pctile >= 80:
		return fmt.Sprintf("%s ranks in the top quintile of %d peers", ticker, total)
	case pctile >= 60:
		return ticker + " ranks above average among peers"
	case pctile >= 40:
		return ticker + " ranks average among peers"
	case pctile >= 20:
		return ticker + " ranks below average among peers"
	default:
		return fmt.Sprintf("%s ranks in the bottom quintile of %d peers", ticker, total)
	}
}

// medianFloat averages the middle pair for even-length input.
func medianFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
