package fivelens

import (
	"fmt"
	"math"

	"github.com/seenimoa/techlens/pkg/models"
)

// NeutralScore is the score used when nothing is known.
const NeutralScore = 50.0

// MissingPolicy decides how a lens treats an absent input.
type MissingPolicy int

const (
	// ExcludeMissing drops the input and its weight, renormalising the rest.
	ExcludeMissing MissingPolicy = iota
	// NeutralMissing scores the input NeutralScore at its full weight.
	NeutralMissing
)

func (p MissingPolicy) String() string {
	switch p {
	case ExcludeMissing:
		return "exclude"
	case NeutralMissing:
		return "neutral"
	default:
		return fmt.Sprintf("MissingPolicy(%d)", int(p))
	}
}

// Component is one weighted input of a lens.
type Component struct {
	Field  models.FundamentalField
	Weight float64
	Table  Table
}

// LensSpec defines how one lens combines its inputs.
type LensSpec struct {
	Lens       models.Lens
	Components []Component
	Missing    MissingPolicy
}

// Score evaluates the lens over in. The result is always in [0,100]; a lens
// with no usable input under ExcludeMissing scores NeutralScore.
func (l LensSpec) Score(in models.Fundamentals) models.LensBreakdown {
	out := models.LensBreakdown{
		Lens:       l.Lens,
		Components: make([]models.ComponentScore, len(l.Components)),
	}

	var total float64
	for i, c := range l.Components {
		cs := models.ComponentScore{Field: c.Field}
		if v, ok := in.Get(c.Field); ok {
			cs.Raw = v
			cs.Score = c.Table.Score(v)
			cs.Weight = c.Weight
			cs.Present = true
		} else if l.Missing == NeutralMissing {
			cs.Score = NeutralScore
			cs.Weight = c.Weight
		}
		total += cs.Weight
		out.Components[i] = cs
	}

	if total <= 0 {
		out.Score = NeutralScore
		return out
	}

	var score float64
	for i := range out.Components {
		out.Components[i].Weight /= total
		score += out.Components[i].Score * out.Components[i].Weight
	}
	out.Score = clampScore(score)
	return out
}

func (l LensSpec) validate() error {
	if len(l.Components) == 0 {
		return fmt.Errorf("lens %s: no components", l.Lens)
	}
	for _, c := range l.Components {
		if c.Weight < 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			return fmt.Errorf("lens %s: invalid weight %v for %s", l.Lens, c.Weight, c.Field)
		}
	}
	return nil
}

// DefaultLenses returns the standard five lens definitions.
func DefaultLenses() []LensSpec {
	return []LensSpec{
		{
			Lens: models.LensValuation,
			Components: []Component{
				{models.FieldPE, 0.40, PETable},
				{models.FieldPB, 0.30, PBTable},
				{models.FieldDividendYield, 0.20, DividendYieldTable},
				{models.FieldPS, 0.10, PSTable},
			},
		},
		{
			Lens: models.LensQuality,
			Components: []Component{
				{models.FieldROE, 0.35, ROETable},
				{models.FieldNetMargin, 0.30, NetMarginTable},
				{models.FieldROIC, 0.20, ROICTable},
				{models.FieldROA, 0.15, ROATable},
			},
		},
		{
			Lens: models.LensGrowth,
			Components: []Component{
				{models.FieldRevenueGrowth, 0.40, RevenueGrowthTable},
				{models.FieldEarningsGrowth, 0.40, EarningsGrowthTable},
				{models.FieldPEG, 0.20, PEGTable},
			},
		},
		{
			Lens: models.LensFinancialHealth,
			Components: []Component{
				{models.FieldDebtToEquity, 0.35, DebtToEquityTable},
				{models.FieldCurrentRatio, 0.30, CurrentRatioTable},
				{models.FieldInterestCoverage, 0.20, InterestCoverageTable},
				{models.FieldFreeCashFlow, 0.15, FreeCashFlowTable},
			},
		},
		{
			Lens: models.LensRiskMomentum,
			Components: []Component{
				{models.FieldBeta, 0.35, BetaTable},
				{models.FieldVolatility, 0.30, VolatilityTable},
				{models.FieldSharpe, 0.20, SharpeTable},
				{models.FieldMomentum52w, 0.15, MomentumTable},
			},
			Missing: NeutralMissing,
		},
	}
}

// clampScore bounds v to [0,100] and rounds away floating-point noise from
// weight normalisation, so a score that should land on a signal threshold does.
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return NeutralScore
	}
	v = math.Round(v*1e9) / 1e9
	return math.Max(0, math.Min(100, v))
}
