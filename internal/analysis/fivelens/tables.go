package fivelens

import (
	"math"

	"github.com/seenimoa/techlens/pkg/models"
)

// Step is one bucket of a score table: values below Bound (or at it, when
// Inclusive) score Score.
type Step struct {
	Bound     float64
	Inclusive bool
	Score     float64
}

// Table maps a raw metric onto a 0–100 score through ordered buckets.
// The raw value is multiplied by Scale first (100 turns a decimal ratio into
// percent); a zero Scale means 1. The first matching step wins; values past
// every step score Else.
type Table struct {
	Scale float64
	Steps []Step
	Else  float64
}

// Score maps v through the table. Non-finite input scores the neutral 50.
func (t Table) Score(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NeutralScore
	}
	if t.Scale != 0 {
		v *= t.Scale
	}
	for _, s := range t.Steps {
		if v < s.Bound || (s.Inclusive && v == s.Bound) {
			return s.Score
		}
	}
	return t.Else
}

// below is shorthand for an exclusive step.
func below(bound, score float64) Step { return Step{Bound: bound, Score: score} }

// atMost is shorthand for an inclusive step.
func atMost(bound, score float64) Step { return Step{Bound: bound, Inclusive: true, Score: score} }

// ════════════════════════════════════════════════════════════════════
// Valuation
// ════════════════════════════════════════════════════════════════════

// PETable peaks between 15 and 20 and penalises both very cheap and very
// expensive multiples. Negative earnings score 30; a zero multiple falls in
// the cheap bucket.
var PETable = Table{
	Steps: []Step{below(0, 30), below(10, 70), below(15, 85), below(20, 90), below(25, 80), below(30, 70), below(40, 50)},
	Else:  30,
}

var PBTable = Table{
	Steps: []Step{atMost(0, 30), below(1, 75), below(1.5, 85), below(3, 80), below(5, 60)},
	Else:  40,
}

var DividendYieldTable = Table{
	Scale: 100,
	Steps: []Step{below(0, 40), below(1, 60), below(2, 70), below(3, 85), below(5, 80)},
	Else:  50,
}

var PSTable = Table{
	Steps: []Step{atMost(0, 30), below(1, 90), below(2, 80), below(3, 70), below(5, 50)},
	Else:  30,
}

// ════════════════════════════════════════════════════════════════════
// Quality
// ════════════════════════════════════════════════════════════════════

var ROETable = Table{
	Scale: 100,
	Steps: []Step{below(0, 20), below(5, 40), below(10, 60), below(15, 75), below(20, 85), below(25, 90)},
	Else:  95,
}

var NetMarginTable = Table{
	Scale: 100,
	Steps: []Step{below(0, 20), below(2, 50), below(5, 65), below(10, 80), below(15, 85), below(20, 90)},
	Else:  95,
}

var ROICTable = Table{
	Scale: 100,
	Steps: []Step{below(0, 20), below(5, 40), below(10, 65), below(15, 80), below(20, 90)},
	Else:  95,
}

var ROATable = Table{
	Scale: 100,
	Steps: []Step{below(0, 20), below(2, 50), below(5, 70), below(10, 85)},
	Else:  95,
}

// ════════════════════════════════════════════════════════════════════
// Growth
// ════════════════════════════════════════════════════════════════════

// RevenueGrowthTable tapers above 25% growth as likely unsustainable.
var RevenueGrowthTable = Table{
	Scale: 100,
	Steps: []Step{below(0, 30), below(5, 60), below(10, 75), below(15, 85), below(25, 90)},
	Else:  85,
}

var EarningsGrowthTable = Table{
	Scale: 100,
	Steps: []Step{below(-10, 20), below(0, 40), below(5, 60), below(15, 80), below(25, 90)},
	Else:  85,
}

var PEGTable = Table{
	Steps: []Step{below(0, 30), below(0.8, 95), below(1, 90), below(1.5, 80), below(2, 60)},
	Else:  40,
}

// ════════════════════════════════════════════════════════════════════
// Financial health
// ════════════════════════════════════════════════════════════════════

var DebtToEquityTable = Table{
	Steps: []Step{below(0, 30), below(0.5, 85), below(1, 90), below(1.5, 80), below(2, 60), below(3, 40)},
	Else:  20,
}

var CurrentRatioTable = Table{
	Steps: []Step{below(0.5, 30), below(1, 50), below(1.5, 75), below(2, 90), below(3, 85)},
	Else:  70,
}

var InterestCoverageTable = Table{
	Steps: []Step{below(0, 20), below(1.5, 30), below(2.5, 60), below(5, 80), below(10, 90)},
	Else:  95,
}

// FreeCashFlowTable only looks at the sign.
var FreeCashFlowTable = Table{
	Steps: []Step{atMost(0, 30)},
	Else:  75,
}

// ════════════════════════════════════════════════════════════════════
// Risk & momentum
// ════════════════════════════════════════════════════════════════════

var BetaTable = Table{
	Steps: []Step{below(0, 30), below(0.7, 85), below(1, 90), below(1.3, 75), below(1.5, 60), below(1.8, 45)},
	Else:  35,
}

var VolatilityTable = Table{
	Scale: 100,
	Steps: []Step{below(15, 90), below(20, 80), below(30, 70), below(40, 50)},
	Else:  30,
}

var SharpeTable = Table{
	Steps: []Step{below(0, 30), below(0.25, 50), below(0.5, 70), below(1, 85), below(1.5, 95)},
	Else:  95,
}

// MomentumTable scores 52-week price change, easing off after a +50% run.
var MomentumTable = Table{
	Scale: 100,
	Steps: []Step{below(-20, 40), below(-10, 55), below(0, 65), below(10, 70), below(25, 80), below(50, 85)},
	Else:  75,
}

// Tables indexes every score table by the input it scores.
var Tables = map[models.FundamentalField]Table{
	models.FieldPE:               PETable,
	models.FieldPB:               PBTable,
	models.FieldDividendYield:    DividendYieldTable,
	models.FieldPS:               PSTable,
	models.FieldROE:              ROETable,
	models.FieldNetMargin:        NetMarginTable,
	models.FieldROIC:             ROICTable,
	models.FieldROA:              ROATable,
	models.FieldRevenueGrowth:    RevenueGrowthTable,
	models.FieldEarningsGrowth:   EarningsGrowthTable,
	models.FieldPEG:              PEGTable,
	models.FieldDebtToEquity:     DebtToEquityTable,
	models.FieldCurrentRatio:     CurrentRatioTable,
	models.FieldInterestCoverage: InterestCoverageTable,
	models.FieldFreeCashFlow:     FreeCashFlowTable,
	models.FieldBeta:             BetaTable,
	models.FieldVolatility:       VolatilityTable,
	models.FieldSharpe:           SharpeTable,
	models.FieldMomentum52w:      MomentumTable,
}

// ScoreMetric scores a raw value for field. ok is false for a field with no table.
func ScoreMetric(field models.FundamentalField, v float64) (float64, bool) {
	t, ok := Tables[field]
	if !ok {
		return 0, false
	}
	return t.Score(v), true
}
