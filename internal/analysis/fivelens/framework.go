// Package fivelens implements the Five-Lens scoring model: fundamentals and
// risk metrics are scored per metric through fixed bucket tables, combined
// into five lens scores, weighted into a sector-adjusted composite and
// mapped to an investment signal.
package fivelens

import (
	"fmt"
	"maps"

	"github.com/seenimoa/techlens/pkg/models"
)

// Config is the scoring model's configuration. It is copied by New; later
// changes to a Config never affect a built Framework.
type Config struct {
	Lenses        []LensSpec
	Weights       Weights
	SectorWeights map[string]Weights // per-sector overrides merged over Weights
}

// DefaultConfig returns the standard lenses and weights with no sector overrides.
func DefaultConfig() Config {
	return Config{
		Lenses:  DefaultLenses(),
		Weights: DefaultWeights(),
	}
}

// Framework evaluates companies. It is immutable after New and safe for
// concurrent use.
type Framework struct {
	lenses  []LensSpec
	weights Weights
	sectors map[string]Weights // key: folded sector name, value: normalised
}

// New validates cfg and builds a Framework. Missing lenses or weights fall
// back to the defaults.
func New(cfg Config) (*Framework, error) {
	lenses := cfg.Lenses
	if len(lenses) == 0 {
		lenses = DefaultLenses()
	}
	seen := make(map[models.Lens]bool, len(lenses))
	copied := make([]LensSpec, len(lenses))
	for i, l := range lenses {
		if !isLens(l.Lens) {
			return nil, fmt.Errorf("unknown lens %q", l.Lens)
		}
		if seen[l.Lens] {
			return nil, fmt.Errorf("lens %s defined twice", l.Lens)
		}
		seen[l.Lens] = true
		if err := l.validate(); err != nil {
			return nil, err
		}
		copied[i] = LensSpec{
			Lens:       l.Lens,
			Components: append([]Component(nil), l.Components...),
			Missing:    l.Missing,
		}
	}

	base := cfg.Weights
	if len(base) == 0 {
		base = DefaultWeights()
	}
	if err := base.validate(); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}

	f := &Framework{
		lenses:  copied,
		weights: base.Normalized(),
		sectors: make(map[string]Weights, len(cfg.SectorWeights)),
	}
	for sector, override := range cfg.SectorWeights {
		if err := override.validate(); err != nil {
			return nil, fmt.Errorf("sector %q weights: %w", sector, err)
		}
		f.sectors[sectorKey(sector)] = base.Merge(override).Normalized()
	}
	return f, nil
}

// MustNew is New that panics on an invalid configuration.
func MustNew(cfg Config) *Framework {
	f, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// WeightsFor returns the normalised composite weights for sector. Unknown
// sectors get the base weights. The returned map is a copy.
func (f *Framework) WeightsFor(sector string) Weights {
	if w, ok := f.sectors[sectorKey(sector)]; ok {
		return maps.Clone(w)
	}
	return maps.Clone(f.weights)
}

// Composite is Σ lens score × sector weight, clamped to [0,100].
func (f *Framework) Composite(scores models.LensScores, sector string) float64 {
	w := f.sectors[sectorKey(sector)]
	if w == nil {
		w = f.weights
	}
	var c float64
	for _, l := range models.AllLenses() {
		c += scores.Get(l) * w[l]
	}
	return clampScore(c)
}

// Evaluate scores one company. fund is the company's fundamentals; risk
// supplies beta, volatility and Sharpe for the risk & momentum lens and may
// be nil, in which case those inputs count as missing. Neither argument is
// modified.
func (f *Framework) Evaluate(ticker, sector string, fund models.Fundamentals, risk *models.RiskMetrics) models.Evaluation {
	in := scoringInputs(fund, risk)

	ev := models.Evaluation{
		Ticker:    ticker,
		Sector:    sector,
		Breakdown: make([]models.LensBreakdown, 0, len(f.lenses)),
	}

	scores := models.LensScores{
		Valuation:       NeutralScore,
		Quality:         NeutralScore,
		Growth:          NeutralScore,
		FinancialHealth: NeutralScore,
		RiskMomentum:    NeutralScore,
	}
	for _, l := range f.lenses {
		b := l.Score(in)
		ev.Breakdown = append(ev.Breakdown, b)
		scores = scores.With(l.Lens, b.Score)
	}
	scores.Composite = f.Composite(scores, sector)

	ev.Scores = scores
	ev.Signal = Signal(scores.Composite)
	ev.Weights = f.WeightsFor(sector)
	return ev
}

// scoringInputs builds the flat input map seen by the lenses. Risk-derived
// keys always come from risk, never from the fundamentals map.
func scoringInputs(fund models.Fundamentals, risk *models.RiskMetrics) models.Fundamentals {
	in := fund.Clone()
	delete(in, models.FieldBeta)
	delete(in, models.FieldVolatility)
	delete(in, models.FieldSharpe)
	if risk != nil {
		in[models.FieldBeta] = risk.Beta
		in[models.FieldVolatility] = risk.Volatility
		in[models.FieldSharpe] = risk.SharpeRatio
	}
	return in
}
