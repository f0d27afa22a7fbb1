package fivelens

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/seenimoa/techlens/pkg/models"
)

// Weights assigns each lens its share of the composite score.
type Weights map[models.Lens]float64

// DefaultWeights returns the sector-neutral lens weights.
func DefaultWeights() Weights {
	return Weights{
		models.LensValuation:       0.20,
		models.LensQuality:         0.25,
		models.LensGrowth:          0.20,
		models.LensFinancialHealth: 0.20,
		models.LensRiskMomentum:    0.15,
	}
}

// Merge returns a copy of w with every entry of override laid over it.
func (w Weights) Merge(override Weights) Weights {
	out := maps.Clone(w)
	if out == nil {
		out = Weights{}
	}
	maps.Copy(out, override)
	return out
}

// Normalized returns a copy of w restricted to the five lenses and scaled to
// sum to 1. Lenses missing from w get 0. A non-positive total yields
// DefaultWeights.
func (w Weights) Normalized() Weights {
	out := make(Weights, 5)
	var total float64
	for _, l := range models.AllLenses() {
		v := w[l]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[l] = v
		total += v
	}
	if total <= 0 {
		return DefaultWeights()
	}
	for l := range out {
		out[l] /= total
	}
	return out
}

// Sum adds all weights.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func (w Weights) validate() error {
	for l, v := range w {
		if !isLens(l) {
			return fmt.Errorf("unknown lens %q", l)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("lens %s: invalid weight %v", l, v)
		}
	}
	return nil
}

func isLens(l models.Lens) bool {
	for _, known := range models.AllLenses() {
		if l == known {
			return true
		}
	}
	return false
}

// sectorKey folds sector names so lookups ignore case and padding.
func sectorKey(sector string) string {
	return strings.ToLower(strings.TrimSpace(sector))
}
