package fivelens

import (
	"strings"

	"github.com/seenimoa/techlens/pkg/models"
)

type lensNote struct {
	lens     models.Lens
	above    float64
	strength string
	below    float64
	weakness string
}

// Strength when a lens is strictly above `above`, weakness when strictly below `below`.
var lensNotes = []lensNote{
	{models.LensValuation, 75, "Excellent valuation metrics", 50, "Valuation concerns"},
	{models.LensQuality, 80, "High-quality business", 60, "Quality issues"},
	{models.LensGrowth, 75, "Strong growth prospects", 50, "Limited growth prospects"},
	{models.LensFinancialHealth, 80, "Solid financial position", 50, "Financial health concerns"},
	{models.LensRiskMomentum, 75, "Favorable risk-return profile", 50, "High risk profile"},
}

// Recommend derives the signal, strengths, weaknesses and summary text from
// scores alone.
func Recommend(scores models.LensScores) models.Recommendation {
	rec := models.Recommendation{
		Signal:     Signal(scores.Composite),
		Strengths:  []string{},
		Weaknesses: []string{},
	}
	for _, n := range lensNotes {
		v := scores.Get(n.lens)
		if v > n.above {
			rec.Strengths = append(rec.Strengths, n.strength)
		}
		if v < n.below {
			rec.Weaknesses = append(rec.Weaknesses, n.weakness)
		}
	}

	var b strings.Builder
	b.WriteString("Investment Signal: ")
	b.WriteString(rec.Signal.Label())
	b.WriteString("\n")
	if len(rec.Strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, s := range rec.Strengths {
			b.WriteString("  • " + s + "\n")
		}
	}
	if len(rec.Weaknesses) > 0 {
		b.WriteString("\nWeaknesses:\n")
		for _, w := range rec.Weaknesses {
			b.WriteString("  • " + w + "\n")
		}
	}
	rec.Text = b.String()
	return rec
}
