package s5_valuation

import "github.com/wonny/fundlens/internal/scoring"

// Position is the current price against the PE bands and intrinsic value.
type Position struct {
	Price     float64
	Cheap     float64
	Fair      float64
	Expensive float64
	Intrinsic float64
}

func (p Position) belowIntrinsic() bool { return p.Price < p.Intrinsic }

const (
	VerdictDeepValue   = "💎 Absolutely undervalued | double margin of safety (low PE and below intrinsic value)"
	VerdictHistoricLow = "📉 Historic low | price at the bottom of its PE band, confirm fundamentals"
	VerdictPoised      = "✅ Poised | fair price and below long-term value, accumulate"
	VerdictFair        = "⚖️ Fair range | price reflects fundamentals"
	VerdictRerating    = "📈 Value re-rating | heating up but still below intrinsic value"
	VerdictPremium     = "⚠️ Premium | above the fair range, needs high growth"
	VerdictOverheated  = "🔥 Overheated | above the historic band, poor risk/reward"
)

// Verdict tests the PE band position first, then intrinsic value within
// each band. Order matters: every band check assumes the tighter one failed.
var Verdict = scoring.Chain[Position, string]{
	Rules: []scoring.Rule[Position, string]{
		{Name: "deep-value", When: func(p Position) bool { return p.Price <= p.Cheap && p.belowIntrinsic() }, Then: VerdictDeepValue},
		{Name: "historic-low", When: func(p Position) bool { return p.Price <= p.Cheap }, Then: VerdictHistoricLow},
		{Name: "poised", When: func(p Position) bool { return p.Price <= p.Fair && p.belowIntrinsic() }, Then: VerdictPoised},
		{Name: "fair", When: func(p Position) bool { return p.Price <= p.Fair }, Then: VerdictFair},
		{Name: "re-rating", When: func(p Position) bool { return p.Price <= p.Expensive && p.belowIntrinsic() }, Then: VerdictRerating},
		{Name: "premium", When: func(p Position) bool { return p.Price <= p.Expensive }, Then: VerdictPremium},
	},
	Else: VerdictOverheated,
}
