package s2_growth

import "github.com/wonny/fundlens/internal/scoring"

// Signals are the derived values every growth rule reads.
type Signals struct {
	YoY       float64 // latest monthly YoY
	Avg3M     float64
	Trend     float64 // YoY - 6M avg
	Burst     float64 // 3M avg - 6M avg
	Noise     float64 // 6M std / 2
	Structure float64 // 6M avg - cumulative YoY
	GoldRatio float64
}

type rule = scoring.Rule[Signals, float64]
type labelRule = scoring.Rule[Signals, string]

// =============================================================================
// Trend (latest YoY vs 6M average)
// =============================================================================

var TrendScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "trend>=0.1", When: func(s Signals) bool { return s.Trend >= 0.1 }, Then: 100},
		{Name: "yoy>=0.2|trend>=0.05", When: func(s Signals) bool { return s.YoY >= 0.2 || s.Trend >= 0.05 }, Then: 80},
		{Name: "trend>=0", When: func(s Signals) bool { return s.Trend >= 0 }, Then: 60},
		{Name: "trend>=-0.05", When: func(s Signals) bool { return s.Trend >= -0.05 }, Then: 40},
	},
	Else: 20,
}

var TrendLabel = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "overheated", When: func(s Signals) bool { return s.Trend >= 0.5 }, Then: "⚠️ Overheated | check for a low-base effect"},
		{Name: "very-strong", When: func(s Signals) bool { return s.Trend >= 0.1 }, Then: "🚀 Very strong | revenue momentum in the top tier"},
		{Name: "safe", When: func(s Signals) bool { return s.Trend >= 0.05 || s.YoY >= 0.2 }, Then: "📈 Steady growth | clear uptrend with margin of safety"},
		{Name: "holding", When: func(s Signals) bool { return s.Trend >= 0 }, Then: "⚖️ Holding | flat revenue, no visible decline"},
		{Name: "slowing", When: func(s Signals) bool { return s.Trend >= -0.05 }, Then: "📉 Slowing | growth is losing force"},
	},
	Else: "❌ High risk | revenue in marked decline",
}

// =============================================================================
// Burst (3M vs 6M average)
// =============================================================================

var BurstScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "burst>=0.05", When: func(s Signals) bool { return s.Burst >= 0.05 }, Then: 100},
		{Name: "burst>=0.02", When: func(s Signals) bool { return s.Burst >= 0.02 }, Then: 80},
		{Name: "avg3m>=0.15|burst>=-0.02", When: func(s Signals) bool { return s.Avg3M >= 0.15 || s.Burst >= -0.02 }, Then: 60},
		{Name: "burst>=-0.05", When: func(s Signals) bool { return s.Burst >= -0.05 }, Then: 40},
	},
	Else: 20,
}

// BurstLabel only credits acceleration that clears half the 6M std.
var BurstLabel = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "erupting", When: func(s Signals) bool { return s.Burst >= 0.05 && s.Burst > s.Noise }, Then: "🔥 Erupting | very strong short-term momentum, watch the deviation"},
		{Name: "heating", When: func(s Signals) bool { return s.Burst >= 0.02 && s.Burst > s.Noise }, Then: "🚀 Heating up | momentum building"},
		{Name: "steady", When: func(s Signals) bool { return s.YoY >= 0.15 || s.Burst >= -0.02 }, Then: "⚖️ Steady | short and mid-term trends agree"},
		{Name: "cooling", When: func(s Signals) bool { return s.Burst >= -0.05 }, Then: "📉 Cooling | short term lags the mid term"},
	},
	Else: "⚠️ Stalling | short-term momentum has frozen",
}

// =============================================================================
// Structure (6M average vs cumulative YoY)
// =============================================================================

var StructureScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "struct>=0.08", When: func(s Signals) bool { return s.Structure >= 0.08 }, Then: 100},
		{Name: "struct>=0.03", When: func(s Signals) bool { return s.Structure >= 0.03 }, Then: 80},
		{Name: "yoy>=0.2|struct>=-0.03", When: func(s Signals) bool { return s.YoY >= 0.2 || s.Structure >= -0.03 }, Then: 60},
	},
	Else: 40,
}

var StructureLabel = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "base-effect", When: func(s Signals) bool { return s.Structure < -0.03 && s.YoY >= 0.2 }, Then: "🛡️ Strong pullback (high base effect)"},
		{Name: "breakout", When: func(s Signals) bool { return s.Structure >= 0.08 }, Then: "💎 Structural breakout | earnings mix stepped up"},
		{Name: "improving", When: func(s Signals) bool { return s.Structure >= 0.03 }, Then: "✅ Improving | recent months beat the annual pace"},
		{Name: "normal", When: func(s Signals) bool { return s.Structure >= -0.03 }, Then: "🔄 Normal | in line with the annual trend"},
	},
	Else: "🚩 Bottleneck | recent months trail the annual pace",
}

// =============================================================================
// Momentum cycle
// =============================================================================

// State classifies the momentum cycle. The ordering of the last two
// acceleration rules relies on the first two having failed.
var State = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "convergent", When: func(s Signals) bool { return s.Trend < 0 && s.YoY >= 0.2 }, Then: StateConvergent},
		{Name: "overheated", When: func(s Signals) bool { return s.Trend > 0.25 && s.Trend > s.Burst*2 }, Then: StateOverheated},
		{Name: "turnaround", When: func(s Signals) bool { return s.Trend > s.Burst && s.Burst > s.Structure && s.Structure < 0 }, Then: StateTurnaround},
		{Name: "acceleration", When: func(s Signals) bool { return s.Trend > s.Burst && s.Burst > s.Structure && s.Structure > 0 }, Then: StateAcceleration},
		{Name: "peaking", When: func(s Signals) bool { return s.Trend < s.Burst && s.Trend < 0 }, Then: StatePeaking},
	},
	Else: StateConsolidating,
}

const (
	StateConvergent    = "🔄 Trend converging (high growth continues)"
	StateOverheated    = "🚩 Short-term overheated (do not chase)"
	StateTurnaround    = "🔥 Turning up from a low (early turnaround)"
	StateAcceleration  = "🚀 Full acceleration (main uptrend)"
	StatePeaking       = "⚠️ Momentum peaking (warning)"
	StateConsolidating = "🔄 Consolidating"
)

// =============================================================================
// Quality ratio (trend per unit of volatility)
// =============================================================================

var QualityLabel = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "crown", When: func(s Signals) bool { return s.GoldRatio > 1.5 }, Then: "👑 Crown-grade"},
		{Name: "perfect", When: func(s Signals) bool { return s.GoldRatio > 1 }, Then: "💎 Ideal candidate"},
		{Name: "standard", When: func(s Signals) bool { return s.GoldRatio > 0.5 }, Then: "📈 Standard growth"},
		{Name: "hollow", When: func(s Signals) bool { return s.GoldRatio > 0 }, Then: "🎢 Hollow growth"},
		{Name: "strong-consolidation", When: func(s Signals) bool { return s.YoY >= 0.2 }, Then: "🛡️ Strong consolidation (high growth)"},
	},
	Else: "❌ Momentum scattered",
}

var StableScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "gold>=1.5", When: func(s Signals) bool { return s.GoldRatio >= 1.5 }, Then: 100},
		{Name: "gold>=1", When: func(s Signals) bool { return s.GoldRatio >= 1 }, Then: 80},
		{Name: "yoy>=0.2|gold>=0.5", When: func(s Signals) bool { return s.YoY >= 0.2 || s.GoldRatio >= 0.5 }, Then: 60},
	},
	Else: 40,
}

// =============================================================================
// Composite
// =============================================================================

var actionTiers = []scoring.Tier{
	{Min: 90, Action: "🚀 Main uptrend | full speed, earnings eruption"},
	{Min: 80, Action: "💎 Select growth | institutional favourite, build a position"},
	{Min: 70, Action: "🔥 Turnaround confirmed | trend up, scale in"},
	{Min: 50, Action: "🔄 Basing | steady momentum, wait for a breakout"},
	{Min: 30, Action: "⚠️ Weakening | momentum stalling, reduce exposure"},
}

const actionFallback = "❌ Declining | momentum collapsed, stay out"

// Action maps the composite growth score to action text.
func Action(score float64) string {
	return scoring.TierFor(actionTiers, score, actionFallback)
}

// Composite weights the four sub-scores.
func Composite(trend, burst, structure, stable float64) float64 {
	return trend*0.35 + burst*0.25 + structure*0.20 + stable*0.20
}
