package s3_profit

import "github.com/wonny/fundlens/internal/scoring"

// Signals are the derived values every profit rule reads.
type Signals struct {
	GrowthTrend float64 // from S2
	LatestOPM   float64
	LatestGPM   float64
	PrevOPM     float64
	PrevGPM     float64
	AvgOPM4Q    float64
	MaxOPM8Q    float64
	OPMSlope    float64
	GPMSlope    float64
	Improvement float64 // latest OPM - 4Q avg OPM
}

type rule = scoring.Rule[Signals, float64]
type labelRule = scoring.Rule[Signals, string]

const (
	EfficiencyConfirmed = "🔥 Quality shift confirmed | gross and operating margins both up"
	EfficiencyAdjusting = "⚙️ Adjusting | profitability still settling"
)

// Efficiency checks whether both margins rose quarter over quarter.
func Efficiency(s Signals) string {
	if s.LatestGPM > s.PrevGPM && s.LatestOPM > s.PrevOPM {
		return EfficiencyConfirmed
	}
	return EfficiencyAdjusting
}

const (
	QuadrantGolden     = "💎 Golden expansion | revenue and margin rising together"
	QuadrantHollow     = "⚙️ Hollow growth | revenue up but margin diluted"
	QuadrantEfficiency = "🛡️ Efficiency transition | revenue shrinking but leaner"
	QuadrantDecline    = "❌ Full decline | revenue and margin both falling"
)

// FourQ crosses the revenue trend with margin improvement.
var FourQ = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "golden", When: func(s Signals) bool { return s.GrowthTrend > 0 && s.Improvement > 0 }, Then: QuadrantGolden},
		{Name: "hollow", When: func(s Signals) bool { return s.GrowthTrend > 0 && s.Improvement <= 0 }, Then: QuadrantHollow},
		{Name: "efficiency", When: func(s Signals) bool { return s.GrowthTrend <= 0 && s.Improvement > 0 }, Then: QuadrantEfficiency},
	},
	Else: QuadrantDecline,
}

// FourR crosses the long OPM slope with the latest OPM against its 4Q average.
// A flat slope falls through to the deteriorating verdict.
var FourR = scoring.Chain[Signals, string]{
	Rules: []labelRule{
		{Name: "expansion", When: func(s Signals) bool { return s.OPMSlope > 0 && s.LatestOPM > s.AvgOPM4Q }, Then: "🚀 Strong expansion | profitability keeps stepping up"},
		{Name: "reversal", When: func(s Signals) bool { return s.OPMSlope < 0 && s.LatestOPM > s.AvgOPM4Q }, Then: "🔥 Structural turnaround | long trend reversing"},
		{Name: "fatigue", When: func(s Signals) bool { return s.OPMSlope > 0 && s.LatestOPM < s.AvgOPM4Q }, Then: "⚠️ Growth fatigue | trend up but short term stalling"},
	},
	Else: "❌ Deteriorating | profitability on a downward track",
}

// LevelScore grades the latest OPM; an 8-quarter high always scores 100.
var LevelScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "8q-high", When: func(s Signals) bool { return s.LatestOPM >= s.MaxOPM8Q }, Then: 100},
		{Name: "opm>=0.035", When: func(s Signals) bool { return s.LatestOPM >= 0.035 }, Then: 100},
		{Name: "opm>=0.033", When: func(s Signals) bool { return s.LatestOPM >= 0.033 }, Then: 90},
		{Name: "opm>=0.031", When: func(s Signals) bool { return s.LatestOPM >= 0.031 }, Then: 80},
		{Name: "opm>=0.029", When: func(s Signals) bool { return s.LatestOPM >= 0.029 }, Then: 70},
		{Name: "opm>=0.027", When: func(s Signals) bool { return s.LatestOPM >= 0.027 }, Then: 60},
	},
	Else: 40,
}

var ImprovementScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "imp>=0.005", When: func(s Signals) bool { return s.Improvement >= 0.005 }, Then: 100},
		{Name: "imp>=0.001", When: func(s Signals) bool { return s.Improvement >= 0.001 }, Then: 80},
		{Name: "imp>=-0.001", When: func(s Signals) bool { return s.Improvement >= -0.001 }, Then: 60},
	},
	Else: 40,
}

// Composite weights level and improvement, then applies the slope bonuses:
// +5 when the GPM slope is positive, -5 when the OPM slope is not.
func Composite(level, improvement, gpmSlope, opmSlope float64) float64 {
	total := level*0.6 + improvement*0.4
	if gpmSlope > 0 {
		total += 5
	}
	if opmSlope <= 0 {
		total -= 5
	}
	return total
}

var actionTiers = []scoring.Tier{
	{Min: 85, Action: "🚀 Full sprint | market euphoria, hold tight"},
	{Min: 75, Action: "💎 Overweight | turnaround confirmed, best window to add"},
	{Min: 60, Action: "📈 Hold | healthy fundamentals, suits mid to long term"},
	{Min: 40, Action: "🔄 Trim and watch | momentum weakening"},
}

// Action maps the composite profit score to action text.
func Action(score float64) string {
	return scoring.TierFor(actionTiers, score, "❌ Stay out | weak fundamentals, respect stops")
}
