package s4_return

import "github.com/wonny/fundlens/internal/scoring"

// Signals are the derived values the ROE/EPS rules read.
type Signals struct {
	ROE       [4]float64 // latest first: ROE[0] = this year
	EPS       [2]float64 // latest first
	MaxROE4Y  float64
	AvgROE4Y  float64 // rounded to 4 dp, as reported
	MeanROE4Y float64 // unrounded
	OldEPS    float64 // EPS three years before the latest
	NewEPS    float64
	EPSCAGR   float64
}

type rule = scoring.Rule[Signals, float64]

var ROELevelScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "4y-high", When: func(s Signals) bool { return s.ROE[0] >= s.MaxROE4Y }, Then: 100},
		{Name: "avg>=0.15", When: func(s Signals) bool { return s.AvgROE4Y >= 0.15 }, Then: 100},
		{Name: "avg>=0.12", When: func(s Signals) bool { return s.AvgROE4Y >= 0.12 }, Then: 90},
		{Name: "avg>=0.10", When: func(s Signals) bool { return s.AvgROE4Y >= 0.10 }, Then: 80},
		{Name: "avg>=0.08", When: func(s Signals) bool { return s.AvgROE4Y >= 0.08 }, Then: 60},
	},
	Else: 40,
}

// ROEGrowthScore flags ROE rising while EPS falls before crediting any rise.
var ROEGrowthScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "divergence", When: func(s Signals) bool { return s.ROE[0] > s.ROE[1] && s.EPS[0] < s.EPS[1] }, Then: 40},
		{Name: "3y-rising", When: func(s Signals) bool { return s.ROE[0] > s.ROE[1] && s.ROE[1] > s.ROE[2] && s.ROE[2] > s.ROE[3] }, Then: 100},
		{Name: "above-avg", When: func(s Signals) bool { return s.ROE[0] > s.MeanROE4Y }, Then: 80},
		{Name: "vs-4y-ago", When: func(s Signals) bool { return s.ROE[0] >= s.ROE[3] }, Then: 60},
	},
	Else: 40,
}

var EPSGrowthScore = scoring.Chain[Signals, float64]{
	Rules: []rule{
		{Name: "turned-profitable", When: func(s Signals) bool { return s.OldEPS <= 0 && s.NewEPS > 0 }, Then: 100},
		{Name: "still-loss", When: func(s Signals) bool { return s.OldEPS <= 0 && s.NewEPS <= 0 }, Then: 20},
		{Name: "cagr>=0.2", When: func(s Signals) bool { return s.EPSCAGR >= 0.2 }, Then: 100},
		{Name: "cagr>=0.12", When: func(s Signals) bool { return s.EPSCAGR >= 0.12 }, Then: 80},
		{Name: "cagr>=0.05", When: func(s Signals) bool { return s.EPSCAGR >= 0.05 }, Then: 60},
		{Name: "cagr>=0", When: func(s Signals) bool { return s.EPSCAGR >= 0 }, Then: 40},
	},
	Else: 20,
}

// Composite blends ROE level and growth (40%) with EPS growth (60%).
func Composite(level, growth, eps float64) float64 {
	return (level*0.5+growth*0.5)*0.4 + eps*0.6
}

// Conversion inputs.
type Conversion struct {
	EPSGrowthScore  float64
	GrowthTrend     float64
	MarginExpanding bool // latest OPM > 4Q avg OPM
}

var ConversionLabel = scoring.Chain[Conversion, string]{
	Rules: []scoring.Rule[Conversion, string]{
		{Name: "high-quality", When: func(c Conversion) bool { return c.EPSGrowthScore >= 80 && c.MarginExpanding }, Then: "🔥 High-quality expansion | earnings outpacing revenue"},
		{Name: "efficiency", When: func(c Conversion) bool { return c.GrowthTrend > 0 && c.MarginExpanding }, Then: "💎 Efficiency gain | margin growing with revenue"},
	},
	Else: "⚖️ Steady expansion | ordinary business growth",
}

// =============================================================================
// Master Score
// =============================================================================

// Master weights growth 30%, profit 30% and shareholder return 40%.
func Master(growth, profit, ret float64) float64 {
	return growth*0.3 + profit*0.3 + ret*0.4
}

// VerdictInput carries the stage scores the final verdict reads.
type VerdictInput struct {
	Master      float64
	Growth      float64
	Profit      float64
	Return      float64
	Improvement float64 // latest OPM - 4Q avg OPM
	Trend       float64 // revenue trend from S2
}

const (
	VerdictKing       = "🏆 King | revenue, profit and ROE firing together, valuation ceiling open"
	VerdictBreakout   = "💎 Substantive breakout | EPS and ROE driving the main leg"
	VerdictOverheat   = "⚠️ Overheat warning | revenue-driven score without profit quality"
	VerdictTurnaround = "🔥 Structural turnaround | quality improving faster than volume"
	VerdictExpansion  = "🚀 Revenue expansion | grabbing share, momentum strong"
	VerdictDefensive  = "🛡️ Defensive value | mature, profitable, downside supported"
	VerdictSteady     = "📈 Steady growth | balanced revenue and profit, trend up"
	VerdictDecline    = "📉 Momentum decline | watchlist, wait for fundamentals to settle"
	VerdictLandmine   = "❌ Landmine | fundamentals collapsing, do not catch the knife"
	VerdictNeutral    = "⚖️ Neutral consolidation | no standout metric, wait for a catalyst"
)

// Verdict is evaluated top-down. Several guards overlap and the order below
// decides which label wins.
var Verdict = scoring.Chain[VerdictInput, string]{
	Rules: []scoring.Rule[VerdictInput, string]{
		{Name: "king", When: func(v VerdictInput) bool { return v.Master >= 90 }, Then: VerdictKing},
		{Name: "breakout", When: func(v VerdictInput) bool {
			return v.Master >= 80 && v.Growth >= 80 && v.Profit >= 80 && v.Return >= 60
		}, Then: VerdictBreakout},
		{Name: "overheat", When: func(v VerdictInput) bool {
			return v.Master >= 80 && v.Growth >= 90 && v.Profit < 70
		}, Then: VerdictOverheat},
		{Name: "turnaround", When: func(v VerdictInput) bool {
			return v.Master >= 75 && v.Improvement > 0.001 && v.Profit > v.Growth
		}, Then: VerdictTurnaround},
		{Name: "expansion", When: func(v VerdictInput) bool {
			return v.Master >= 75 && v.Growth > v.Profit && v.Trend > 0.1
		}, Then: VerdictExpansion},
		{Name: "defensive", When: func(v VerdictInput) bool {
			return v.Master >= 60 && v.Profit >= 70 && v.Profit > v.Growth && v.Growth < 60
		}, Then: VerdictDefensive},
		{Name: "steady", When: func(v VerdictInput) bool { return v.Master >= 60 && v.Profit >= 60 }, Then: VerdictSteady},
		{Name: "decline", When: func(v VerdictInput) bool {
			return v.Master >= 60 && v.Improvement < 0 && v.Trend < 0
		}, Then: VerdictDecline},
		{Name: "landmine", When: func(v VerdictInput) bool { return v.Master < 40 }, Then: VerdictLandmine},
	},
	Else: VerdictNeutral,
}
