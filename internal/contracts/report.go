package contracts

import (
	"fmt"
	"time"
)

// Report is the per-stock diagnostic record assembled by the orchestrator
// ⭐ SSOT: S2~S5 결과 병합 (종목별 최종 산출물)
type Report struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Note     string `json:"note,omitempty"`

	Price     float64   `json:"price"`
	PriceDate time.Time `json:"price_date"`
	BondYield float64   `json:"bond_yield"`

	Growth    *GrowthResult    `json:"growth"`
	Profit    *ProfitResult    `json:"profit"`
	Return    *ReturnResult    `json:"return"`
	Valuation *ValuationResult `json:"valuation,omitempty"` // nil when valuation unavailable

	News       []NewsItem `json:"news,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
}

// ValuationAvailable reports whether S5 produced bands for this stock.
func (r *Report) ValuationAvailable() bool {
	return r.Valuation != nil
}

// MasterScore returns the composite score, 0 if S4 did not run.
func (r *Report) MasterScore() float64 {
	if r.Return == nil {
		return 0
	}
	return r.Return.MasterScore
}

// UpsidePct is (intrinsic / price - 1) x 100, 0 when either side is missing.
func (r *Report) UpsidePct() float64 {
	if r.Valuation == nil || r.Price <= 0 || r.Valuation.IntrinsicValue <= 0 {
		return 0
	}
	return (r.Valuation.IntrinsicValue/r.Price - 1) * 100
}

// Field is one named entry of the flattened record.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields flattens the report into ordered key/value pairs for rendering.
func (r *Report) Fields() []Field {
	f := []Field{
		{"code", r.Code},
		{"name", r.Name},
		{"industry", r.Industry},
		{"price", num(r.Price)},
		{"bond_yield", num(r.BondYield)},
	}

	if g := r.Growth; g != nil {
		f = append(f,
			Field{"latest_yoy", pct(g.LatestYoY)},
			Field{"yoy_change_pct", num(g.YoYChangePct)},
			Field{"avg_3m", pct(g.Avg3M)},
			Field{"avg_6m", pct(g.Avg6M)},
			Field{"std_6m", num3(g.Std6M)},
			Field{"cum_yoy", pct(g.CumYoY)},
			Field{"trend", num3(g.Trend)},
			Field{"trend_label", g.TrendLabel},
			Field{"burst", num3(g.Burst)},
			Field{"burst_label", g.BurstLabel},
			Field{"structure", num3(g.Structure)},
			Field{"structure_label", g.StructureLabel},
			Field{"state", g.State},
			Field{"gold_ratio", num(g.GoldRatio)},
			Field{"quality_label", g.QualityLabel},
			Field{"growth_score", num(g.Score)},
			Field{"growth_action", g.Action},
			Field{"next_year_growth", pct(g.NextYearGrowth)},
		)
	}

	if p := r.Profit; p != nil {
		f = append(f,
			Field{"latest_gpm", pct(p.LatestGPM)},
			Field{"latest_opm", pct(p.LatestOPM)},
			Field{"avg_opm_4q", pct(p.AvgOPM4Q)},
			Field{"opm_slope", fmt.Sprintf("%.5f", p.OPMSlope)},
			Field{"improvement", fmt.Sprintf("%.4f", p.Improvement)},
			Field{"efficiency_label", p.EfficiencyLabel},
			Field{"four_q", p.FourQ},
			Field{"four_r", p.FourR},
			Field{"profit_score", num(p.Score)},
			Field{"profit_action", p.Action},
		)
	}

	if rt := r.Return; rt != nil {
		f = append(f,
			Field{"latest_roe", pct(rt.LatestROE)},
			Field{"avg_roe_4y", pct(rt.AvgROE4Y)},
			Field{"latest_eps", num(rt.LatestEPS)},
			Field{"eps_cagr_3y", pct(rt.EPSCAGR3Y)},
			Field{"return_score", num(rt.Score)},
			Field{"conversion_label", rt.ConversionLabel},
			Field{"next_year_eps", num(rt.NextYearEPS)},
			Field{"master_score", num(rt.MasterScore)},
			Field{"verdict", rt.Verdict},
		)
	}

	if v := r.Valuation; v != nil {
		f = append(f,
			Field{"current_pe", num(v.CurrentPE)},
			Field{"pe_mean", num(v.PEMean)},
			Field{"pe_std", num(v.PEStd)},
			Field{"book_value", num(v.BookValue)},
			Field{"cheap_price", num(v.CheapPrice)},
			Field{"fair_price", num(v.FairPrice)},
			Field{"expensive_price", num(v.ExpensivePrice)},
			Field{"intrinsic_value", num(v.IntrinsicValue)},
			Field{"upside_pct", num(r.UpsidePct())},
			Field{"valuation_verdict", v.Verdict},
		)
	} else {
		f = append(f, Field{"valuation_verdict", "unavailable"})
	}

	return f
}

// Skip records why a requested stock produced no report.
type Skip struct {
	Code   string `json:"code"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func num(v float64) string  { return fmt.Sprintf("%.2f", v) }
func num3(v float64) string { return fmt.Sprintf("%.3f", v) }
func pct(v float64) string  { return fmt.Sprintf("%.1f%%", v*100) }
