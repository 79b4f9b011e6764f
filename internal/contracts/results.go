package contracts

import (
	"fmt"
	"math"
	"time"
)

// GrowthResult is the revenue-momentum diagnosis produced by S2
// ⭐ SSOT: S2 → S3/S4 성장 진단 결과
type GrowthResult struct {
	Code        string    `json:"code"`
	LatestMonth time.Time `json:"latest_month"`

	LatestYoY    float64 `json:"latest_yoy"`
	PrevYoY      float64 `json:"prev_yoy"`
	YoYChangePct float64 `json:"yoy_change_pct"` // 전월 YoY 대비 변화율 (%)
	Avg3M        float64 `json:"avg_3m"`
	Avg6M        float64 `json:"avg_6m"`
	Std6M        float64 `json:"std_6m"`
	CumYoY       float64 `json:"cum_yoy"`

	Trend     float64 `json:"trend"`     // latest YoY - 6M avg
	Burst     float64 `json:"burst"`     // 3M avg - 6M avg
	Structure float64 `json:"structure"` // 6M avg - cumulative YoY
	GoldRatio float64 `json:"gold_ratio"`

	TrendScore     float64 `json:"trend_score"`
	BurstScore     float64 `json:"burst_score"`
	StructureScore float64 `json:"structure_score"`
	StableScore    float64 `json:"stable_score"`

	TrendLabel     string `json:"trend_label"`
	BurstLabel     string `json:"burst_label"`
	StructureLabel string `json:"structure_label"`
	State          string `json:"state"`
	QualityLabel   string `json:"quality_label"`

	Score          float64 `json:"score"`
	Action         string  `json:"action"`
	NextYearGrowth float64 `json:"next_year_growth"`
}

// Validate checks the record is complete and its scores are in range.
func (g *GrowthResult) Validate() error {
	for name, s := range map[string]float64{
		"trend_score":     g.TrendScore,
		"burst_score":     g.BurstScore,
		"structure_score": g.StructureScore,
		"stable_score":    g.StableScore,
	} {
		if !IsBucketScore(s) {
			return fmt.Errorf("growth %s: %s=%v is not a bucket score", g.Code, name, s)
		}
	}
	if err := checkFinite("growth", g.Code, g.Score, g.Trend, g.Burst, g.Structure, g.GoldRatio, g.NextYearGrowth); err != nil {
		return err
	}
	if g.Score < 20 || g.Score > 100 {
		return fmt.Errorf("growth %s: score %v out of range", g.Code, g.Score)
	}
	return checkLabels("growth", g.Code, g.TrendLabel, g.BurstLabel, g.StructureLabel, g.State, g.QualityLabel, g.Action)
}

// ProfitResult is the margin-quality diagnosis produced by S3
// ⭐ SSOT: S3 → S4 수익성 진단 결과
type ProfitResult struct {
	Code       string    `json:"code"`
	LatestDate time.Time `json:"latest_date"`

	LatestGPM    float64 `json:"latest_gpm"`
	LatestOPM    float64 `json:"latest_opm"`
	GPMChangePct float64 `json:"gpm_change_pct"`
	OPMChangePct float64 `json:"opm_change_pct"`
	AvgGPM4Q     float64 `json:"avg_gpm_4q"`
	AvgOPM4Q     float64 `json:"avg_opm_4q"`
	GPMSlope     float64 `json:"gpm_slope"` // 최근 8분기 OLS 기울기
	OPMSlope     float64 `json:"opm_slope"`
	Improvement  float64 `json:"improvement"` // latest OPM - 4Q avg OPM

	EfficiencyLabel string `json:"efficiency_label"`
	FourQ           string `json:"four_q"` // growth trend x margin improvement
	FourR           string `json:"four_r"` // OPM slope x position vs 4Q avg

	LevelScore       float64 `json:"level_score"`
	ImprovementScore float64 `json:"improvement_score"`
	Score            float64 `json:"score"`
	Action           string  `json:"action"`
}

// MarginExpanding reports whether the latest OPM sits above its 4-quarter average.
func (p *ProfitResult) MarginExpanding() bool {
	return p.LatestOPM > p.AvgOPM4Q
}

// Validate checks the record is complete and its scores are in range.
func (p *ProfitResult) Validate() error {
	if err := checkFinite("profit", p.Code, p.Score, p.GPMSlope, p.OPMSlope, p.Improvement, p.LatestOPM, p.LatestGPM); err != nil {
		return err
	}
	if p.Score < 35 || p.Score > 105 {
		return fmt.Errorf("profit %s: score %v out of range", p.Code, p.Score)
	}
	return checkLabels("profit", p.Code, p.EfficiencyLabel, p.FourQ, p.FourR, p.Action)
}

// ReturnResult is the shareholder-return diagnosis and Master Score produced by S4
// ⭐ SSOT: S4 → S5 주주수익 진단 + Master Score
type ReturnResult struct {
	Code       string `json:"code"`
	LatestYear int    `json:"latest_year"`

	LatestROE    float64 `json:"latest_roe"`
	AvgROE4Y     float64 `json:"avg_roe_4y"`
	ROEChangePct float64 `json:"roe_change_pct"`
	LatestEPS    float64 `json:"latest_eps"`
	EPSChangePct float64 `json:"eps_change_pct"`
	EPSCAGR3Y    float64 `json:"eps_cagr_3y"`
	Projected    bool    `json:"projected"` // 최신 연도가 연환산 추정치

	ROELevelScore  float64 `json:"roe_level_score"`
	ROEGrowthScore float64 `json:"roe_growth_score"`
	EPSGrowthScore float64 `json:"eps_growth_score"`
	Score          float64 `json:"score"`

	ConversionLabel string  `json:"conversion_label"`
	NextYearEPS     float64 `json:"next_year_eps"`

	MasterScore float64 `json:"master_score"`
	Verdict     string  `json:"verdict"`
}

// Validate checks the record is complete and its scores are in range.
func (r *ReturnResult) Validate() error {
	if err := checkFinite("return", r.Code, r.Score, r.MasterScore, r.NextYearEPS, r.AvgROE4Y, r.EPSCAGR3Y); err != nil {
		return err
	}
	if r.Score < 20 || r.Score > 100 {
		return fmt.Errorf("return %s: score %v out of range", r.Code, r.Score)
	}
	return checkLabels("return", r.Code, r.ConversionLabel, r.Verdict)
}

// ValuationResult is the price-target diagnosis produced by S5
// ⭐ SSOT: S5 → S6 밸류에이션 결과
type ValuationResult struct {
	Code string `json:"code"`

	Price      float64 `json:"price"`
	CurrentPE  float64 `json:"current_pe"`
	CurrentPBR float64 `json:"current_pbr"`
	ImpliedEPS float64 `json:"implied_eps"` // price / current PE
	ForwardEPS float64 `json:"forward_eps"`
	BondYield  float64 `json:"bond_yield"` // percent

	PEMax    float64 `json:"pe_max"`
	PEMin    float64 `json:"pe_min"`
	PEMean   float64 `json:"pe_mean"`
	PEStd    float64 `json:"pe_std"`
	PECap    float64 `json:"pe_cap"` // 95th percentile clip level
	PEPoints int     `json:"pe_points"`

	BookValue      float64 `json:"book_value"`
	CheapPrice     float64 `json:"cheap_price"`
	FairPrice      float64 `json:"fair_price"`
	ExpensivePrice float64 `json:"expensive_price"`
	IntrinsicValue float64 `json:"intrinsic_value"`

	Verdict string `json:"verdict"`
}

// Validate checks band ordering and completeness.
func (v *ValuationResult) Validate() error {
	if err := checkFinite("valuation", v.Code, v.CheapPrice, v.FairPrice, v.ExpensivePrice, v.IntrinsicValue, v.PEMean, v.PEStd); err != nil {
		return err
	}
	if v.CheapPrice > v.FairPrice || v.FairPrice > v.ExpensivePrice {
		return fmt.Errorf("valuation %s: bands out of order (%v, %v, %v)", v.Code, v.CheapPrice, v.FairPrice, v.ExpensivePrice)
	}
	return checkLabels("valuation", v.Code, v.Verdict)
}

// IsBucketScore reports whether s is one of the 20-point bucket scores.
func IsBucketScore(s float64) bool {
	switch s {
	case 20, 40, 60, 80, 100:
		return true
	}
	return false
}

func checkFinite(stage, code string, values ...float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s %s: value #%d is not finite", stage, code, i)
		}
	}
	return nil
}

func checkLabels(stage, code string, labels ...string) error {
	for i, l := range labels {
		if l == "" {
			return fmt.Errorf("%s %s: label #%d is empty", stage, code, i)
		}
	}
	return nil
}
