package contracts

// RankedReport is one row of the intrinsic-value ranking (S6)
// ⭐ SSOT: S6 랭킹 결과 (CSV 내보내기 행)
type RankedReport struct {
	Rank             int     `json:"rank" csv:"rank"` // 1-based ranking
	Code             string  `json:"code" csv:"code"`
	Name             string  `json:"name" csv:"name"`
	Industry         string  `json:"industry" csv:"industry"`
	Price            float64 `json:"price" csv:"price"`
	IntrinsicValue   float64 `json:"intrinsic_value" csv:"intrinsic_value"`
	UpsidePct        float64 `json:"upside_pct" csv:"upside_pct"`
	FairPrice        float64 `json:"fair_price" csv:"fair_price"`
	GrowthScore      float64 `json:"growth_score" csv:"growth_score"`
	ProfitScore      float64 `json:"profit_score" csv:"profit_score"`
	ReturnScore      float64 `json:"return_score" csv:"return_score"`
	MasterScore      float64 `json:"master_score" csv:"master_score"`
	State            string  `json:"state" csv:"state"`
	FourQ            string  `json:"four_q" csv:"four_q"`
	Verdict          string  `json:"verdict" csv:"verdict"`
	ValuationVerdict string  `json:"valuation_verdict" csv:"valuation_verdict"`
}

// IsTopRanked checks if the stock is in top N ranks
func (r *RankedReport) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
