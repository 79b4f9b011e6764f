package contracts

import (
	"math"
	"time"
)

// RevenuePoint is one month of revenue passed from S0 to S2
// ⭐ SSOT: S0 → S2 월매출 시계열
//
// MonthYoY and CumYoY are NaN for the first twelve months of a series,
// where no prior-year value exists.
type RevenuePoint struct {
	Date       time.Time `json:"date"`
	Revenue    float64   `json:"revenue"`
	MonthYoY   float64   `json:"month_yoy"`   // 12개월 전 대비
	CumRevenue float64   `json:"cum_revenue"` // 연초 누적
	CumYoY     float64   `json:"cum_yoy"`
}

// HasYoY reports whether both growth ratios are defined.
func (p RevenuePoint) HasYoY() bool {
	return !math.IsNaN(p.MonthYoY) && !math.IsNaN(p.CumYoY)
}

// ProfitPoint is one quarter of margin data passed from S0 to S3
// ⭐ SSOT: S0 → S3 분기 마진 시계열
type ProfitPoint struct {
	Date            time.Time `json:"date"`
	GrossMargin     float64   `json:"gross_margin"`     // GPM
	OperatingMargin float64   `json:"operating_margin"` // OPM
}

// AnnualReturn is one calendar year of shareholder-return data passed from S0 to S4
// ⭐ SSOT: S0 → S4 연간 ROE/EPS
//
// NetIncome and EPS are annualized (x4/QuartersReported) when the year is
// incomplete; Projected marks those rows.
type AnnualReturn struct {
	Year             int       `json:"year"`
	Date             time.Time `json:"date"`
	NetIncome        float64   `json:"net_income"`
	EPS              float64   `json:"eps"`
	ROE              float64   `json:"roe"`
	QuartersReported int       `json:"quarters_reported"`
	AvgPointsUsed    int       `json:"avg_points_used"` // 평균 자본 산출에 쓰인 시점 수
	Projected        bool      `json:"projected"`
}

// ValuationPoint is one trading day of PE/PBR history passed from S0 to S5
// PE or PBR <= 0 marks a loss or invalid period.
type ValuationPoint struct {
	Date          time.Time `json:"date"`
	PE            float64   `json:"pe"`
	PBR           float64   `json:"pbr"`
	DividendYield float64   `json:"dividend_yield"`
}

// Quote is the latest closing price.
type Quote struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// StockInfo is listing metadata for a ticker.
type StockInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Market   string `json:"market"` // twse, tpex
}

// NewsItem is a single headline attached to a report.
type NewsItem struct {
	Date   time.Time `json:"date"`
	Title  string    `json:"title"`
	Source string    `json:"source"`
	Link   string    `json:"link"`
}

// StockData bundles every series the pipeline needs for one ticker
// ⭐ SSOT: S0 → S2..S5 종목 단위 입력 묶음
type StockData struct {
	Info      StockInfo        `json:"info"`
	Revenue   []RevenuePoint   `json:"revenue"`
	Profit    []ProfitPoint    `json:"profit"`
	Annual    []AnnualReturn   `json:"annual"`
	Valuation []ValuationPoint `json:"valuation"`
	Quote     *Quote           `json:"quote,omitempty"`
	BondYield float64          `json:"bond_yield"` // percent, 4.0 = 4%
	News      []NewsItem       `json:"news,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"` // 치명적이지 않은 수집 실패
	FetchedAt time.Time        `json:"fetched_at"`
}

// DataQualitySnapshot summarizes series coverage for a batch (S0 → S1)
// ⭐ SSOT: S0 → S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	Date         time.Time           `json:"date"`
	TotalStocks  int                 `json:"total_stocks"`
	ValidStocks  int                 `json:"valid_stocks"`
	Coverage     map[string]float64  `json:"coverage"` // series → share of stocks usable
	Issues       map[string][]string `json:"issues,omitempty"`
	QualityScore float64             `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool                `json:"passed"`
}

// IsValid checks if the data quality snapshot meets minimum requirements
func (d *DataQualitySnapshot) IsValid() bool {
	return d.QualityScore >= 0.7 && d.ValidStocks > 0
}

// CoverageRate returns the average coverage rate across all series
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
