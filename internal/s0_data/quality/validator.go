package quality

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
)

// Series names used as coverage keys
const (
	SeriesRevenue   = "revenue"
	SeriesProfit    = "profit"
	SeriesAnnual    = "annual"
	SeriesValuation = "valuation"
	SeriesPrice     = "price"
)

// Minimum lengths mirrored from the stage analyzers
const (
	minRevenueMonths = 12
	minYoYMonths     = 6
	minQuarters      = 4
	minYears         = 4
)

// QualityGate validates series quality and generates snapshots
type QualityGate struct {
	config Config
	now    func() time.Time
}

// Config holds quality gate thresholds
type Config struct {
	MinQualityScore float64 `yaml:"min_quality_score"` // 0.7
}

// DefaultConfig returns the thresholds used when the strategy file sets none
func DefaultConfig() Config {
	return Config{MinQualityScore: 0.7}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	if config.MinQualityScore <= 0 {
		config = DefaultConfig()
	}
	return &QualityGate{config: config, now: time.Now}
}

// Check validates every stock in the batch
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(ctx context.Context, batch []*contracts.StockData) (*contracts.DataQualitySnapshot, error) {
	snapshot := &contracts.DataQualitySnapshot{
		Date:        g.now(),
		TotalStocks: len(batch),
		Coverage:    make(map[string]float64),
		Issues:      make(map[string][]string),
	}
	if len(batch) == 0 {
		return snapshot, nil
	}

	usable := map[string]int{}
	for _, d := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}

		issues := CheckStock(d)
		failed := map[string]bool{}
		for _, is := range issues {
			failed[is.Series] = true
			snapshot.Issues[d.Info.Code] = append(snapshot.Issues[d.Info.Code], is.String())
		}

		for _, s := range []string{SeriesRevenue, SeriesProfit, SeriesAnnual, SeriesValuation, SeriesPrice} {
			if !failed[s] {
				usable[s]++
			}
		}
		// 밸류에이션은 선택 항목
		if !failed[SeriesRevenue] && !failed[SeriesProfit] && !failed[SeriesAnnual] && !failed[SeriesPrice] {
			snapshot.ValidStocks++
		}
	}

	for _, s := range []string{SeriesRevenue, SeriesProfit, SeriesAnnual, SeriesValuation, SeriesPrice} {
		snapshot.Coverage[s] = float64(usable[s]) / float64(len(batch))
	}
	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)
	snapshot.Passed = snapshot.QualityScore >= g.config.MinQualityScore && snapshot.ValidStocks > 0

	return snapshot, nil
}

// Issue is one problem found in one series of one stock
type Issue struct {
	Series string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Series, i.Detail)
}

// CheckStock lists the problems that would make a stage reject this stock's data
func CheckStock(d *contracts.StockData) []Issue {
	var issues []Issue
	add := func(series, format string, args ...interface{}) {
		issues = append(issues, Issue{Series: series, Detail: fmt.Sprintf(format, args...)})
	}

	// Revenue
	switch {
	case len(d.Revenue) < minRevenueMonths:
		add(SeriesRevenue, "%d months < %d", len(d.Revenue), minRevenueMonths)
	case !ascending(len(d.Revenue), func(i int) time.Time { return d.Revenue[i].Date }):
		add(SeriesRevenue, "months not strictly ascending")
	default:
		for _, p := range d.Revenue[len(d.Revenue)-minYoYMonths:] {
			if math.IsNaN(p.MonthYoY) {
				add(SeriesRevenue, "YoY undefined at %s", p.Date.Format("2006-01"))
				break
			}
		}
		if math.IsNaN(d.Revenue[len(d.Revenue)-1].CumYoY) {
			add(SeriesRevenue, "cumulative YoY undefined")
		}
	}

	// Profit
	if len(d.Profit) < minQuarters {
		add(SeriesProfit, "%d quarters < %d", len(d.Profit), minQuarters)
	} else {
		for _, p := range d.Profit {
			if math.IsNaN(p.GrossMargin) || math.IsNaN(p.OperatingMargin) {
				add(SeriesProfit, "margin missing at %s", p.Date.Format("2006-01-02"))
				break
			}
		}
	}

	// Annual
	if len(d.Annual) < minYears {
		add(SeriesAnnual, "%d years < %d", len(d.Annual), minYears)
	}

	// Valuation
	positive := 0
	for _, v := range d.Valuation {
		if v.PE > 0 {
			positive++
		}
	}
	if positive == 0 {
		add(SeriesValuation, "no positive PE in %d rows", len(d.Valuation))
	}

	// Price
	if d.Quote == nil || d.Quote.Close <= 0 {
		add(SeriesPrice, "no closing price")
	}

	return issues
}

func ascending(n int, at func(int) time.Time) bool {
	for i := 1; i < n; i++ {
		if !at(i - 1).Before(at(i)) {
			return false
		}
	}
	return true
}

// calculateScore calculates overall quality score using weighted average
func (g *QualityGate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		SeriesRevenue:   0.25,
		SeriesProfit:    0.25,
		SeriesAnnual:    0.25,
		SeriesPrice:     0.15,
		SeriesValuation: 0.10,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}

var _ contracts.QualityGate = (*QualityGate)(nil)
