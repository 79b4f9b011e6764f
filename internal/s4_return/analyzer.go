package s4_return

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
)

// MinYears is the shortest annual series the analyzer accepts.
const MinYears = 4

// Analyzer diagnoses ROE and EPS efficiency and computes the Master Score
// ⭐ SSOT: 주주수익 진단 + Master Score 는 여기서만
type Analyzer struct {
	sink contracts.LogSink
}

// NewAnalyzer creates a shareholder-return analyzer that reports progress to sink.
func NewAnalyzer(sink contracts.LogSink) *Analyzer {
	if sink == nil {
		sink = contracts.Discard
	}
	return &Analyzer{sink: sink}
}

// Analyze diagnoses the latest year. Nil growth or profit results are read as
// zero values so the Master Score degrades instead of failing.
func (a *Analyzer) Analyze(code string, annual []contracts.AnnualReturn, growth *contracts.GrowthResult, profit *contracts.ProfitResult) (*contracts.ReturnResult, error) {
	if len(annual) < MinYears {
		return nil, fmt.Errorf("return %s: %d years < %d: %w", code, len(annual), MinYears, contracts.ErrInsufficientData)
	}
	if growth == nil {
		growth = &contracts.GrowthResult{}
	}
	if profit == nil {
		profit = &contracts.ProfitResult{}
	}

	rows := make([]contracts.AnnualReturn, len(annual))
	copy(rows, annual)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

	n := len(rows)
	roe := make([]float64, 0, 4)
	for i := n - 4; i < n; i++ {
		if math.IsNaN(rows[i].ROE) || math.IsNaN(rows[i].EPS) {
			return nil, fmt.Errorf("return %s: undefined ROE/EPS in %d: %w", code, rows[i].Year, contracts.ErrMalformedSeries)
		}
		roe = append(roe, rows[i].ROE)
	}

	latest := rows[n-1]
	s := Signals{
		ROE:       [4]float64{rows[n-1].ROE, rows[n-2].ROE, rows[n-3].ROE, rows[n-4].ROE},
		EPS:       [2]float64{rows[n-1].EPS, rows[n-2].EPS},
		MaxROE4Y:  scoring.Max(roe),
		AvgROE4Y:  scoring.Round(scoring.Mean(roe), 4),
		MeanROE4Y: scoring.Mean(roe),
		OldEPS:    rows[n-4].EPS,
		NewEPS:    latest.EPS,
	}
	if s.OldEPS > 0 && s.NewEPS > 0 {
		s.EPSCAGR = math.Pow(s.NewEPS/s.OldEPS, 1.0/3) - 1
	}

	contracts.Logf(a.sink, "======== shareholder return analysis start ========")
	contracts.Logf(a.sink, "4Y avg ROE: %.2f %%", s.AvgROE4Y*100)
	contracts.Logf(a.sink, "3Y EPS CAGR: %.2f %%", s.EPSCAGR*100)
	if latest.Projected {
		contracts.Logf(a.sink, "%d is annualized from %d quarter(s)", latest.Year, latest.QuartersReported)
	}

	r := &contracts.ReturnResult{
		Code:         code,
		LatestYear:   latest.Year,
		LatestROE:    latest.ROE,
		AvgROE4Y:     s.AvgROE4Y,
		ROEChangePct: scoring.Round2(scoring.PctChange(s.ROE[1], s.ROE[0])),
		LatestEPS:    latest.EPS,
		EPSChangePct: scoring.Round2(scoring.PctChange(s.EPS[1], s.EPS[0])),
		EPSCAGR3Y:    s.EPSCAGR,
		Projected:    latest.Projected,

		ROELevelScore:  ROELevelScore.Eval(s),
		ROEGrowthScore: ROEGrowthScore.Eval(s),
		EPSGrowthScore: EPSGrowthScore.Eval(s),
	}
	r.Score = Composite(r.ROELevelScore, r.ROEGrowthScore, r.EPSGrowthScore)

	contracts.Logf(a.sink, "ROE level score: %.0f", r.ROELevelScore)
	contracts.Logf(a.sink, "ROE growth score: %.0f", r.ROEGrowthScore)
	contracts.Logf(a.sink, "EPS growth score: %.0f", r.EPSGrowthScore)
	contracts.Logf(a.sink, "shareholder return score: %.2f", r.Score)

	adj := 0.95
	if profit.MarginExpanding() {
		adj = 1.05
	}
	r.NextYearEPS = latest.EPS * (1 + growth.NextYearGrowth) * adj
	contracts.Logf(a.sink, "projected next-year EPS: %.2f", r.NextYearEPS)

	r.ConversionLabel = ConversionLabel.Eval(Conversion{
		EPSGrowthScore:  r.EPSGrowthScore,
		GrowthTrend:     growth.Trend,
		MarginExpanding: profit.MarginExpanding(),
	})
	contracts.Logf(a.sink, "scale effect: %s", r.ConversionLabel)

	r.MasterScore = Master(growth.Score, profit.Score, r.Score)
	r.Verdict = Verdict.Eval(VerdictInput{
		Master:      r.MasterScore,
		Growth:      growth.Score,
		Profit:      profit.Score,
		Return:      r.Score,
		Improvement: profit.Improvement,
		Trend:       growth.Trend,
	})
	contracts.Logf(a.sink, "master score: %.2f -> %s", r.MasterScore, r.Verdict)
	contracts.Logf(a.sink, "======== shareholder return analysis end ========")

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, contracts.ErrMalformedSeries)
	}
	return r, nil
}
