package s2_growth

import (
	"fmt"
	"math"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
)

// MinMonths is the shortest revenue series the analyzer accepts.
const MinMonths = 12

// minRisk floors the 6M std when computing the quality ratio.
const minRisk = 0.03

// Analyzer diagnoses monthly revenue momentum
// ⭐ SSOT: 매출 성장 진단은 여기서만
type Analyzer struct {
	sink contracts.LogSink
}

// NewAnalyzer creates a growth analyzer that reports progress to sink.
func NewAnalyzer(sink contracts.LogSink) *Analyzer {
	if sink == nil {
		sink = contracts.Discard
	}
	return &Analyzer{sink: sink}
}

// Analyze diagnoses the latest month of a chronologically sorted revenue series.
// It returns contracts.ErrInsufficientData when fewer than MinMonths rows are
// given or the trailing six YoY values are undefined.
func (a *Analyzer) Analyze(code string, revenue []contracts.RevenuePoint) (*contracts.GrowthResult, error) {
	if len(revenue) < MinMonths {
		return nil, fmt.Errorf("growth %s: %d months < %d: %w", code, len(revenue), MinMonths, contracts.ErrInsufficientData)
	}

	window := revenue[len(revenue)-6:]
	yoy := make([]float64, 0, len(window))
	for _, p := range window {
		if math.IsNaN(p.MonthYoY) {
			return nil, fmt.Errorf("growth %s: undefined YoY at %s: %w", code, p.Date.Format("2006-01"), contracts.ErrInsufficientData)
		}
		yoy = append(yoy, p.MonthYoY)
	}

	latest := revenue[len(revenue)-1]
	prev := revenue[len(revenue)-2]
	if math.IsNaN(latest.CumYoY) {
		return nil, fmt.Errorf("growth %s: undefined cumulative YoY: %w", code, contracts.ErrInsufficientData)
	}

	contracts.Logf(a.sink, "======== growth analysis start ========")
	contracts.Logf(a.sink, "latest revenue month: %s", latest.Date.Format("2006-01"))

	avg3 := scoring.Round3(scoring.Mean(yoy[3:]))
	avg6 := scoring.Round3(scoring.Mean(yoy))
	std6 := scoring.Round3(scoring.StdDev(yoy))

	contracts.Logf(a.sink, "3M avg YoY: %.1f %%", avg3*100)
	contracts.Logf(a.sink, "6M avg YoY: %.1f %%", avg6*100)
	contracts.Logf(a.sink, "6M std: %.1f %%", std6*100)

	s := Signals{
		YoY:       latest.MonthYoY,
		Avg3M:     avg3,
		Trend:     latest.MonthYoY - avg6,
		Burst:     avg3 - avg6,
		Noise:     std6 / 2,
		Structure: avg6 - latest.CumYoY,
	}
	s.GoldRatio = s.Trend / math.Max(std6, minRisk)

	r := &contracts.GrowthResult{
		Code:         code,
		LatestMonth:  latest.Date,
		LatestYoY:    latest.MonthYoY,
		PrevYoY:      prev.MonthYoY,
		YoYChangePct: scoring.Round2(scoring.PctChange(prev.MonthYoY, latest.MonthYoY)),
		Avg3M:        avg3,
		Avg6M:        avg6,
		Std6M:        std6,
		CumYoY:       latest.CumYoY,
		Trend:        s.Trend,
		Burst:        s.Burst,
		Structure:    s.Structure,
		GoldRatio:    s.GoldRatio,

		TrendScore:     TrendScore.Eval(s),
		BurstScore:     BurstScore.Eval(s),
		StructureScore: StructureScore.Eval(s),
		StableScore:    StableScore.Eval(s),

		TrendLabel:     TrendLabel.Eval(s),
		BurstLabel:     BurstLabel.Eval(s),
		StructureLabel: StructureLabel.Eval(s),
		State:          State.Eval(s),
		QualityLabel:   QualityLabel.Eval(s),
	}

	contracts.Logf(a.sink, "trend: %.1f %% -> %s", s.Trend*100, r.TrendLabel)
	contracts.Logf(a.sink, "burst: %.1f %% -> %s", s.Burst*100, r.BurstLabel)
	contracts.Logf(a.sink, "structure: %.1f %% -> %s", s.Structure*100, r.StructureLabel)
	contracts.Logf(a.sink, "state: %s", r.State)
	contracts.Logf(a.sink, "quality ratio %.2f -> %s", s.GoldRatio, r.QualityLabel)

	r.Score = Composite(r.TrendScore, r.BurstScore, r.StructureScore, r.StableScore)
	r.Action = Action(r.Score)
	r.NextYearGrowth = (latest.CumYoY*0.4 + avg3*0.4 + s.Trend*0.2) * 1.1

	contracts.Logf(a.sink, "scores trend=%.0f burst=%.0f structure=%.0f stable=%.0f total=%.2f",
		r.TrendScore, r.BurstScore, r.StructureScore, r.StableScore, r.Score)
	contracts.Logf(a.sink, "action: %s", r.Action)
	contracts.Logf(a.sink, "projected next-year growth: %.2f %%", r.NextYearGrowth*100)
	contracts.Logf(a.sink, "======== growth analysis end ========")

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, contracts.ErrMalformedSeries)
	}
	return r, nil
}
