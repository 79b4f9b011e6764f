package s3_profit

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/scoring"
)

const (
	// MinQuarters is the shortest margin series the analyzer accepts.
	MinQuarters = 4

	slopeWindow = 8
)

// Analyzer diagnoses gross and operating margin quality
// ⭐ SSOT: 이익 품질 진단은 여기서만
type Analyzer struct {
	sink contracts.LogSink
}

// NewAnalyzer creates a profit analyzer that reports progress to sink.
func NewAnalyzer(sink contracts.LogSink) *Analyzer {
	if sink == nil {
		sink = contracts.Discard
	}
	return &Analyzer{sink: sink}
}

// Analyze diagnoses the latest quarter. growth may be nil, in which case the
// revenue trend is read as 0.
func (a *Analyzer) Analyze(code string, profit []contracts.ProfitPoint, growth *contracts.GrowthResult) (*contracts.ProfitResult, error) {
	if len(profit) < MinQuarters {
		return nil, fmt.Errorf("profit %s: %d quarters < %d: %w", code, len(profit), MinQuarters, contracts.ErrInsufficientData)
	}

	rows := make([]contracts.ProfitPoint, len(profit))
	copy(rows, profit)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	gpm := make([]float64, len(rows))
	opm := make([]float64, len(rows))
	for i, r := range rows {
		if math.IsNaN(r.GrossMargin) || math.IsNaN(r.OperatingMargin) {
			return nil, fmt.Errorf("profit %s: margin missing at %s: %w", code, r.Date.Format("2006-01-02"), contracts.ErrMalformedSeries)
		}
		gpm[i] = r.GrossMargin
		opm[i] = r.OperatingMargin
	}

	var trend float64
	if growth != nil {
		trend = growth.Trend
	}

	n := len(rows)
	s := Signals{
		GrowthTrend: trend,
		LatestOPM:   opm[n-1],
		LatestGPM:   gpm[n-1],
		PrevOPM:     opm[n-2],
		PrevGPM:     gpm[n-2],
		AvgOPM4Q:    scoring.Mean(scoring.Tail(opm, 4)),
		MaxOPM8Q:    scoring.Max(scoring.Tail(opm, slopeWindow)),
		OPMSlope:    scoring.Slope(scoring.Tail(opm, slopeWindow)),
		GPMSlope:    scoring.Slope(scoring.Tail(gpm, slopeWindow)),
	}
	s.Improvement = s.LatestOPM - s.AvgOPM4Q

	contracts.Logf(a.sink, "======== profit analysis start ========")
	contracts.Logf(a.sink, "4Q avg GPM: %.1f %%", scoring.Mean(scoring.Tail(gpm, 4))*100)
	contracts.Logf(a.sink, "4Q avg OPM: %.1f %%", s.AvgOPM4Q*100)
	contracts.Logf(a.sink, "GPM slope (%dQ): %.4f", len(scoring.Tail(gpm, slopeWindow)), s.GPMSlope)
	contracts.Logf(a.sink, "OPM slope (%dQ): %.4f", len(scoring.Tail(opm, slopeWindow)), s.OPMSlope)
	contracts.Logf(a.sink, "margin improvement: %.4f", s.Improvement)

	r := &contracts.ProfitResult{
		Code:         code,
		LatestDate:   rows[n-1].Date,
		LatestGPM:    s.LatestGPM,
		LatestOPM:    s.LatestOPM,
		GPMChangePct: scoring.Round2(scoring.PctChange(s.PrevGPM, s.LatestGPM)),
		OPMChangePct: scoring.Round2(scoring.PctChange(s.PrevOPM, s.LatestOPM)),
		AvgGPM4Q:     scoring.Mean(scoring.Tail(gpm, 4)),
		AvgOPM4Q:     s.AvgOPM4Q,
		GPMSlope:     s.GPMSlope,
		OPMSlope:     s.OPMSlope,
		Improvement:  s.Improvement,

		EfficiencyLabel: Efficiency(s),
		FourQ:           FourQ.Eval(s),
		FourR:           FourR.Eval(s),

		LevelScore:       LevelScore.Eval(s),
		ImprovementScore: ImprovementScore.Eval(s),
	}
	r.Score = Composite(r.LevelScore, r.ImprovementScore, s.GPMSlope, s.OPMSlope)
	r.Action = Action(r.Score)

	contracts.Logf(a.sink, "efficiency: %s", r.EfficiencyLabel)
	contracts.Logf(a.sink, "growth quality matrix: %s", r.FourQ)
	contracts.Logf(a.sink, "margin navigator: %s", r.FourR)
	contracts.Logf(a.sink, "scores level=%.0f improvement=%.0f total=%.2f", r.LevelScore, r.ImprovementScore, r.Score)
	contracts.Logf(a.sink, "action: %s", r.Action)
	contracts.Logf(a.sink, "======== profit analysis end ========")

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, contracts.ErrMalformedSeries)
	}
	return r, nil
}
