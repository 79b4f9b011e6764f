package s2_growth

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/contracts"
)

// series builds a 24-month series whose last len(tail) YoY values are tail.
// The first 12 months carry no YoY.
func series(tail []float64, cum float64) []contracts.RevenuePoint {
	start := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.RevenuePoint, 24)
	for i := range out {
		out[i] = contracts.RevenuePoint{
			Date:     start.AddDate(0, i, 0),
			Revenue:  100,
			MonthYoY: math.NaN(),
			CumYoY:   math.NaN(),
		}
		if i >= 12 {
			out[i].MonthYoY = 0.1
			out[i].CumYoY = cum
		}
	}
	for i, v := range tail {
		out[24-len(tail)+i].MonthYoY = v
	}
	return out
}

func TestAnalyze_InsufficientData(t *testing.T) {
	a := NewAnalyzer(nil)

	for _, n := range []int{0, 1, 11} {
		got, err := a.Analyze("2330", series(nil, 0.1)[:n])
		assert.Nil(t, got, "n=%d", n)
		assert.ErrorIs(t, err, contracts.ErrInsufficientData, "n=%d", n)
	}
}

func TestAnalyze_UndefinedTrailingYoY(t *testing.T) {
	a := NewAnalyzer(nil)

	// 12 rows but none has a prior-year value
	rows := series(nil, 0.1)[:12]
	got, err := a.Analyze("2330", rows)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestAnalyze_TenThenTwentyPercent(t *testing.T) {
	var lines []string
	a := NewAnalyzer(contracts.LogFunc(func(m string) { lines = append(lines, m) }))

	got, err := a.Analyze("2330", series([]float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.2}, 0.117))
	require.NoError(t, err)

	assert.Equal(t, 0.167, got.Avg3M)
	assert.Equal(t, 0.133, got.Avg6M)
	assert.Equal(t, 0.052, got.Std6M)
	assert.InDelta(t, 0.067, got.Trend, 1e-9)
	assert.InDelta(t, 0.034, got.Burst, 1e-9)
	assert.InDelta(t, 0.016, got.Structure, 1e-9)
	assert.Equal(t, 0.0, got.YoYChangePct, "latest two months are both 20%")

	assert.Equal(t, 80.0, got.TrendScore)
	assert.Equal(t, 80.0, got.BurstScore)
	assert.Equal(t, 60.0, got.StructureScore)
	assert.Equal(t, 80.0, got.StableScore)
	assert.InDelta(t, 76.0, got.Score, 1e-9)

	assert.Equal(t, StateAcceleration, got.State)
	assert.Contains(t, got.BurstLabel, "Heating up")
	assert.Contains(t, got.Action, "Turnaround confirmed")
	assert.InDelta(t, (0.117*0.4+0.167*0.4+0.067*0.2)*1.1, got.NextYearGrowth, 1e-9)

	assert.NotEmpty(t, lines, "progress goes to the sink")
}

func TestAnalyze_ScoreRangeClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := NewAnalyzer(nil)

	for i := 0; i < 500; i++ {
		tail := make([]float64, 12)
		for j := range tail {
			tail[j] = rng.Float64()*1.2 - 0.4
		}
		got, err := a.Analyze("x", series(tail, rng.Float64()*0.8-0.3))
		require.NoError(t, err)

		assert.True(t, contracts.IsBucketScore(got.TrendScore), "trend score %v", got.TrendScore)
		assert.True(t, contracts.IsBucketScore(got.BurstScore), "burst score %v", got.BurstScore)
		assert.GreaterOrEqual(t, got.Score, 20.0)
		assert.LessOrEqual(t, got.Score, 100.0)
	}
}

func TestComposite_MonotoneInTrend(t *testing.T) {
	buckets := []float64{20, 40, 60, 80, 100}
	for _, b := range buckets {
		for _, s := range []float64{40, 60, 80, 100} {
			prev := math.Inf(-1)
			for _, trend := range buckets {
				got := Composite(trend, b, s, s)
				assert.GreaterOrEqual(t, got, prev)
				prev = got
			}
		}
	}
}

func TestState_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want string
		rule string
	}{
		{"convergent beats peaking", Signals{Trend: -0.1, Burst: 0, YoY: 0.25}, StateConvergent, "convergent"},
		{"overheated beats acceleration", Signals{Trend: 0.3, Burst: 0.1, Structure: 0.05}, StateOverheated, "overheated"},
		{"turnaround", Signals{Trend: 0.1, Burst: 0.05, Structure: -0.02}, StateTurnaround, "turnaround"},
		{"acceleration", Signals{Trend: 0.1, Burst: 0.05, Structure: 0.02}, StateAcceleration, "acceleration"},
		{"peaking", Signals{Trend: -0.05, Burst: 0.01, YoY: 0.05}, StatePeaking, "peaking"},
		{"zero structure falls through", Signals{Trend: 0.1, Burst: 0.05, Structure: 0}, StateConsolidating, "else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := State.Match(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestQualityLabel_FallbackIsPlainString(t *testing.T) {
	got := QualityLabel.Eval(Signals{GoldRatio: -0.5, YoY: 0.1})
	assert.Equal(t, "❌ Momentum scattered", got)

	got = QualityLabel.Eval(Signals{GoldRatio: 0, YoY: 0.2})
	assert.Contains(t, got, "Strong consolidation")
}

func TestStructureLabel_BaseEffectOverride(t *testing.T) {
	s := Signals{Structure: -0.05, YoY: 0.25}
	assert.Contains(t, StructureLabel.Eval(s), "high base effect")
	assert.Equal(t, 60.0, StructureScore.Eval(s), "score still credits high YoY")
}
