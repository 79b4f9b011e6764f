package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanStdDev(t *testing.T) {
	values := []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.2}

	assert.InDelta(t, 0.13333, Mean(values), 1e-5)
	assert.InDelta(t, 0.05164, StdDev(values), 1e-5)
	assert.Equal(t, 0.0, StdDev([]float64{1}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 95, 0},
		{"single", []float64{7}, 95, 7},
		{"median odd", []float64{1, 2, 3}, 50, 2},
		{"p95 of 1..21", seq(1, 21), 95, 20},
		{"p95 of 1..10", seq(1, 10), 95, 9.55},
		{"p0", []float64{3, 4}, 0, 3},
		{"p100", []float64{3, 4}, 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestWinsorize(t *testing.T) {
	pe := []float64{12, 13, 14, 15, 14, 13, 12, 15, 16, 14, 13, 12, 14, 15, 13, 14, 12, 15, 13, 14, 120}

	clipped, limit := Winsorize(pe, 0.95)

	assert.LessOrEqual(t, Max(clipped), limit)
	assert.Less(t, Mean(clipped), Mean(pe), "outlier above p95 must pull the mean down")
	assert.Equal(t, 120.0, pe[len(pe)-1], "input is not modified")
	assert.Len(t, clipped, len(pe))
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		check  func(t *testing.T, got float64)
	}{
		{"increasing", []float64{0.02, 0.026, 0.032, 0.038, 0.044, 0.05}, func(t *testing.T, got float64) {
			assert.InDelta(t, 0.006, got, 1e-9)
		}},
		{"constant is exactly zero", []float64{0.031, 0.031, 0.031, 0.031, 0.031, 0.031, 0.031, 0.031}, func(t *testing.T, got float64) {
			assert.Equal(t, 0.0, got)
		}},
		{"decreasing", []float64{5, 4, 3}, func(t *testing.T, got float64) {
			assert.InDelta(t, -1.0, got, 1e-12)
		}},
		{"single point", []float64{1}, func(t *testing.T, got float64) {
			assert.Equal(t, 0.0, got)
		}},
		{"strictly increasing irregular", []float64{-0.4, -0.39, 0.1, 0.11, 2}, func(t *testing.T, got float64) {
			assert.Greater(t, got, 0.0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Slope(tt.values))
		})
	}
}

func TestPctChange_ZeroPrior(t *testing.T) {
	assert.Equal(t, 0.0, PctChange(0, 5))
	assert.InDelta(t, 50.0, PctChange(0.2, 0.3), 1e-9)
	assert.InDelta(t, 150.0, PctChange(-0.2, 0.1), 1e-9, "negative base uses its magnitude")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.15, Round(0.145, 2))
	assert.Equal(t, 0.117, Round3(1340.0/1200.0-1))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestTail(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, Tail([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1}, Tail([]float64{1}, 8))
}

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
