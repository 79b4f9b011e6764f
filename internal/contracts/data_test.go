package contracts

import (
	"math"
	"testing"
	"time"
)

func TestRevenuePoint_HasYoY(t *testing.T) {
	tests := []struct {
		name  string
		point RevenuePoint
		want  bool
	}{
		{"both defined", RevenuePoint{MonthYoY: 0.1, CumYoY: 0.05}, true},
		{"month undefined", RevenuePoint{MonthYoY: math.NaN(), CumYoY: 0.05}, false},
		{"cumulative undefined", RevenuePoint{MonthYoY: 0.1, CumYoY: math.NaN()}, false},
		{"zero is defined", RevenuePoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.HasYoY(); got != tt.want {
				t.Errorf("HasYoY() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataQualitySnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot DataQualitySnapshot
		want     bool
	}{
		{
			name: "valid snapshot",
			snapshot: DataQualitySnapshot{
				Date:         time.Now(),
				TotalStocks:  5,
				ValidStocks:  4,
				QualityScore: 0.9,
				Coverage:     map[string]float64{"revenue": 1.0, "profit": 0.8},
			},
			want: true,
		},
		{
			name: "low quality score",
			snapshot: DataQualitySnapshot{
				TotalStocks:  5,
				ValidStocks:  2,
				QualityScore: 0.5,
			},
			want: false,
		},
		{
			name: "no valid stocks",
			snapshot: DataQualitySnapshot{
				TotalStocks:  5,
				ValidStocks:  0,
				QualityScore: 0.8,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataQualitySnapshot_CoverageRate(t *testing.T) {
	snapshot := DataQualitySnapshot{
		Coverage: map[string]float64{
			"revenue":   1.0,
			"profit":    0.8,
			"valuation": 0.6,
		},
	}

	expected := (1.0 + 0.8 + 0.6) / 3
	if rate := snapshot.CoverageRate(); math.Abs(rate-expected) > 1e-12 {
		t.Errorf("CoverageRate() = %v, want %v", rate, expected)
	}

	empty := DataQualitySnapshot{}
	if rate := empty.CoverageRate(); rate != 0 {
		t.Errorf("CoverageRate() on empty = %v, want 0", rate)
	}
}
