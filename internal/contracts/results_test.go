package contracts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validGrowth() *GrowthResult {
	return &GrowthResult{
		Code:           "2330",
		TrendScore:     80,
		BurstScore:     80,
		StructureScore: 60,
		StableScore:    80,
		Score:          76,
		TrendLabel:     "t",
		BurstLabel:     "b",
		StructureLabel: "s",
		State:          "st",
		QualityLabel:   "q",
		Action:         "a",
	}
}

func TestGrowthResult_Validate(t *testing.T) {
	assert.NoError(t, validGrowth().Validate())

	g := validGrowth()
	g.TrendScore = 70
	assert.Error(t, g.Validate(), "70 is not a bucket score")

	g = validGrowth()
	g.Trend = math.NaN()
	assert.Error(t, g.Validate())

	g = validGrowth()
	g.State = ""
	assert.Error(t, g.Validate())
}

func TestValuationResult_Validate_BandOrder(t *testing.T) {
	v := &ValuationResult{Code: "2330", CheapPrice: 90, FairPrice: 100, ExpensivePrice: 110, Verdict: "fair"}
	assert.NoError(t, v.Validate())

	v.CheapPrice = 120
	assert.Error(t, v.Validate())
}

func TestIsBucketScore(t *testing.T) {
	for _, s := range []float64{20, 40, 60, 80, 100} {
		assert.True(t, IsBucketScore(s), "%v", s)
	}
	for _, s := range []float64{0, 10, 90, 105} {
		assert.False(t, IsBucketScore(s), "%v", s)
	}
}
