package s1_universe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/strategyconfig"
)

func testBuilder() *Builder {
	no := false
	b := NewBuilder(Config{
		MaxBatch: 5,
		Stocks: map[string]strategyconfig.StockEntry{
			"2330": {Name: "TSMC", Industry: "Semiconductors"},
			"2454": {Name: "MediaTek", Industry: "Semiconductors"},
			"2881": {Name: "Fubon Financial", Industry: "Financials", Recommend: &no, Note: "Bank and insurance earnings do not track revenue"},
		},
	})
	b.now = func() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) }
	return b
}

func TestBuilder_Build(t *testing.T) {
	u, err := testBuilder().Build(context.Background(), []string{"2454", "2881", " 2330 ", "8069", "2454"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2454", "2330", "8069"}, u.Stocks, "request order, duplicates dropped")
	assert.Equal(t, 3, u.TotalCount)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), u.Date)

	excluded, reason := u.IsExcluded("2881")
	assert.True(t, excluded)
	assert.Contains(t, reason, "Financials")
	assert.Contains(t, reason, "do not track revenue")

	assert.Equal(t, NotWhitelistedWarning, u.Warnings["8069"])
	assert.Equal(t, "TSMC", u.Meta["2330"].Name)
	assert.NotContains(t, u.Meta, "8069")
}

func TestBuilder_BatchTooLarge(t *testing.T) {
	codes := []string{"2330", "2454", "2317", "2382", "2308", "3711"}

	u, err := testBuilder().Build(context.Background(), codes)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, contracts.ErrBatchTooLarge)
	assert.Contains(t, err.Error(), "6 stocks requested, limit is 5")

	// 중복 제거 후 상한 이내면 통과
	u, err = testBuilder().Build(context.Background(), append(codes[:5:5], "2330"))
	require.NoError(t, err)
	assert.Equal(t, 5, u.Count())
}

func TestBuilder_Empty(t *testing.T) {
	_, err := testBuilder().Build(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testBuilder().Build(ctx, []string{"2330"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreen(t *testing.T) {
	b := testBuilder()

	tests := []struct {
		code        string
		wantName    string
		wantWarning bool
		wantErr     error
	}{
		{"2330", "TSMC", false, nil},
		{"2881", "Fubon Financial", false, contracts.ErrNotRecommended},
		{"9999", "", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info, warning, err := b.Screen(tt.code)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, tt.wantWarning, warning != "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewBuilder_DefaultBatch(t *testing.T) {
	assert.Equal(t, DefaultMaxBatch, NewBuilder(Config{}).MaxBatch())
}

func TestParseCodes(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"2317", []string{"2317"}},
		{"2330, 2454,2317", []string{"2330", "2454", "2317"}},
		{"2330 2330\t00878", []string{"2330", "00878"}},
		{"", []string{}},
		{"00679b", []string{"00679B"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCodes(tt.input))
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Universe.MaxBatch = 3
	cfg.Universe.Stocks["2330"] = strategyconfig.StockEntry{Name: "TSMC"}

	c := ConfigFrom(cfg)
	assert.Equal(t, 3, c.MaxBatch)
	assert.Contains(t, c.Stocks, "2330")
}
