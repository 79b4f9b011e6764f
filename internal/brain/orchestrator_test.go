package brain

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s0_data/quality"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/s2_growth"
	"github.com/wonny/fundlens/internal/s3_profit"
	"github.com/wonny/fundlens/internal/s4_return"
	"github.com/wonny/fundlens/internal/selection"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/config"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/trace"
)

// testSource: 2330 complete, 2454 without a price, 2317 with too few quarters
func testSource() *s0_data.MemorySource {
	src := s0_data.SampleSource(map[string]string{"2330": "TSMC"})

	noPrice := s0_data.SampleStock("2454", "MediaTek")
	noPrice.Quote = nil
	src.Put(noPrice)

	thin := s0_data.SampleStock("2317", "Hon Hai")
	thin.Profit = thin.Profit[:3]
	src.Put(thin)

	return src
}

func testOrchestrator(src *s0_data.MemorySource, concurrency int) *Orchestrator {
	no := false
	builder := s1_universe.NewBuilder(s1_universe.Config{
		MaxBatch: 5,
		Stocks: map[string]strategyconfig.StockEntry{
			"2330": {Name: "TSMC", Industry: "Semiconductors"},
			"2454": {Name: "MediaTek", Industry: "Semiconductors"},
			"2317": {Name: "Hon Hai", Industry: "Electronics Manufacturing"},
			"2881": {Name: "Fubon Financial", Industry: "Financials", Recommend: &no},
		},
	})
	col := collector.NewCollector(src, []contracts.BondYieldSource{src}, 0, 90, logger.Nop())

	return NewOrchestrator(
		builder,
		col,
		quality.NewQualityGate(quality.DefaultConfig()),
		selection.NewRanker(logger.Nop()),
		Config{Concurrency: concurrency},
		logger.Nop(),
	)
}

func TestRun_GoldenScenario(t *testing.T) {
	o := testOrchestrator(testSource(), 3)

	var tee []string
	res, err := o.Run(context.Background(), []string{"2330"}, contracts.LogFunc(func(m string) { tee = append(tee, m) }))
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)
	assert.Empty(t, res.Skipped)

	rep := res.Reports[0]
	assert.Equal(t, "TSMC", rep.Name)
	assert.Equal(t, "Semiconductors", rep.Industry)
	assert.Equal(t, 60.0, rep.Price)
	assert.Equal(t, 4.0, rep.BondYield)

	assert.Equal(t, s2_growth.StateAcceleration, rep.Growth.State)
	assert.Equal(t, s3_profit.QuadrantGolden, rep.Profit.FourQ)
	assert.Greater(t, rep.MasterScore(), 70.0)
	assert.InDelta(t, 94.3, rep.MasterScore(), 1e-9)
	assert.Equal(t, s4_return.VerdictKing, rep.Return.Verdict)

	require.True(t, rep.ValuationAvailable())
	v := rep.Valuation
	assert.LessOrEqual(t, v.CheapPrice, v.FairPrice)
	assert.LessOrEqual(t, v.FairPrice, v.ExpensivePrice)
	assert.InDelta(t, 4.4*rep.Growth.NextYearGrowth*1.05+4.4*1.05, v.ForwardEPS, 1e-9)
	assert.Greater(t, rep.UpsidePct(), 0.0)

	require.Len(t, res.Ranking, 1)
	assert.Equal(t, 1, res.Ranking[0].Rank)
	assert.Equal(t, 4.0, res.BondYield)
	assert.Len(t, res.RunID, 36)
	assert.NotEmpty(t, tee, "run log mirrored to tee")
	assert.Equal(t, len(res.Log.Entries()), len(tee))
}

func TestRun_PerStockIsolation(t *testing.T) {
	o := testOrchestrator(testSource(), 2)

	res, err := o.Run(context.Background(), []string{"2330", "2881", "8069", "2454", "2317"}, nil)
	require.NoError(t, err)

	codes := make([]string, len(res.Reports))
	for i, r := range res.Reports {
		codes[i] = r.Code
	}
	assert.Equal(t, []string{"2330", "2454"}, codes)

	require.Len(t, res.Skipped, 3)
	assert.Equal(t, "2881", res.Skipped[0].Code)
	assert.Equal(t, contracts.StageUniverse, res.Skipped[0].Stage)
	assert.ErrorIs(t, res.Skipped[0].Err, contracts.ErrNotRecommended)
	assert.Contains(t, res.Skipped[0].Reason, "Financials")

	unknown := res.Skip("8069")
	require.NotNil(t, unknown)
	assert.Equal(t, contracts.StageData, unknown.Stage)
	assert.Contains(t, unknown.Reason, contracts.ErrUnknownStock.Error())
	assert.ErrorIs(t, unknown.Err, contracts.ErrUnknownStock)

	thin := res.Skip("2317")
	require.NotNil(t, thin)
	assert.Equal(t, contracts.StageProfit, thin.Stage)

	// 가격 없음 → 리포트 유지, 밸류에이션만 제외
	mtk := res.Report("2454")
	require.NotNil(t, mtk)
	assert.False(t, mtk.ValuationAvailable())
	assert.Equal(t, 0.0, mtk.Price)
	assert.NotNil(t, mtk.Return)
	assert.True(t, containsAny(mtk.Warnings, "no latest price"))

	require.Len(t, res.Ranking, 2)
	assert.Equal(t, "2330", res.Ranking[0].Code)
	assert.Equal(t, "unavailable", res.Ranking[1].ValuationVerdict)

	require.NotNil(t, res.Quality)
	assert.Equal(t, 3, res.Quality.TotalStocks, "8069 produced no data")

	var sawSkipLine bool
	for _, e := range res.Log.Entries() {
		if e.Code == "2881" && strings.Contains(e.Message, "Skipped") {
			sawSkipLine = true
		}
	}
	assert.True(t, sawSkipLine)
}

func TestRun_UnlistedCodeWarns(t *testing.T) {
	src := testSource()
	src.Put(s0_data.SampleStock("8069", "E Ink"))

	res, err := testOrchestrator(src, 1).Run(context.Background(), []string{"8069"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)
	assert.Equal(t, s1_universe.NotWhitelistedWarning, res.Reports[0].Note)
	assert.Equal(t, "E Ink", res.Reports[0].Name)
}

func TestRun_BatchTooLarge(t *testing.T) {
	src := testSource()
	res, err := testOrchestrator(src, 3).Run(context.Background(), []string{"2330", "2454", "2317", "2382", "2308", "3711"}, nil)

	assert.ErrorIs(t, err, contracts.ErrBatchTooLarge)
	require.NotNil(t, res)
	assert.Nil(t, res.Universe)
	assert.Empty(t, res.Reports)
	assert.Equal(t, 0, src.Calls("2330"), "nothing fetched")
}

func TestRun_ConcurrencyDeterministic(t *testing.T) {
	codes := []string{"2330", "2454", "2317"}

	serial, err := testOrchestrator(testSource(), 1).Run(context.Background(), codes, nil)
	require.NoError(t, err)
	parallel, err := testOrchestrator(testSource(), 3).Run(context.Background(), codes, nil)
	require.NoError(t, err)

	require.Len(t, parallel.Reports, len(serial.Reports))
	for i := range serial.Reports {
		assert.Equal(t, serial.Reports[i].Code, parallel.Reports[i].Code)
		assert.Equal(t, serial.Reports[i].Growth, parallel.Reports[i].Growth)
		assert.Equal(t, serial.Reports[i].Valuation, parallel.Reports[i].Valuation)
	}
	assert.Equal(t, serial.Ranking, parallel.Ranking)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testOrchestrator(testSource(), 1).Run(ctx, []string{"2330"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Spans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, trace.InitWithWriter(&config.Config{Env: "test", TracingEnabled: true}, &buf))

	res, err := testOrchestrator(testSource(), 1).Run(context.Background(), []string{"2330"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TraceID)

	require.NoError(t, trace.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "pipeline.run")
	assert.Contains(t, out, "stock.analyze")
	assert.Contains(t, out, "stage.S2")
	assert.Contains(t, out, "stage.S5")
}

func containsAny(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestRunResult_NothingAnalyzed(t *testing.T) {
	empty := &RunResult{Skipped: []contracts.Skip{{Code: "2881", Stage: contracts.StageUniverse}}}
	err := empty.NothingAnalyzed()
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNothingAnalyzed)
	assert.Contains(t, err.Error(), "1 skipped")

	done := &RunResult{Reports: []*contracts.Report{{Code: "2330"}}, Skipped: empty.Skipped}
	assert.NoError(t, done.NothingAnalyzed())
}
