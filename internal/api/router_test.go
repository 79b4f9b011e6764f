package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/internal/api/handlers"
	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s0_data/quality"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/scheduler"
	"github.com/wonny/fundlens/internal/selection"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/config"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWith(t, nil)
}

func newTestRouterWith(t *testing.T, sched *handlers.SchedulerHandler) http.Handler {
	t.Helper()

	no := false
	strategy := strategyconfig.Default()
	strategy.Universe.MaxBatch = 3
	strategy.Universe.Stocks = map[string]strategyconfig.StockEntry{
		"2330": {Name: "TSMC", Industry: "Semiconductors"},
		"2454": {Name: "MediaTek", Industry: "Semiconductors"},
		"2881": {Name: "Fubon Financial", Industry: "Financials", Recommend: &no},
	}

	src := s0_data.SampleSource(map[string]string{"2330": "TSMC", "2454": "MediaTek"})
	col := collector.NewCollector(src, []contracts.BondYieldSource{src}, 0, 90, logger.Nop())
	gate := quality.NewQualityGate(quality.DefaultConfig())
	orch := brain.NewOrchestrator(
		s1_universe.NewBuilder(s1_universe.ConfigFrom(strategy)),
		col,
		gate,
		selection.NewRanker(logger.Nop()),
		brain.Config{Concurrency: 2},
		logger.Nop(),
	)

	// 비활성 Redis: 캐시 미스 경로
	rc, err := redis.New(&config.Config{})
	require.NoError(t, err)

	last := &handlers.LastRun{}
	return NewRouter(Handlers{
		Analysis:     handlers.NewAnalysisHandler(orch, redis.NewCache(rc, "test"), last, logger.Nop()),
		Data:         handlers.NewDataHandler(strategy, col, gate, last, logger.Nop()),
		Scheduler:    sched,
		StrategyHash: "abc123",
	}, logger.Nop())
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "abc123", body["strategy"])
}

func TestAnalyze(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodPost, "/api/analyze", `{"codes":["2330"],"query":"2454, 2881"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Ranking, 2)
	assert.Equal(t, "2330", resp.Ranking[0].Code)
	assert.Equal(t, 1, resp.Ranking[0].Rank)
	require.Len(t, resp.Reports, 2)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "2881", resp.Skipped[0].Code)
	assert.Equal(t, contracts.StageUniverse, resp.Skipped[0].Stage)
	assert.NotEmpty(t, resp.Log)
	assert.NotNil(t, resp.Quality)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid body", `{"codes":`, http.StatusBadRequest},
		{"empty batch", `{"codes":[]}`, http.StatusUnprocessableEntity},
		{"batch too large", `{"codes":["2330","2454","2317","2308"]}`, http.StatusBadRequest},
		{"every stock excluded", `{"codes":["2881"]}`, http.StatusUnprocessableEntity},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_NothingAnalyzedKeepsSkips(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodPost, "/api/analyze", `{"codes":["2881"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handlers.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no stock analyzed")
	assert.Empty(t, resp.Reports)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "2881", resp.Skipped[0].Code)
	assert.Equal(t, contracts.StageUniverse, resp.Skipped[0].Stage)
}

func TestGetStockReport(t *testing.T) {
	router := newTestRouter(t)

	t.Run("json", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/api/stocks/2330/report", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var rep contracts.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, "2330", rep.Code)
		assert.Equal(t, "TSMC", rep.Name)
		require.NotNil(t, rep.Return)
		assert.InDelta(t, 94.3, rep.Return.MasterScore, 1e-9)
		assert.NotNil(t, rep.Valuation)
	})

	t.Run("markdown", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/api/stocks/2330/report?format=markdown", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
		assert.Contains(t, rec.Body.String(), "2330")
	})

	t.Run("html", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/api/stocks/2330/report?format=html", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html>"))
	})
}

func TestGetStockReport_Failures(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		want  int
		stage string
	}{
		{"not recommended", "/api/stocks/2881/report", http.StatusUnprocessableEntity, "S1"},
		{"unknown code", "/api/stocks/8069/report", http.StatusNotFound, "S0"},
		{"malformed code", "/api/stocks/abc/report", http.StatusBadRequest, ""},
		{"unsupported format", "/api/stocks/2330/report?format=pdf", http.StatusBadRequest, ""},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, tt.stage, body["stage"])
		})
	}
}

func TestGetRankingCSV(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/reports/ranking.csv", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing has run yet")

	rec = do(router, http.MethodGet, "/api/reports/ranking.csv?codes=2330,2454", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ranking_")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeffrank,code,name"))
	assert.Equal(t, 3, strings.Count(strings.TrimSpace(body), "\n")+1)

	// 직전 실행 재사용
	rec = do(router, http.MethodGet, "/api/reports/ranking.csv", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
}

func TestDataEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/data/quality", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/data/universe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var universe handlers.UniverseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &universe))
	assert.Equal(t, 3, universe.MaxBatch)
	require.Len(t, universe.Stocks, 3)
	assert.Equal(t, "2330", universe.Stocks[0].Code)
	assert.False(t, universe.Stocks[2].Recommended)

	rec = do(router, http.MethodPost, "/api/data/collect", `{"codes":["2330"," 8069 "]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var collected handlers.CollectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collected))
	assert.Equal(t, "partial", collected.Status)
	require.Len(t, collected.Results, 2)
	assert.Equal(t, 24, collected.Results[0].RevenueMonths)
	assert.True(t, collected.Results[0].HasPrice)
	assert.Equal(t, "8069", collected.Results[1].Code)
	assert.NotEmpty(t, collected.Results[1].Error)
	assert.NotNil(t, collected.Quality)

	do(router, http.MethodPost, "/api/analyze", `{"codes":["2330"]}`)
	rec = do(router, http.MethodGet, "/api/data/quality", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestRouter(t)

	rec := do(h, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36, "uuid assigned")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "run-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "run-42", rec.Header().Get(RequestIDHeader))
}

type stubJob struct {
	name string
	err  error
}

func (j *stubJob) Name() string                  { return j.name }
func (j *stubJob) Schedule() string              { return "30 18 * * 1-5" }
func (j *stubJob) Run(ctx context.Context) error { return j.err }

func TestSchedulerEndpoints(t *testing.T) {
	sched := scheduler.New(logger.Nop(), time.UTC).WithRetry(0, 0)
	require.NoError(t, sched.AddJob(&stubJob{name: "watchlist_analysis"}))
	require.NoError(t, sched.AddJob(&stubJob{name: "data_collection", err: errors.New("finmind 402")}))
	h := newTestRouterWith(t, handlers.NewSchedulerHandler(sched, logger.Nop()))

	rec := do(h, http.MethodPost, "/api/scheduler/jobs/watchlist_analysis/run", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/scheduler/jobs/data_collection/run", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "finmind 402")

	rec = do(h, http.MethodPost, "/api/scheduler/jobs/nope/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/scheduler/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Jobs  []scheduler.JobStats `json:"jobs"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "data_collection", list.Jobs[0].JobName)
	assert.Equal(t, 1, list.Jobs[0].FailureCount)
	assert.Equal(t, "finmind 402", list.Jobs[0].LastError)
	assert.Equal(t, 1, list.Jobs[1].SuccessCount)

	rec = do(h, http.MethodGet, "/api/scheduler/jobs/watchlist_analysis/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/scheduler/jobs/watchlist_analysis/history?limit=0", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/scheduler/jobs/nope/history", "").Code)
}

func TestSchedulerEndpoints_Disabled(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/api/scheduler/jobs", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPost, "/api/scheduler/jobs/watchlist_analysis/run", "").Code)
}
