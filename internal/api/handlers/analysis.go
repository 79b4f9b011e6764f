package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/report"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
)

// Runner executes one pipeline batch
type Runner interface {
	Run(ctx context.Context, codes []string, tee contracts.LogSink) (*brain.RunResult, error)
}

// LastRun keeps the most recent completed run for the read-only endpoints
type LastRun struct {
	mu  sync.RWMutex
	res *brain.RunResult
}

// Set replaces the stored run
func (l *LastRun) Set(res *brain.RunResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.res = res
}

// Get returns the stored run, nil before the first run
func (l *LastRun) Get() *brain.RunResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.res
}

// AnalysisHandler handles analysis API endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	runner Runner
	cache  *redis.Cache // nil이면 캐시 없이 매번 분석
	last   *LastRun
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(runner Runner, cache *redis.Cache, last *LastRun, log *logger.Logger) *AnalysisHandler {
	if last == nil {
		last = &LastRun{}
	}
	return &AnalysisHandler{
		runner: runner,
		cache:  cache,
		last:   last,
		logger: log,
	}
}

// AnalyzeRequest represents a batch analysis request
type AnalyzeRequest struct {
	Codes []string `json:"codes"`
	Query string   `json:"query,omitempty"` // "2330, 2454 2317"
}

// AnalyzeResponse represents a finished batch
type AnalyzeResponse struct {
	RunID      string                         `json:"run_id"`
	StartedAt  time.Time                      `json:"started_at"`
	DurationMs int64                          `json:"duration_ms"`
	BondYield  float64                        `json:"bond_yield"`
	Ranking    []contracts.RankedReport       `json:"ranking"`
	Reports    []*contracts.Report            `json:"reports"`
	Skipped    []contracts.Skip               `json:"skipped"`
	Quality    *contracts.DataQualitySnapshot `json:"quality,omitempty"`
	Log        []string                       `json:"log"`
	TraceID    string                         `json:"trace_id,omitempty"`
	Error      string                         `json:"error,omitempty"`
}

// NewAnalyzeResponse converts a run into its API form
func NewAnalyzeResponse(res *brain.RunResult) AnalyzeResponse {
	resp := AnalyzeResponse{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		DurationMs: res.Duration.Milliseconds(),
		BondYield:  res.BondYield,
		Ranking:    res.Ranking,
		Reports:    res.Reports,
		Skipped:    res.Skipped,
		Quality:    res.Quality,
		TraceID:    res.TraceID,
	}
	if res.Log != nil {
		resp.Log = res.Log.Lines()
	}
	// 빈 배열로 직렬화
	if resp.Ranking == nil {
		resp.Ranking = []contracts.RankedReport{}
	}
	if resp.Reports == nil {
		resp.Reports = []*contracts.Report{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []contracts.Skip{}
	}
	return resp
}

// Analyze runs the pipeline for a batch
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	codes := append(req.Codes, s1_universe.ParseCodes(req.Query)...)

	res, err := h.run(r.Context(), codes)
	if err != nil {
		RespondError(w, statusFor(err), err.Error())
		return
	}

	resp := NewAnalyzeResponse(res)
	if err := res.NothingAnalyzed(); err != nil {
		// 전 종목 스킵: 사유는 skipped에 담아 422
		resp.Error = err.Error()
		RespondJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}

// GetStockReport returns one stock's report
// GET /api/stocks/{code}/report?format=json|markdown|html
func (h *AnalysisHandler) GetStockReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
	if !strategyconfig.ValidCode(code) {
		RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid stock code %q", code))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	if format != report.FormatJSON && format != report.FormatMarkdown && format != report.FormatHTML {
		RespondError(w, http.StatusBadRequest, "format must be one of: json, markdown, html")
		return
	}

	rep := h.cached(ctx, code)
	if rep == nil {
		res, err := h.run(ctx, []string{code})
		if err != nil {
			RespondError(w, statusFor(err), err.Error())
			return
		}
		if rep = res.Report(code); rep == nil {
			if skip := res.Skip(code); skip != nil {
				RespondJSON(w, skipStatus(skip), map[string]string{
					"error": skip.Reason,
					"stage": skip.Stage.ShortName(),
				})
				return
			}
			RespondError(w, http.StatusInternalServerError, "no report produced")
			return
		}
	}

	switch format {
	case report.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.StockMarkdown(rep)))
	case report.FormatHTML:
		page, err := report.StockPage(rep)
		if err != nil {
			h.logger.WithError(err).WithField("code", code).Error("Failed to render report")
			RespondError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	default:
		RespondJSON(w, http.StatusOK, rep)
	}
}

// GetRankingCSV exports a ranking. With ?codes= it runs a fresh batch,
// otherwise it exports the last completed run.
// GET /api/reports/ranking.csv
func (h *AnalysisHandler) GetRankingCSV(w http.ResponseWriter, r *http.Request) {
	var res *brain.RunResult
	if q := r.URL.Query().Get("codes"); q != "" {
		var err error
		if res, err = h.run(r.Context(), s1_universe.ParseCodes(q)); err != nil {
			RespondError(w, statusFor(err), err.Error())
			return
		}
	} else if res = h.last.Get(); res == nil {
		RespondError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteRankingCSV(&buf, res.Ranking); err != nil {
		h.logger.WithError(err).Error("Failed to write ranking CSV")
		RespondError(w, http.StatusInternalServerError, "Failed to write ranking CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ranking_%s.csv"`, res.StartedAt.Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// run executes a batch, remembers it and caches every report
func (h *AnalysisHandler) run(ctx context.Context, codes []string) (*brain.RunResult, error) {
	res, err := h.runner.Run(ctx, codes, nil)
	if err != nil {
		h.logger.WithError(err).WithField("codes", codes).Warn("Analysis failed")
		return nil, err
	}

	h.last.Set(res)
	if h.cache != nil {
		for _, rep := range res.Reports {
			if err := h.cache.Set(ctx, redis.ReportKey(rep.Code), rep, redis.TTLMedium); err != nil {
				h.logger.WithError(err).WithField("code", rep.Code).Warn("Failed to cache report")
			}
		}
	}
	return res, nil
}

func (h *AnalysisHandler) cached(ctx context.Context, code string) *contracts.Report {
	if h.cache == nil {
		return nil
	}
	var rep contracts.Report
	found, err := h.cache.Get(ctx, redis.ReportKey(code), &rep)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Warn("Report cache read failed")
		return nil
	}
	if !found {
		return nil
	}
	return &rep
}

// statusFor maps a run-level error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrNothingAnalyzed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// skipStatus maps a per-stock skip to an HTTP status
func skipStatus(s *contracts.Skip) int {
	switch {
	case errors.Is(s.Err, contracts.ErrUnknownStock), errors.Is(s.Err, contracts.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(s.Err, context.Canceled), errors.Is(s.Err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		// 화이트리스트 제외, 데이터 부족
		return http.StatusUnprocessableEntity
	}
}
