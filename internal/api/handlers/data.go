package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/logger"
)

// DataHandler handles data-related API endpoints
// ⭐ SSOT: 데이터 API 핸들러는 이 구조체에서만
type DataHandler struct {
	strategy    *strategyconfig.Config
	collector   *collector.Collector
	qualityGate contracts.QualityGate
	last        *LastRun
	workers     int
	logger      *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(
	strategy *strategyconfig.Config,
	col *collector.Collector,
	qualityGate contracts.QualityGate,
	last *LastRun,
	log *logger.Logger,
) *DataHandler {
	if last == nil {
		last = &LastRun{}
	}
	return &DataHandler{
		strategy:    strategy,
		collector:   col,
		qualityGate: qualityGate,
		last:        last,
		workers:     strategy.Analysis.Concurrency,
		logger:      log,
	}
}

// GetQuality returns the quality snapshot of the last run
// GET /api/data/quality
func (h *DataHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	res := h.last.Get()
	if res == nil || res.Quality == nil {
		RespondError(w, http.StatusNotFound, "no quality snapshot yet")
		return
	}

	RespondJSON(w, http.StatusOK, res.Quality)
}

// UniverseEntry is one whitelist row
type UniverseEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Recommended bool   `json:"recommended"`
	Note        string `json:"note,omitempty"`
}

// UniverseResponse describes the configured whitelist
type UniverseResponse struct {
	StrategyID string          `json:"strategy_id"`
	MaxBatch   int             `json:"max_batch"`
	Stocks     []UniverseEntry `json:"stocks"`
}

// GetUniverse returns the configured whitelist
// GET /api/data/universe
func (h *DataHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	u := h.strategy.Universe
	resp := UniverseResponse{
		StrategyID: h.strategy.Meta.StrategyID,
		MaxBatch:   u.MaxBatch,
		Stocks:     make([]UniverseEntry, 0, len(u.Stocks)),
	}
	for _, code := range u.Codes() {
		e := u.Stocks[code]
		resp.Stocks = append(resp.Stocks, UniverseEntry{
			Code:        code,
			Name:        e.Name,
			Industry:    e.Industry,
			Recommended: e.IsRecommended(),
			Note:        e.Note,
		})
	}

	RespondJSON(w, http.StatusOK, resp)
}

// CollectRequest represents a data collection request
type CollectRequest struct {
	Codes []string `json:"codes"`
}

// CollectResult summarizes one stock's fetch
type CollectResult struct {
	Code           string   `json:"code"`
	Name           string   `json:"name,omitempty"`
	RevenueMonths  int      `json:"revenue_months"`
	ProfitQuarters int      `json:"profit_quarters"`
	AnnualYears    int      `json:"annual_years"`
	PEDays         int      `json:"pe_days"`
	HasPrice       bool     `json:"has_price"`
	News           int      `json:"news"`
	Warnings       []string `json:"warnings,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// CollectResponse represents a data collection response
type CollectResponse struct {
	Status  string                         `json:"status"`
	Results []CollectResult                `json:"results"`
	Quality *contracts.DataQualitySnapshot `json:"quality,omitempty"`
}

// Collect fetches data for codes without running the analysis stages
// POST /api/data/collect
func (h *DataHandler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse request
	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	codes := s1_universe.Normalize(req.Codes)
	if len(codes) == 0 {
		RespondError(w, http.StatusUnprocessableEntity, "codes is required")
		return
	}
	if limit := h.strategy.Universe.MaxBatch; len(codes) > limit {
		RespondError(w, http.StatusBadRequest, "too many codes for one batch")
		return
	}

	h.logger.WithField("codes", codes).Info("Data collection triggered")

	fetched := h.collector.CollectAll(ctx, codes, collector.Config{Workers: h.workers})

	resp := CollectResponse{Status: "success", Results: make([]CollectResult, len(fetched))}
	batch := make([]*contracts.StockData, 0, len(fetched))
	for i, f := range fetched {
		resp.Results[i] = summarize(f)
		if f.Error != nil {
			resp.Status = "partial"
			continue
		}
		batch = append(batch, f.Data)
	}

	if len(batch) > 0 {
		snapshot, err := h.qualityGate.Check(ctx, batch)
		if err != nil {
			h.logger.WithError(err).Error("Quality check failed")
			RespondError(w, http.StatusInternalServerError, "Quality check failed")
			return
		}
		resp.Quality = snapshot
	} else {
		resp.Status = "failed"
	}

	RespondJSON(w, http.StatusOK, resp)
}

func summarize(f collector.FetchResult) CollectResult {
	out := CollectResult{Code: f.StockCode}
	if f.Error != nil {
		out.Error = f.Error.Error()
		return out
	}
	d := f.Data
	out.Name = d.Info.Name
	out.RevenueMonths = len(d.Revenue)
	out.ProfitQuarters = len(d.Profit)
	out.AnnualYears = len(d.Annual)
	out.PEDays = len(d.Valuation)
	out.HasPrice = d.Quote != nil
	out.News = len(d.News)
	out.Warnings = d.Warnings
	return out
}

// RespondJSON writes data as a JSON body with status
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes {"error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
