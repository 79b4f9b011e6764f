package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/fundlens/internal/api/handlers"
	"github.com/wonny/fundlens/pkg/logger"
)

// RequestIDHeader carries the per-request id echoed in every response
const RequestIDHeader = "X-Request-ID"

// Handlers bundles every endpoint group
type Handlers struct {
	Analysis     *handlers.AnalysisHandler
	Data         *handlers.DataHandler
	Scheduler    *handlers.SchedulerHandler
	StrategyHash string
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(h.StrategyHash)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Analysis
	api.HandleFunc("/analyze", h.Analysis.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/stocks/{code}/report", h.Analysis.GetStockReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/ranking.csv", h.Analysis.GetRankingCSV).Methods(http.MethodGet)

	// Data (S0/S1)
	api.HandleFunc("/data/quality", h.Data.GetQuality).Methods(http.MethodGet)
	api.HandleFunc("/data/universe", h.Data.GetUniverse).Methods(http.MethodGet)
	api.HandleFunc("/data/collect", h.Data.Collect).Methods(http.MethodPost)

	// Scheduler
	if h.Scheduler == nil {
		h.Scheduler = handlers.NewSchedulerHandler(nil, log)
	}
	api.HandleFunc("/scheduler/jobs", h.Scheduler.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/scheduler/jobs/{name}/history", h.Scheduler.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/scheduler/jobs/{name}/run", h.Scheduler.RunJob).Methods(http.MethodPost)

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(strategyHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"service":  "fundlens-api",
			"strategy": strategyHash,
		})
	}
}

// requestIDMiddleware keeps a caller-supplied X-Request-ID or assigns one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry := log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
				"request_id": r.Header.Get(RequestIDHeader),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("HTTP request")
				return
			}
			entry.Debug("HTTP request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": r.Header.Get(RequestIDHeader),
					}).Error("Panic recovered")

					handlers.RespondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
