package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s2_growth"
	"github.com/wonny/fundlens/internal/s3_profit"
	"github.com/wonny/fundlens/internal/s4_return"
	"github.com/wonny/fundlens/internal/s5_valuation"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/trace"
)

// DefaultConcurrency is the number of stocks analyzed at once.
const DefaultConcurrency = 3

// Orchestrator coordinates the S0~S6 pipeline for one batch of codes
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	universeBuilder contracts.UniverseBuilder
	collector       *collector.Collector
	qualityGate     contracts.QualityGate
	ranker          contracts.Ranker

	concurrency int
	logger      *logger.Logger
	now         func() time.Time
}

// Config holds orchestrator settings
type Config struct {
	Concurrency int
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	BondYield  float64
	Universe   *contracts.Universe
	Reports    []*contracts.Report // 요청 순서
	Ranking    []contracts.RankedReport
	Skipped    []contracts.Skip
	Quality    *contracts.DataQualitySnapshot
	Log        *contracts.RunLog
	TraceID    string
	Incomplete bool // 취소로 일부 종목 미분석
}

// Report returns the report for code, nil if it was skipped.
func (r *RunResult) Report(code string) *contracts.Report {
	for _, rep := range r.Reports {
		if rep.Code == code {
			return rep
		}
	}
	return nil
}

// NothingAnalyzed returns ErrNothingAnalyzed with the skip count when the
// run produced no report, nil otherwise.
func (r *RunResult) NothingAnalyzed() error {
	if len(r.Reports) > 0 {
		return nil
	}
	return fmt.Errorf("%w (%d skipped)", contracts.ErrNothingAnalyzed, len(r.Skipped))
}

// Skip returns why code produced no report, nil if it was analyzed.
func (r *RunResult) Skip(code string) *contracts.Skip {
	for i := range r.Skipped {
		if r.Skipped[i].Code == code {
			return &r.Skipped[i]
		}
	}
	return nil
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	universeBuilder contracts.UniverseBuilder,
	collector *collector.Collector,
	qualityGate contracts.QualityGate,
	ranker contracts.Ranker,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		universeBuilder: universeBuilder,
		collector:       collector,
		qualityGate:     qualityGate,
		ranker:          ranker,
		concurrency:     cfg.Concurrency,
		logger:          log.WithField("module", "orchestrator"),
		now:             time.Now,
	}
}

// Run executes the pipeline for codes
// S0 → S1 → S2 → S3 → S4 → S5 → S6
//
// Only S1 failures (empty or oversized batch) abort the run. Every other
// failure skips that one stock. tee, if non-nil, mirrors the run log.
func (o *Orchestrator) Run(ctx context.Context, codes []string, tee contracts.LogSink) (*RunResult, error) {
	startTime := o.now()
	runID := uuid.NewString()

	ctx, span := trace.StartSpan(ctx, "pipeline.run",
		attribute.String("run.id", runID),
		attribute.Int("run.requested", len(codes)),
	)
	defer span.End()

	result := &RunResult{
		RunID:     runID,
		StartedAt: startTime,
		Log:       contracts.NewRunLog(tee),
		TraceID:   trace.TraceID(ctx),
	}
	run := result.Log

	o.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"codes":  codes,
	}).Info("Starting pipeline run")

	// S1: Universe
	universe, err := o.universeBuilder.Build(ctx, codes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "universe")
		contracts.Logf(run, "❌ %v", err)
		return result, fmt.Errorf("%s: %w", contracts.StageUniverse.ShortName(), err)
	}
	result.Universe = universe
	contracts.Logf(run, "🚀 Run %s: %d stocks %v", runID[:8], universe.Count(), universe.Stocks)

	seen := make(map[string]bool)
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		excluded, reason := universe.IsExcluded(code)
		if !excluded || seen[code] {
			continue
		}
		seen[code] = true
		contracts.Logf(run.Sink(code), "⚠️ Skipped: %s", reason)
		result.Skipped = append(result.Skipped, contracts.Skip{Code: code, Stage: contracts.StageUniverse, Reason: reason, Err: contracts.ErrNotRecommended})
	}
	for _, code := range universe.Stocks {
		if w, ok := universe.Warnings[code]; ok {
			contracts.Logf(run.Sink(code), "⚠️ %s", w)
		}
	}

	// 금리는 배치당 1회 조회
	result.BondYield = o.collector.BondYield(ctx, run)

	// S0 + S2~S5 per stock, isolated
	reports := make([]*contracts.Report, len(universe.Stocks))
	data := make([]*contracts.StockData, len(universe.Stocks))
	skips := make([]*contracts.Skip, len(universe.Stocks))

	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i, code := range universe.Stocks {
		g.Go(func() error {
			reports[i], data[i], skips[i] = o.analyzeStock(ctx, code, universe, result.BondYield, run)
			return nil
		})
	}
	_ = g.Wait()

	batch := make([]*contracts.StockData, 0, len(data))
	for i := range universe.Stocks {
		if reports[i] != nil {
			result.Reports = append(result.Reports, reports[i])
		}
		if skips[i] != nil {
			result.Skipped = append(result.Skipped, *skips[i])
		}
		if data[i] != nil {
			batch = append(batch, data[i])
		}
	}

	if err := ctx.Err(); err != nil {
		result.Incomplete = true
		result.Duration = o.now().Sub(startTime)
		span.SetStatus(otelcodes.Error, "cancelled")
		return result, err
	}

	// S0 quality summary over what was collected
	if o.qualityGate != nil && len(batch) > 0 {
		snapshot, err := o.qualityGate.Check(ctx, batch)
		if err != nil {
			o.logger.WithError(err).Warn("Quality check failed")
		} else {
			result.Quality = snapshot
			mark := "✅"
			if !snapshot.Passed {
				mark = "⚠️"
			}
			contracts.Logf(run, "%s Data quality %.2f (%d/%d stocks complete)", mark, snapshot.QualityScore, snapshot.ValidStocks, snapshot.TotalStocks)
		}
	}

	// S6: Ranking
	ranking, err := o.ranker.Rank(ctx, result.Reports)
	if err != nil {
		return result, fmt.Errorf("%s: %w", contracts.StageRanking.ShortName(), err)
	}
	result.Ranking = ranking

	result.Duration = o.now().Sub(startTime)
	contracts.Logf(run, "🏁 Done: %d analyzed, %d skipped", len(result.Reports), len(result.Skipped))

	o.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"analyzed": len(result.Reports),
		"skipped":  len(result.Skipped),
		"duration": result.Duration,
	}).Info("Pipeline run completed")

	span.SetAttributes(
		attribute.Int("run.analyzed", len(result.Reports)),
		attribute.Int("run.skipped", len(result.Skipped)),
	)
	return result, nil
}

// analyzeStock runs S0 and S2~S5 for one code. Exactly one of report and skip is set.
func (o *Orchestrator) analyzeStock(
	ctx context.Context,
	code string,
	universe *contracts.Universe,
	bondYield float64,
	run *contracts.RunLog,
) (*contracts.Report, *contracts.StockData, *contracts.Skip) {
	sink := run.Sink(code)
	ctx, span := trace.StartSpan(ctx, "stock.analyze", attribute.String("stock.code", code))
	defer span.End()

	skip := func(st contracts.Stage, err error) *contracts.Skip {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, st.String())
		contracts.Logf(sink, "❌ %s failed: %v", st.ShortName(), err)
		o.logger.WithError(err).WithFields(map[string]interface{}{
			"stock": code,
			"stage": st,
		}).Warn("Stock skipped")
		return &contracts.Skip{Code: code, Stage: st, Reason: err.Error(), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, skip(contracts.StageData, err)
	}

	contracts.Logf(sink, "🔍 Processing %s", code)

	// S0: Data
	var d *contracts.StockData
	err := stage(ctx, contracts.StageData, func() (err error) {
		d, err = o.collector.Collect(ctx, code, bondYield, sink)
		return err
	})
	if err != nil {
		return nil, nil, skip(contracts.StageData, err)
	}

	rep := &contracts.Report{
		Code:      code,
		Name:      d.Info.Name,
		Industry:  d.Info.Industry,
		Note:      universe.Warnings[code],
		BondYield: d.BondYield,
		News:      d.News,
		Warnings:  append([]string(nil), d.Warnings...),
	}
	if meta, ok := universe.Meta[code]; ok {
		// 화이트리스트 표기 우선
		rep.Name, rep.Industry = meta.Name, meta.Industry
	}
	if rep.Industry == "" {
		rep.Industry = "Unknown industry"
	}
	if d.Quote != nil {
		rep.Price, rep.PriceDate = d.Quote.Close, d.Quote.Date
	}

	// S2: Growth
	contracts.Logf(sink, "📈 Growth diagnosis")
	err = stage(ctx, contracts.StageGrowth, func() (err error) {
		rep.Growth, err = s2_growth.NewAnalyzer(sink).Analyze(code, d.Revenue)
		return err
	})
	if err != nil {
		return nil, d, skip(contracts.StageGrowth, err)
	}

	// S3: Profit
	contracts.Logf(sink, "💰 Profit diagnosis")
	err = stage(ctx, contracts.StageProfit, func() (err error) {
		rep.Profit, err = s3_profit.NewAnalyzer(sink).Analyze(code, d.Profit, rep.Growth)
		return err
	})
	if err != nil {
		return nil, d, skip(contracts.StageProfit, err)
	}

	// S4: Return
	contracts.Logf(sink, "👑 Shareholder return diagnosis")
	err = stage(ctx, contracts.StageReturn, func() (err error) {
		rep.Return, err = s4_return.NewAnalyzer(sink).Analyze(code, d.Annual, rep.Growth, rep.Profit)
		return err
	})
	if err != nil {
		return nil, d, skip(contracts.StageReturn, err)
	}

	// S5: Valuation (실패해도 리포트 유지)
	if d.Quote == nil || d.Quote.Close <= 0 {
		rep.Warnings = append(rep.Warnings, "valuation: no latest price")
		contracts.Logf(sink, "⚠️ Valuation skipped: no latest price")
	} else {
		err = stage(ctx, contracts.StageValuation, func() (err error) {
			rep.Valuation, err = s5_valuation.NewAnalyzer(sink).Analyze(code, contracts.ValuationInput{
				History:    d.Valuation,
				Price:      d.Quote.Close,
				BondYield:  d.BondYield,
				ForwardEPS: rep.Return.NextYearEPS,
				Annual:     d.Annual,
			})
			return err
		})
		if err != nil {
			rep.Valuation = nil
			rep.Warnings = append(rep.Warnings, "valuation: "+err.Error())
			if !errors.Is(err, contracts.ErrValuationUnavailable) {
				o.logger.WithError(err).WithField("stock", code).Warn("Valuation failed")
			}
			contracts.Logf(sink, "⚠️ Valuation unavailable: %v", err)
		}
	}

	rep.AnalyzedAt = o.now()
	contracts.Logf(sink, "✅ Analysis complete, Master Score %.1f", rep.MasterScore())
	return rep, d, nil
}

// stage wraps one stage in a child span
func stage(ctx context.Context, s contracts.Stage, fn func() error) error {
	_, span := trace.StartSpan(ctx, "stage."+s.ShortName(), attribute.String("stage", s.String()))
	defer span.End()

	err := fn()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	return err
}
