package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wonny/fundlens/internal/brain"
	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/external/finmind"
	"github.com/wonny/fundlens/internal/external/yahoo"
	"github.com/wonny/fundlens/internal/s0_data"
	"github.com/wonny/fundlens/internal/s0_data/collector"
	"github.com/wonny/fundlens/internal/s0_data/quality"
	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/selection"
	"github.com/wonny/fundlens/internal/strategyconfig"
	"github.com/wonny/fundlens/pkg/config"
	"github.com/wonny/fundlens/pkg/database"
	"github.com/wonny/fundlens/pkg/httputil"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
	"github.com/wonny/fundlens/pkg/trace"
)

const redisPrefix = "fundlens"

// app holds every wired dependency of one CLI invocation
// ⭐ SSOT: 의존성 조립은 여기서만 (config → logger → trace → redis → sources → pipeline)
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyHash string

	redis     *redis.Client
	cache     *redis.Cache
	db        *database.DB
	collector *collector.Collector
	gate      *quality.QualityGate
	orch      *brain.Orchestrator
}

// newApp loads configuration and wires the pipeline
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	a := &app{cfg: cfg, log: logger.New(cfg)}

	if err := trace.Init(cfg); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := a.loadStrategy(); err != nil {
		return nil, err
	}

	a.redis, err = redis.New(cfg)
	if err != nil {
		// 캐시 없이도 분석 가능
		a.log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis, _ = redis.New(&config.Config{})
	}
	a.cache = redis.NewCache(a.redis, redisPrefix)

	source, bonds, err := a.sources()
	if err != nil {
		a.close()
		return nil, err
	}

	analysis := a.strategy.Analysis
	a.collector = collector.NewCollector(source, bonds, cfg.DefaultBondYield, analysis.NewsDays, a.log)
	a.gate = quality.NewQualityGate(quality.Config{MinQualityScore: analysis.MinQualityScore})
	a.orch = brain.NewOrchestrator(
		s1_universe.NewBuilder(s1_universe.ConfigFrom(a.strategy)),
		a.collector,
		a.gate,
		selection.NewRanker(a.log),
		brain.Config{Concurrency: analysis.Concurrency},
		a.log,
	)

	a.log.WithFields(map[string]interface{}{
		"data_source": dataSourceName(cfg),
		"bond_source": cfg.BondSource,
		"strategy":    a.strategy.Meta.StrategyID,
		"hash":        a.strategyHash,
		"redis":       a.redis.Enabled(),
	}).Debug("Pipeline wired")

	return a, nil
}

// loadStrategy reads the strategy file. Without one, analysis settings come from env.
func (a *app) loadStrategy() error {
	path := a.cfg.StrategyPath
	if strategyPath != "" {
		path = strategyPath
	}

	cfg, found, err := strategyconfig.LoadOrDefault(path, func(c *strategyconfig.Config) {
		c.Analysis.Concurrency = a.cfg.AnalysisConcurrency
		c.Analysis.NewsDays = a.cfg.NewsDays
		c.Analysis.ValuationYears = a.cfg.ValuationYears
	})
	if err != nil {
		return fmt.Errorf("strategy %s: %w", path, err)
	}
	if !found {
		a.log.WithField("path", path).Warn("Strategy file not found, using defaults")
	}
	for _, w := range strategyconfig.Warn(cfg) {
		a.log.WithField("code", w.Code).Warn(w.Message)
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	a.strategy, a.strategyHash = cfg, hash
	return nil
}

// sources picks the fundamental source and the ordered bond yield sources
func (a *app) sources() (contracts.FundamentalSource, []contracts.BondYieldSource, error) {
	if offline {
		names := make(map[string]string, len(a.strategy.Universe.Stocks))
		for code, e := range a.strategy.Universe.Stocks {
			names[code] = e.Name
		}
		src := s0_data.SampleSource(names)
		return src, []contracts.BondYieldSource{src}, nil
	}

	cfg := a.cfg
	limiter := redis.NewRateLimiter(a.redis, redisPrefix)

	httpClient := httputil.NewWithTimeout(cfg, a.log, cfg.FinMind.Timeout).
		WithQuota(limiter, redis.FinMindQuota(cfg.FinMind.RatePerHour))
	fm := finmind.NewSource(finmind.NewClient(httpClient, a.log, cfg.FinMind, a.cache), a.strategy.Analysis.ValuationYears)
	yh := yahoo.NewBondSource(a.log, limiter)

	bonds := []contracts.BondYieldSource{fm, yh}
	if cfg.BondSource == config.SourceYahoo {
		bonds = []contracts.BondYieldSource{yh, fm}
	}

	if cfg.DataSource != config.SourcePostgres {
		return fm, bonds, nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.CheckMirror(ctx, s0_data.MirrorTables...); err != nil {
		return nil, nil, err
	}
	a.log.WithField("tables", len(s0_data.MirrorTables)).Info("Connected to mirror database")

	repo := s0_data.NewRepository(db.Pool, a.strategy.Analysis.ValuationYears)
	return repo, append([]contracts.BondYieldSource{repo}, bonds...), nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = trace.Shutdown(context.Background())
}

func dataSourceName(cfg *config.Config) string {
	if offline {
		return "sample"
	}
	return cfg.DataSource
}

// stderrSink streams the run log to stderr
func stderrSink() contracts.LogSink {
	return contracts.LogFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	})
}
