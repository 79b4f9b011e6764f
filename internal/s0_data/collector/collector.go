package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data"
	"github.com/wonny/fundlens/pkg/logger"
)

// DefaultBondYield is used when every bond source fails (percent).
const DefaultBondYield = 4.0

// Collector gathers every series the pipeline needs for a ticker
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	source       contracts.FundamentalSource
	bonds        []contracts.BondYieldSource
	defaultYield float64
	newsDays     int
	logger       *logger.Logger
	now          func() time.Time
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance. Bond sources are tried in order.
func NewCollector(
	source contracts.FundamentalSource,
	bonds []contracts.BondYieldSource,
	defaultYield float64,
	newsDays int,
	log *logger.Logger,
) *Collector {
	if defaultYield <= 0 {
		defaultYield = DefaultBondYield
	}
	return &Collector{
		source:       source,
		bonds:        bonds,
		defaultYield: defaultYield,
		newsDays:     newsDays,
		logger:       log.WithField("module", "collector"),
		now:          time.Now,
	}
}

// FetchResult represents the result of a fetch operation
type FetchResult struct {
	StockCode string
	Data      *contracts.StockData
	Error     error
}

// BondYield returns the first yield any source reports, else the default
func (c *Collector) BondYield(ctx context.Context, sink contracts.LogSink) float64 {
	for i, src := range c.bonds {
		v, err := src.TenYearYield(ctx)
		if err == nil && v > 0 {
			contracts.Logf(sink, "    [Data] US 10Y yield %.2f%%", v)
			return v
		}
		c.logger.WithError(err).WithField("source", i).Warn("Bond yield source failed")
	}

	contracts.Logf(sink, "    [Data] ⚠️ US 10Y yield unavailable, using default %.1f%%", c.defaultYield)
	return c.defaultYield
}

// Collect fetches one ticker. Revenue, margins and annual returns are required;
// everything else degrades to a warning on the returned data.
func (c *Collector) Collect(ctx context.Context, code string, bondYield float64, sink contracts.LogSink) (*contracts.StockData, error) {
	d := &contracts.StockData{
		Info:      contracts.StockInfo{Code: code},
		BondYield: bondYield,
		FetchedAt: c.now(),
	}
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		d.Warnings = append(d.Warnings, msg)
		contracts.Logf(sink, "    [Data] ⚠️ %s", msg)
	}

	info, err := c.source.StockInfo(ctx, code)
	switch {
	case err == nil:
		d.Info = *info
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, contracts.ErrUnknownStock):
		return nil, fmt.Errorf("stock info: %w", err)
	default:
		// 종목명 조회 실패는 분석을 막지 않음
		d.Info.Name = "Unknown stock"
		warn("stock info: %v", err)
	}

	contracts.Logf(sink, "    [Data] Fetching series for %s %s", code, d.Info.Name)

	if d.Revenue, err = c.source.MonthlyRevenue(ctx, code); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	if d.Profit, err = c.source.Profitability(ctx, code); err != nil {
		return nil, fmt.Errorf("profitability: %w", err)
	}
	if d.Annual, err = c.source.AnnualReturns(ctx, code); err != nil {
		return nil, fmt.Errorf("annual returns: %w", err)
	}

	if d.Valuation, err = c.source.ValuationHistory(ctx, code); err != nil {
		warn("valuation history: %v", err)
	}
	if d.Quote, err = c.source.LatestPrice(ctx, code); err != nil {
		warn("latest price: %v", err)
	}

	news, err := c.source.News(ctx, code, s0_data.NewsStart(c.now(), c.newsDays))
	if err != nil {
		warn("news: %v", err)
	}
	d.News = s0_data.DedupNews(news, s0_data.NewsLimit)

	contracts.Logf(sink, "    [Data] revenue %d months, margins %d quarters, annual %d years, PE %d days",
		len(d.Revenue), len(d.Profit), len(d.Annual), len(d.Valuation))

	return d, nil
}

// CollectAll fetches a batch with a bounded worker pool; results keep input order
func (c *Collector) CollectAll(ctx context.Context, codes []string, cfg Config) []FetchResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	bond := c.BondYield(ctx, contracts.Discard)

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(codes),
		"workers":     workers,
		"bond_yield":  bond,
	}).Info("Starting collection")

	results := make([]FetchResult, len(codes))
	idxCh := make(chan int, len(codes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range idxCh {
				code := codes[idx]
				if err := ctx.Err(); err != nil {
					results[idx] = FetchResult{StockCode: code, Error: err}
					continue
				}

				data, err := c.Collect(ctx, code, bond, contracts.Discard)
				if err != nil {
					c.logger.WithError(err).WithFields(map[string]interface{}{
						"worker":     workerID,
						"stock_code": code,
					}).Error("Failed to collect")
				}
				results[idx] = FetchResult{StockCode: code, Data: data, Error: err}
			}
		}(i)
	}

	for i := range codes {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failed,
		"failed":  failed,
		"total":   len(results),
	}).Info("Collection completed")

	return results
}

// IsDataError reports whether err means the provider had too little data,
// as opposed to a transport failure.
func IsDataError(err error) bool {
	return errors.Is(err, contracts.ErrInsufficientData) ||
		errors.Is(err, contracts.ErrSourceNotFound) ||
		errors.Is(err, contracts.ErrMalformedSeries)
}
