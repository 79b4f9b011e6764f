package yahoo

import (
	"context"
	"fmt"

	"github.com/piquette/finance-go/quote"

	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
)

// TenYearSymbol is the CBOE 10-year treasury yield index, quoted in percent.
const TenYearSymbol = "^TNX"

// quoteFunc fetches the regular market price for a symbol.
type quoteFunc func(symbol string) (float64, error)

func regularMarketPrice(symbol string) (float64, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, err
	}
	if q == nil {
		return 0, fmt.Errorf("%s: empty quote", symbol)
	}
	return q.RegularMarketPrice, nil
}

// BondSource reads the US 10-year yield from Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 여기서만
type BondSource struct {
	fetch   quoteFunc
	limiter *redis.RateLimiter
	logger  *logger.Logger
}

// NewBondSource creates a Yahoo-backed BondYieldSource. limiter may be nil.
func NewBondSource(log *logger.Logger, limiter *redis.RateLimiter) *BondSource {
	return &BondSource{
		fetch:   regularMarketPrice,
		limiter: limiter,
		logger:  log.WithField("module", "yahoo"),
	}
}

// TenYearYield returns the latest ^TNX level in percent.
func (b *BondSource) TenYearYield(ctx context.Context) (float64, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, redis.YahooQuota); err != nil {
			return 0, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	type result struct {
		v   float64
		err error
	}
	ch := make(chan result, 1)
	// finance-go has no context support
	go func() {
		v, err := b.fetch(TenYearSymbol)
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return 0, fmt.Errorf("yahoo %s: %w", TenYearSymbol, r.err)
		}
		if r.v <= 0 {
			return 0, fmt.Errorf("yahoo %s: non-positive yield %.4f", TenYearSymbol, r.v)
		}
		b.logger.WithField("yield", r.v).Debug("Fetched bond yield")
		return r.v, nil
	}
}
