package s0_data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
)

// MemorySource serves prepared series from memory. Used by tests and offline runs.
type MemorySource struct {
	mu     sync.RWMutex
	stocks map[string]*contracts.StockData
	errs   map[string]error
	yield  float64
	calls  map[string]int
}

// NewMemorySource creates an empty in-memory source with the given bond yield.
func NewMemorySource(bondYield float64) *MemorySource {
	return &MemorySource{
		stocks: make(map[string]*contracts.StockData),
		errs:   make(map[string]error),
		yield:  bondYield,
		calls:  make(map[string]int),
	}
}

// Put registers the data served for d.Info.Code.
func (m *MemorySource) Put(d *contracts.StockData) *MemorySource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[d.Info.Code] = d
	return m
}

// Fail makes every call for code return err.
func (m *MemorySource) Fail(code string, err error) *MemorySource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[code] = err
	return m
}

// Calls returns how many series requests were made for code.
func (m *MemorySource) Calls(code string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[code]
}

func (m *MemorySource) get(code string) (*contracts.StockData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[code]++
	if err := m.errs[code]; err != nil {
		return nil, err
	}
	d, ok := m.stocks[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, contracts.ErrUnknownStock)
	}
	return d, nil
}

// StockInfo implements contracts.FundamentalSource
func (m *MemorySource) StockInfo(ctx context.Context, code string) (*contracts.StockInfo, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	info := d.Info
	return &info, nil
}

// MonthlyRevenue implements contracts.FundamentalSource
func (m *MemorySource) MonthlyRevenue(ctx context.Context, code string) ([]contracts.RevenuePoint, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	if len(d.Revenue) < MinRevenueMonths {
		return nil, fmt.Errorf("revenue: %d months: %w", len(d.Revenue), contracts.ErrInsufficientData)
	}
	return append([]contracts.RevenuePoint(nil), d.Revenue...), nil
}

// Profitability implements contracts.FundamentalSource
func (m *MemorySource) Profitability(ctx context.Context, code string) ([]contracts.ProfitPoint, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	return append([]contracts.ProfitPoint(nil), d.Profit...), nil
}

// AnnualReturns implements contracts.FundamentalSource
func (m *MemorySource) AnnualReturns(ctx context.Context, code string) ([]contracts.AnnualReturn, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	return append([]contracts.AnnualReturn(nil), d.Annual...), nil
}

// ValuationHistory implements contracts.FundamentalSource
func (m *MemorySource) ValuationHistory(ctx context.Context, code string) ([]contracts.ValuationPoint, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	return append([]contracts.ValuationPoint(nil), d.Valuation...), nil
}

// LatestPrice implements contracts.FundamentalSource
func (m *MemorySource) LatestPrice(ctx context.Context, code string) (*contracts.Quote, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	if d.Quote == nil {
		return nil, fmt.Errorf("%s price: %w", code, contracts.ErrSourceNotFound)
	}
	q := *d.Quote
	return &q, nil
}

// News implements contracts.FundamentalSource
func (m *MemorySource) News(ctx context.Context, code string, since time.Time) ([]contracts.NewsItem, error) {
	d, err := m.get(code)
	if err != nil {
		return nil, err
	}
	var out []contracts.NewsItem
	for _, n := range d.News {
		if !n.Date.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

// TenYearYield implements contracts.BondYieldSource
func (m *MemorySource) TenYearYield(ctx context.Context) (float64, error) {
	if m.yield <= 0 {
		return 0, fmt.Errorf("bond yield: %w", contracts.ErrSourceNotFound)
	}
	return m.yield, nil
}

var (
	_ contracts.FundamentalSource = (*MemorySource)(nil)
	_ contracts.BondYieldSource   = (*MemorySource)(nil)
)
