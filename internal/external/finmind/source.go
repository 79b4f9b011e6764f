package finmind

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data"
)

// Source adapts the FinMind client to the pipeline's data contracts
// ⭐ SSOT: FinMind 원천 → contracts 시계열 변환은 여기서만
type Source struct {
	client         *Client
	valuationYears int
	now            func() time.Time
}

// NewSource creates a FundamentalSource and BondYieldSource backed by FinMind.
func NewSource(client *Client, valuationYears int) *Source {
	return &Source{client: client, valuationYears: valuationYears, now: time.Now}
}

// StockInfo returns name and industry for a ticker.
func (s *Source) StockInfo(ctx context.Context, code string) (*contracts.StockInfo, error) {
	return s.client.FetchStockInfo(ctx, code)
}

// MonthlyRevenue returns the revenue series with YoY ratios.
func (s *Source) MonthlyRevenue(ctx context.Context, code string) ([]contracts.RevenuePoint, error) {
	rows, err := s.client.FetchMonthlyRevenue(ctx, code, s0_data.RevenueStart(s.now()))
	if err != nil {
		return nil, err
	}
	return s0_data.BuildRevenueSeries(rows)
}

// Profitability returns the trailing quarterly margins.
func (s *Source) Profitability(ctx context.Context, code string) ([]contracts.ProfitPoint, error) {
	income, err := s.client.FetchIncomeStatement(ctx, code, s0_data.StatementStart(s.now()))
	if err != nil {
		return nil, err
	}
	if len(income) == 0 {
		return nil, fmt.Errorf("%s income statement: %w", code, contracts.ErrSourceNotFound)
	}
	return s0_data.BuildProfitSeries(income), nil
}

// AnnualReturns returns annualized ROE / EPS per year.
func (s *Source) AnnualReturns(ctx context.Context, code string) ([]contracts.AnnualReturn, error) {
	start := s0_data.AnnualStart(s.now())

	income, err := s.client.FetchIncomeStatement(ctx, code, start)
	if err != nil {
		return nil, err
	}
	balance, err := s.client.FetchBalanceSheet(ctx, code, start)
	if err != nil {
		return nil, err
	}
	if len(income) == 0 && len(balance) == 0 {
		return nil, fmt.Errorf("%s statements: %w", code, contracts.ErrSourceNotFound)
	}
	return s0_data.BuildAnnualReturns(income, balance), nil
}

// ValuationHistory returns the PE/PBR window.
func (s *Source) ValuationHistory(ctx context.Context, code string) ([]contracts.ValuationPoint, error) {
	rows, err := s.client.FetchPER(ctx, code, s0_data.ValuationStart(s.now(), s.valuationYears))
	if err != nil {
		return nil, err
	}
	return s0_data.BuildValuationHistory(rows), nil
}

// LatestPrice returns the last close within the price lookback.
func (s *Source) LatestPrice(ctx context.Context, code string) (*contracts.Quote, error) {
	q, err := s.client.FetchLatestClose(ctx, code, s0_data.PriceStart(s.now()))
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%s price: %w", code, contracts.ErrSourceNotFound)
	}
	return q, nil
}

// News returns headlines published since the given time.
func (s *Source) News(ctx context.Context, code string, since time.Time) ([]contracts.NewsItem, error) {
	return s.client.FetchNews(ctx, code, since)
}

// TenYearYield returns the latest US 10-year treasury yield in percent.
func (s *Source) TenYearYield(ctx context.Context) (float64, error) {
	v, _, err := s.client.FetchBondYield(ctx, s0_data.BondStart(s.now()))
	return v, err
}

var (
	_ contracts.FundamentalSource = (*Source)(nil)
	_ contracts.BondYieldSource   = (*Source)(nil)
)
