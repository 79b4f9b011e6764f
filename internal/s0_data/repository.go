package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundlens/internal/contracts"
)

// Repository reads a PostgreSQL mirror of the provider datasets (schema "finmind")
// ⭐ SSOT: DB 미러 조회는 여기서만 (읽기 전용)
type Repository struct {
	db             *pgxpool.Pool
	valuationYears int
	now            func() time.Time
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool, valuationYears int) *Repository {
	return &Repository{db: db, valuationYears: valuationYears, now: time.Now}
}

// MirrorTables lists every table the repository reads
var MirrorTables = []string{
	"finmind.stock_info",
	"finmind.month_revenue",
	tableIncome,
	tableBalance,
	"finmind.per",
	"finmind.price",
	"finmind.news",
	"finmind.bond_yield",
}

// StockInfo returns name and industry for a ticker
func (r *Repository) StockInfo(ctx context.Context, code string) (*contracts.StockInfo, error) {
	query := `
		SELECT stock_id, stock_name, COALESCE(industry_category, ''), COALESCE(type, '')
		FROM finmind.stock_info
		WHERE stock_id = $1
		LIMIT 1
	`

	var info contracts.StockInfo
	err := r.db.QueryRow(ctx, query, code).Scan(&info.Code, &info.Name, &info.Industry, &info.Market)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", code, contracts.ErrUnknownStock)
	}
	if err != nil {
		return nil, fmt.Errorf("query stock info: %w", err)
	}
	return &info, nil
}

// MonthlyRevenue returns the revenue series with YoY ratios
func (r *Repository) MonthlyRevenue(ctx context.Context, code string) ([]contracts.RevenuePoint, error) {
	query := `
		SELECT revenue_year, revenue_month, revenue
		FROM finmind.month_revenue
		WHERE stock_id = $1 AND make_date(revenue_year, revenue_month, 1) >= $2
		ORDER BY revenue_year, revenue_month
	`

	rows, err := r.db.Query(ctx, query, code, RevenueStart(r.now()))
	if err != nil {
		return nil, fmt.Errorf("query month revenue: %w", err)
	}
	defer rows.Close()

	var raw []MonthlyRevenue
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.Revenue); err != nil {
			return nil, fmt.Errorf("scan month revenue: %w", err)
		}
		raw = append(raw, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month revenue: %w", err)
	}

	return BuildRevenueSeries(raw)
}

// Profitability returns the trailing quarterly margins
func (r *Repository) Profitability(ctx context.Context, code string) ([]contracts.ProfitPoint, error) {
	income, err := r.statement(ctx, tableIncome, code, StatementStart(r.now()))
	if err != nil {
		return nil, err
	}
	if len(income) == 0 {
		return nil, fmt.Errorf("%s income statement: %w", code, contracts.ErrSourceNotFound)
	}
	return BuildProfitSeries(income), nil
}

// AnnualReturns returns annualized ROE / EPS per year
func (r *Repository) AnnualReturns(ctx context.Context, code string) ([]contracts.AnnualReturn, error) {
	start := AnnualStart(r.now())

	income, err := r.statement(ctx, tableIncome, code, start)
	if err != nil {
		return nil, err
	}
	balance, err := r.statement(ctx, tableBalance, code, start)
	if err != nil {
		return nil, err
	}
	if len(income) == 0 && len(balance) == 0 {
		return nil, fmt.Errorf("%s statements: %w", code, contracts.ErrSourceNotFound)
	}
	return BuildAnnualReturns(income, balance), nil
}

const (
	tableIncome  = "finmind.financial_statements"
	tableBalance = "finmind.balance_sheet"
)

// statement reads one long-format statement table
func (r *Repository) statement(ctx context.Context, table, code string, start time.Time) ([]StatementItem, error) {
	query := fmt.Sprintf(`
		SELECT date, type, value
		FROM %s
		WHERE stock_id = $1 AND date >= $2 AND value IS NOT NULL
		ORDER BY date
	`, table)

	rows, err := r.db.Query(ctx, query, code, start)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var items []StatementItem
	for rows.Next() {
		var it StatementItem
		if err := rows.Scan(&it.Date, &it.Type, &it.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ValuationHistory returns the PE/PBR window
func (r *Repository) ValuationHistory(ctx context.Context, code string) ([]contracts.ValuationPoint, error) {
	query := `
		SELECT date, COALESCE(per, 0), COALESCE(pbr, 0), COALESCE(dividend_yield, 0)
		FROM finmind.per
		WHERE stock_id = $1 AND date >= $2
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, code, ValuationStart(r.now(), r.valuationYears))
	if err != nil {
		return nil, fmt.Errorf("query per: %w", err)
	}
	defer rows.Close()

	var out []contracts.ValuationPoint
	for rows.Next() {
		var v contracts.ValuationPoint
		if err := rows.Scan(&v.Date, &v.PE, &v.PBR, &v.DividendYield); err != nil {
			return nil, fmt.Errorf("scan per: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate per: %w", err)
	}

	return BuildValuationHistory(out), nil
}

// LatestPrice returns the last close within the price lookback
func (r *Repository) LatestPrice(ctx context.Context, code string) (*contracts.Quote, error) {
	query := `
		SELECT date, close
		FROM finmind.price
		WHERE stock_id = $1 AND date >= $2
		ORDER BY date DESC
		LIMIT 1
	`

	var q contracts.Quote
	err := r.db.QueryRow(ctx, query, code, PriceStart(r.now())).Scan(&q.Date, &q.Close)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s price: %w", code, contracts.ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query price: %w", err)
	}
	return &q, nil
}

// News returns headlines since the given time, newest first
func (r *Repository) News(ctx context.Context, code string, since time.Time) ([]contracts.NewsItem, error) {
	query := `
		SELECT date, title, COALESCE(source, ''), COALESCE(link, '')
		FROM finmind.news
		WHERE stock_id = $1 AND date >= $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, code, since)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var out []contracts.NewsItem
	for rows.Next() {
		var n contracts.NewsItem
		if err := rows.Scan(&n.Date, &n.Title, &n.Source, &n.Link); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// TenYearYield returns the latest mirrored US 10-year yield in percent
func (r *Repository) TenYearYield(ctx context.Context) (float64, error) {
	query := `
		SELECT value
		FROM finmind.bond_yield
		WHERE name = 'United States 10-Year' AND date >= $1
		ORDER BY date DESC
		LIMIT 1
	`

	var v float64
	err := r.db.QueryRow(ctx, query, BondStart(r.now())).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("bond yield: %w", contracts.ErrSourceNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query bond yield: %w", err)
	}
	return v, nil
}

var (
	_ contracts.FundamentalSource = (*Repository)(nil)
	_ contracts.BondYieldSource   = (*Repository)(nil)
)
