package finmind

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/fundlens/internal/contracts"
	"github.com/wonny/fundlens/internal/s0_data"
	"github.com/wonny/fundlens/pkg/redis"
)

// FetchStockInfo looks a ticker up in the listed-stock master table
// ⭐ SSOT: 종목명/산업 조회는 이 함수에서만
func (c *Client) FetchStockInfo(ctx context.Context, code string) (*contracts.StockInfo, error) {
	rows, err := c.fetchDataset(ctx, DatasetStockInfo, "", time.Time{}, redis.TTLWeekly)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		if r.Get("stock_id").String() != code {
			continue
		}
		return &contracts.StockInfo{
			Code:     code,
			Name:     r.Get("stock_name").String(),
			Industry: r.Get("industry_category").String(),
			Market:   r.Get("type").String(),
		}, nil
	}
	return nil, fmt.Errorf("%s: %w", code, contracts.ErrUnknownStock)
}

// FetchMonthlyRevenue returns raw monthly revenue rows since start
func (c *Client) FetchMonthlyRevenue(ctx context.Context, code string, start time.Time) ([]s0_data.MonthlyRevenue, error) {
	rows, err := c.fetchDataset(ctx, DatasetRevenue, code, start, redis.TTLDaily)
	if err != nil {
		return nil, err
	}
	return parseRevenue(rows), nil
}

// FetchIncomeStatement returns the quarterly income statement in long format
func (c *Client) FetchIncomeStatement(ctx context.Context, code string, start time.Time) ([]s0_data.StatementItem, error) {
	rows, err := c.fetchDataset(ctx, DatasetIncome, code, start, redis.TTLDaily)
	if err != nil {
		return nil, err
	}
	return parseStatement(rows), nil
}

// FetchBalanceSheet returns the quarterly balance sheet in long format
func (c *Client) FetchBalanceSheet(ctx context.Context, code string, start time.Time) ([]s0_data.StatementItem, error) {
	rows, err := c.fetchDataset(ctx, DatasetBalance, code, start, redis.TTLDaily)
	if err != nil {
		return nil, err
	}
	return parseStatement(rows), nil
}

// FetchPER returns daily PE / PBR / dividend yield since start
func (c *Client) FetchPER(ctx context.Context, code string, start time.Time) ([]contracts.ValuationPoint, error) {
	rows, err := c.fetchDataset(ctx, DatasetPER, code, start, redis.TTLDaily)
	if err != nil {
		return nil, err
	}

	out := make([]contracts.ValuationPoint, 0, len(rows))
	for _, r := range rows {
		d, ok := parseDate(r.Get("date").String())
		if !ok {
			continue
		}
		out = append(out, contracts.ValuationPoint{
			Date:          d,
			PE:            r.Get("PER").Float(),
			PBR:           r.Get("PBR").Float(),
			DividendYield: r.Get("dividend_yield").Float(),
		})
	}
	return out, nil
}

// FetchLatestClose returns the most recent close since start, nil when no session traded
func (c *Client) FetchLatestClose(ctx context.Context, code string, start time.Time) (*contracts.Quote, error) {
	rows, err := c.fetchDataset(ctx, DatasetPrice, code, start, redis.TTLShort)
	if err != nil {
		return nil, err
	}

	var latest *contracts.Quote
	for _, r := range rows {
		d, ok := parseDate(r.Get("date").String())
		if !ok {
			continue
		}
		if latest == nil || d.After(latest.Date) {
			latest = &contracts.Quote{Date: d, Close: r.Get("close").Float()}
		}
	}
	return latest, nil
}

// FetchBondYield returns the latest US 10-year yield in percent
func (c *Client) FetchBondYield(ctx context.Context, start time.Time) (float64, time.Time, error) {
	rows, err := c.fetchDataset(ctx, DatasetBondYield, USTreasury10Y, start, redis.TTLShort)
	if err != nil {
		return 0, time.Time{}, err
	}

	var (
		latest time.Time
		value  float64
		found  bool
	)
	for _, r := range rows {
		d, ok := parseDate(r.Get("date").String())
		if !ok || !r.Get("value").Exists() {
			continue
		}
		if !found || d.After(latest) {
			latest, value, found = d, r.Get("value").Float(), true
		}
	}
	if !found {
		return 0, time.Time{}, fmt.Errorf("%s: no rows since %s", USTreasury10Y, start.Format(dateLayout))
	}
	return value, latest, nil
}

// FetchNews returns headlines since start, newest first, titles cleaned
func (c *Client) FetchNews(ctx context.Context, code string, start time.Time) ([]contracts.NewsItem, error) {
	rows, err := c.fetchDataset(ctx, DatasetNews, code, start, redis.TTLMedium)
	if err != nil {
		return nil, err
	}

	out := make([]contracts.NewsItem, 0, len(rows))
	for _, r := range rows {
		d, ok := parseDate(r.Get("date").String())
		if !ok {
			continue
		}
		title := CleanTitle(r.Get("title").String())
		if title == "" {
			continue
		}
		out = append(out, contracts.NewsItem{
			Date:   d,
			Title:  title,
			Source: strings.TrimSpace(r.Get("source").String()),
			Link:   strings.TrimSpace(r.Get("link").String()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func parseRevenue(rows []gjson.Result) []s0_data.MonthlyRevenue {
	out := make([]s0_data.MonthlyRevenue, 0, len(rows))
	for _, r := range rows {
		year, month := r.Get("revenue_year").Int(), r.Get("revenue_month").Int()
		if year == 0 || month < 1 || month > 12 {
			continue
		}
		out = append(out, s0_data.MonthlyRevenue{
			Year:    int(year),
			Month:   int(month),
			Revenue: r.Get("revenue").Float(),
		})
	}
	return out
}

func parseStatement(rows []gjson.Result) []s0_data.StatementItem {
	out := make([]s0_data.StatementItem, 0, len(rows))
	for _, r := range rows {
		d, ok := parseDate(r.Get("date").String())
		if !ok || !r.Get("value").Exists() {
			continue
		}
		out = append(out, s0_data.StatementItem{
			Date:  d,
			Type:  r.Get("type").String(),
			Value: r.Get("value").Float(),
		})
	}
	return out
}
