package finmind

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/fundlens/pkg/config"
	"github.com/wonny/fundlens/pkg/httputil"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
)

// Dataset names on the FinMind v4 data endpoint
const (
	DatasetStockInfo  = "TaiwanStockInfo"
	DatasetRevenue    = "TaiwanStockMonthRevenue"
	DatasetIncome     = "TaiwanStockFinancialStatements"
	DatasetBalance    = "TaiwanStockBalanceSheet"
	DatasetPER        = "TaiwanStockPER"
	DatasetPrice      = "TaiwanStockPrice"
	DatasetNews       = "TaiwanStockNews"
	DatasetBondYield  = "GovernmentBondsYield"
	USTreasury10Y     = "United States 10-Year"
	dateLayout        = "2006-01-02"
	dataPath          = "/data"
	quotaExceededCode = http.StatusPaymentRequired
)

// ErrQuotaExceeded is returned when the token's hourly request quota is used up.
var ErrQuotaExceeded = errors.New("finmind: request quota exceeded")

// Client handles communication with the FinMind open data API
// ⭐ SSOT: FinMind API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache
	token      string
}

// NewClient creates a new FinMind client. cache may be nil.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.FinMindConfig, cache *redis.Cache) *Client {
	return &Client{
		httpClient: httpClient.WithBaseURL(cfg.BaseURL).WithLocalLimit(cfg.RatePerHour, time.Hour),
		logger:     log.WithField("module", "finmind"),
		cache:      cache,
		token:      cfg.Token,
	}
}

// fetchDataset returns the rows of one dataset query, served from cache when possible
func (c *Client) fetchDataset(ctx context.Context, dataset, dataID string, start time.Time, ttl time.Duration) ([]gjson.Result, error) {
	startDate := ""
	if !start.IsZero() {
		startDate = start.Format(dateLayout)
	}

	var raw string
	load := func() (interface{}, error) {
		return c.fetchRaw(ctx, dataset, dataID, startDate)
	}

	if c.cache != nil {
		if err := c.cache.GetOrSet(ctx, redis.DatasetKey(dataset, dataID, startDate), &raw, ttl, load); err != nil {
			return nil, err
		}
	} else {
		v, err := load()
		if err != nil {
			return nil, err
		}
		raw = v.(string)
	}

	rows := gjson.Parse(raw).Array()
	c.logger.WithFields(map[string]interface{}{
		"dataset": dataset,
		"data_id": dataID,
		"start":   startDate,
		"rows":    len(rows),
	}).Debug("Fetched dataset")
	return rows, nil
}

// fetchRaw calls the API and returns the raw JSON of the data array
func (c *Client) fetchRaw(ctx context.Context, dataset, dataID, startDate string) (string, error) {
	query := map[string]string{"dataset": dataset}
	if startDate != "" {
		query["start_date"] = startDate
	}
	if dataID != "" {
		query["data_id"] = dataID
	}
	if c.token != "" {
		query["token"] = c.token
	}

	resp, err := c.httpClient.Get(ctx, dataPath, query)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", dataset, dataID, err)
	}

	body := resp.Body()
	if resp.StatusCode() == quotaExceededCode {
		return "", fmt.Errorf("%s %s: %w", dataset, dataID, ErrQuotaExceeded)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%s %s: unexpected status code %d: %s", dataset, dataID, resp.StatusCode(), gjson.GetBytes(body, "msg").String())
	}

	// API는 HTTP 200이어도 본문 status로 오류를 알려줌
	if status := gjson.GetBytes(body, "status"); status.Exists() && status.Int() != http.StatusOK {
		if status.Int() == quotaExceededCode {
			return "", fmt.Errorf("%s %s: %w", dataset, dataID, ErrQuotaExceeded)
		}
		return "", fmt.Errorf("%s %s: api status %d: %s", dataset, dataID, status.Int(), gjson.GetBytes(body, "msg").String())
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || !data.IsArray() {
		return "", fmt.Errorf("%s %s: response has no data array", dataset, dataID)
	}
	return data.Raw, nil
}

// parseDate accepts "2006-01-02" and "2006-01-02 15:04:05"
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
