package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores JSON-encoded provider payloads and reports under one prefix
// ⭐ SSOT: 캐시 키 규칙은 여기서만 ({prefix}:cache:{key})
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + ":cache:" + k
}

// Get decodes the cached value into dest. A miss is (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	switch {
	case IsNil(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value for ttl
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// GetOrSet serves key from cache, or fills dest from fn and stores it.
// Redis read/write failures degrade to calling fn; fn's error is returned as is.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	if found, err := c.Get(ctx, key, dest); err == nil && found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return json.Unmarshal(data, dest)
}

// TTLs per data cadence
const (
	TTLShort  = 10 * time.Minute // 종가, 금리
	TTLMedium = 6 * time.Hour    // 뉴스, 분석 리포트
	TTLDaily  = 24 * time.Hour   // 월매출, 재무제표, PER/PBR
	TTLWeekly = 7 * 24 * time.Hour // 상장 종목 마스터
)

// DatasetKey is the cache key for one provider dataset query
func DatasetKey(dataset, dataID, startDate string) string {
	return fmt.Sprintf("dataset:%s:%s:%s", dataset, dataID, startDate)
}

// StockInfoKey is the cache key for the listed-stock master table
func StockInfoKey(code string) string {
	return fmt.Sprintf("stock:info:%s", code)
}

// ReportKey is the cache key for the last analysis report of a stock
func ReportKey(code string) string {
	return fmt.Sprintf("report:%s", code)
}
