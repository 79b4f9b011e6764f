package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.Empty(t, client.Addr())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	ctx := context.Background()

	// Redis 없이는 쿼터 없음
	wait, err := limiter.Take(ctx, FinMindQuota(600))
	require.NoError(t, err)
	assert.Zero(t, wait)

	used, err := limiter.Used(ctx, YahooQuota)
	require.NoError(t, err)
	assert.Zero(t, used)

	assert.NoError(t, limiter.Wait(ctx, YahooQuota))
}

func TestFinMindQuota(t *testing.T) {
	assert.Equal(t, Quota{Name: "finmind", Limit: 600, Window: time.Hour}, FinMindQuota(0))
	assert.Equal(t, 6000, FinMindQuota(6000).Limit)
}

func TestQuotaWindow(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "fundlens")
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		window   time.Duration
		wantWait time.Duration
		sameKey  bool
	}{
		{"window start", base, time.Hour, time.Hour, true},
		{"mid window", base.Add(20 * time.Minute), time.Hour, 40 * time.Minute, true},
		{"last ms", base.Add(time.Hour - time.Millisecond), time.Hour, time.Millisecond, true},
		{"next window", base.Add(time.Hour), time.Hour, time.Hour, false},
		{"sub-second", base.Add(1500 * time.Millisecond), time.Second, 500 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quota{Name: "finmind", Limit: 1, Window: tt.window}
			assert.Equal(t, tt.wantWait, untilNextWindow(tt.now, tt.window))
			assert.Equal(t, tt.sameKey, limiter.quotaKey(q, tt.now) == limiter.quotaKey(q, base))
		})
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	calls := 0
	var got []float64
	err := cache.GetOrSet(ctx, "pe", &got, TTLDaily, func() (interface{}, error) {
		calls++
		return []float64{10.5, 12.25}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 12.25}, got)
	assert.Equal(t, 1, calls)

	boom := errors.New("provider down")
	err = cache.GetOrSet(ctx, "pe", &got, TTLDaily, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"DatasetKey", DatasetKey("TaiwanStockMonthRevenue", "2330", "2023-01-01"), "dataset:TaiwanStockMonthRevenue:2330:2023-01-01"},
		{"StockInfoKey", StockInfoKey("2330"), "stock:info:2330"},
		{"ReportKey", ReportKey("2330"), "report:2330"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
