package httputil

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/wonny/fundlens/pkg/config"
	"github.com/wonny/fundlens/pkg/logger"
	"github.com/wonny/fundlens/pkg/redis"
)

// Client is an HTTP client wrapper with retry logic and logging
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	rc          *resty.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
	quotas      *redis.RateLimiter
	quota       redis.Quota
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// New creates a new HTTP client from config. Retries (5xx, 429, transport
// errors) run inside resty with jittered exponential backoff.
// ⭐ SSOT: resty.Client 인스턴스는 여기서만 생성
func New(cfg *config.Config, log *logger.Logger) *Client {
	c := &Client{
		rc: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "fundlens/1.0"),
		logger: log,
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
	}

	c.rc.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return IsRetryableError(resp.StatusCode())
	})
	c.rc.AddRetryHook(func(resp *resty.Response, err error) {
		fields := map[string]interface{}{}
		if resp != nil && resp.Request != nil {
			fields["attempt"] = resp.Request.Attempt
			fields["url"] = resp.Request.URL
		}
		if err != nil {
			fields["error"] = err.Error()
		} else {
			fields["status_code"] = resp.StatusCode()
		}
		c.logger.WithFields(fields).Warn("Retrying HTTP request")
	})

	return c.applyRetry()
}

// NewWithTimeout creates a client with custom timeout
func NewWithTimeout(cfg *config.Config, log *logger.Logger, timeout time.Duration) *Client {
	client := New(cfg, log)
	client.rc.SetTimeout(timeout)
	return client
}

// WithBaseURL sets the base URL prepended to relative request paths
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.rc.SetBaseURL(baseURL)
	return c
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c.applyRetry()
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c.applyRetry()
}

func (c *Client) applyRetry() *Client {
	count := 0
	if c.retryConfig.Enabled {
		count = c.retryConfig.MaxRetries
	}
	c.rc.SetRetryCount(count).
		SetRetryWaitTime(c.retryConfig.InitialDelay).
		SetRetryMaxWaitTime(c.retryConfig.MaxDelay)
	return c
}

// WithQuota charges every request against a quota shared through Redis
func (c *Client) WithQuota(limiter *redis.RateLimiter, q redis.Quota) *Client {
	c.quotas = limiter
	c.quota = q
	return c
}

// WithLocalLimit caps this process to n requests per window.
// Burst is n/20 (1~30) so one batch does not crawl at the steady rate.
func (c *Client) WithLocalLimit(n int, window time.Duration) *Client {
	if n <= 0 || window <= 0 {
		c.limiter = nil
		return c
	}
	burst := min(max(n/20, 1), 30)
	c.limiter = rate.NewLimiter(rate.Every(window/time.Duration(n)), burst)
	return c
}

// Get performs a GET request with query parameters. A non-2xx response
// after retries is returned with a nil error; callers check the status.
func (c *Client) Get(ctx context.Context, url string, query map[string]string) (*resty.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method": "GET",
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method": "GET",
			"url":    url,
			"error":  err.Error(),
		}).Error("HTTP request failed")
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      "GET",
		"url":         url,
		"status_code": resp.StatusCode(),
		"attempts":    resp.Request.Attempt,
		"duration":    resp.Time(),
	}).Debug("HTTP request completed")

	return resp, nil
}

// wait blocks on the local token bucket, then on the shared quota
func (c *Client) wait(ctx context.Context) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	if c.quotas != nil {
		if err := c.quotas.Wait(ctx, c.quota); err != nil {
			return fmt.Errorf("quota wait failed: %w", err)
		}
	}
	return nil
}

// IsRetryableError reports 5xx and 429 (FinMind quota) responses
func IsRetryableError(statusCode int) bool {
	return statusCode >= 500 || statusCode == 429
}
