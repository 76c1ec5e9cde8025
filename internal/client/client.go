package client

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/openmeteo-stats/internal/cache"
	"github.com/kjstillabower/openmeteo-stats/internal/observability"
)

// ErrRequestFailed is returned for any non-success HTTP status from an
// upstream endpoint. The wrapped message carries the status code and
// response body text. No retries are performed; one failed attempt is final.
var ErrRequestFailed = errors.New("request failed")

// Client issues GET requests with a fixed timeout and an optional
// time-boxed response cache. The cache is an explicit collaborator, never
// installed globally; identical requests within the TTL window are served
// from it without a network round trip.
type Client struct {
	http         *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	cache        cache.Cache
	cacheTTL     time.Duration
	backendLabel string
	corrID       string
	logger       *zap.Logger
}

// New creates a Client. respCache may be nil to disable caching entirely;
// backendLabel names the cache backend for metrics. rps paces upstream calls
// client-side as politeness toward the API.
func New(timeout time.Duration, rps float64, respCache cache.Cache, cacheTTL time.Duration, backendLabel string, logger *zap.Logger) *Client {
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		http:         &http.Client{Timeout: timeout},
		timeout:      timeout,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		cache:        respCache,
		cacheTTL:     cacheTTL,
		backendLabel: backendLabel,
		corrID:       uuid.NewString(),
		logger:       logger,
	}
}

// CorrelationID returns the per-invocation request correlation ID.
func (c *Client) CorrelationID() string {
	return c.corrID
}

// Get issues a GET request against baseURL with the given query parameters
// and returns the raw response body. When useCache is true and a cache is
// configured, the response is served from or written to the cache keyed by
// the full request URL. Cache failures are advisory: logged and counted,
// never returned to the caller.
func (c *Client) Get(ctx context.Context, baseURL string, params url.Values, useCache bool) ([]byte, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", baseURL, err)
	}
	u.RawQuery = params.Encode()
	fullURL := u.String()

	useCache = useCache && c.cache != nil
	key := cacheKey(fullURL)
	endpoint := u.Host

	if useCache {
		body, ok, cerr := c.cache.Get(ctx, key)
		if cerr != nil {
			observability.CacheErrorsTotal.WithLabelValues("get").Inc()
			c.logger.Warn("cache get failed", zap.String("url", fullURL), zap.Error(cerr))
		} else if ok {
			observability.CacheHitsTotal.WithLabelValues(c.backendLabel).Inc()
			c.logger.Debug("cache hit", zap.String("url", fullURL))
			return body, nil
		} else {
			observability.CacheMissesTotal.WithLabelValues(c.backendLabel).Inc()
			c.logger.Debug("cache miss", zap.String("url", fullURL))
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := c.doRequest(ctx, fullURL, endpoint)
	if err != nil {
		return nil, err
	}

	if useCache {
		if cerr := c.cache.Set(ctx, key, body, c.cacheTTL); cerr != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			c.logger.Warn("cache set failed", zap.String("url", fullURL), zap.Error(cerr))
		}
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", c.corrID)

	resp, err := c.http.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: request timeout: %v", ErrRequestFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	observability.UpstreamRequestsTotal.WithLabelValues(endpoint, observability.StatusLabel(resp.StatusCode)).Inc()
	observability.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	c.logger.Debug("upstream request",
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Float64("duration_s", duration),
	)
	return body, nil
}

// cacheKey hashes the full request URL so cache keys stay short and free of
// characters memcached rejects.
func cacheKey(fullURL string) string {
	sum := sha1.Sum([]byte(fullURL))
	return hex.EncodeToString(sum[:])
}
