package kalshi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/platform/logging"
	"github.com/predictleague/prediction-league/internal/platform/resilience"
	"github.com/predictleague/prediction-league/internal/usecase"
)

const (
	defaultBaseURL      = "https://trading-api.kalshi.com/trade-api/v2"
	defaultPageLimit    = 100
	defaultMaxPages     = 5
	defaultFetchWorkers = 4
)

var defaultCategories = []string{
	"Crypto",
	"Economics",
	"Sports",
	"Technology",
	"Weather",
}

var errKalshiTransient = crerr.New("kalshi transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	PageLimit      int
	Categories     []string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client pulls binary markets and settlements from the prediction-market
// provider. Without an API key it serves the built-in demo catalog so the
// rest of the system keeps working.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	pageLimit      int
	categories     []string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageLimit := cfg.PageLimit
	if pageLimit < 1 {
		pageLimit = defaultPageLimit
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = defaultCategories
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		pageLimit:      pageLimit,
		categories:     categories,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// DemoMode reports whether the client serves the demo catalog instead of
// live provider data.
func (c *Client) DemoMode() bool {
	return c.apiKey == ""
}

func (c *Client) ListWeeklyMarkets(ctx context.Context, weekStart time.Time) ([]market.Market, error) {
	if c.DemoMode() {
		return c.demoMarkets(weekStart), nil
	}

	fetchers := pool.NewWithResults[[]market.Market]().
		WithContext(ctx).
		WithMaxGoroutines(defaultFetchWorkers)
	for _, category := range c.categories {
		fetchers.Go(func(ctx context.Context) ([]market.Market, error) {
			return c.fetchCategoryMarkets(ctx, category, weekStart)
		})
	}

	groups, err := fetchers.Wait()
	if err != nil {
		return nil, err
	}

	byTicker := make(map[string]market.Market, 64)
	for _, group := range groups {
		for _, m := range group {
			byTicker[m.Ticker] = m
		}
	}

	out := make([]market.Market, 0, len(byTicker))
	for _, m := range byTicker {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CloseTime.Equal(out[j].CloseTime) {
			return out[i].CloseTime.Before(out[j].CloseTime)
		}
		return out[i].Ticker < out[j].Ticker
	})

	if len(out) == 0 {
		c.logger.WarnContext(ctx, "provider returned no open markets, serving demo catalog", "week_start", weekStart)
		return c.demoMarkets(weekStart), nil
	}

	return out, nil
}

func (c *Client) GetResolution(ctx context.Context, ticker string) (bool, bool, error) {
	if strings.TrimSpace(ticker) == "" {
		return false, false, fmt.Errorf("market ticker is required")
	}
	if c.DemoMode() {
		// Demo markets settle only through the manual resolve route.
		return false, false, nil
	}

	var envelope marketEnvelope
	path := "/markets/" + url.PathEscape(ticker)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return false, false, fmt.Errorf("fetch market %s: %w", ticker, err)
	}

	settled, outcomeYes := envelope.Market.settled()
	return settled, outcomeYes, nil
}

func (c *Client) fetchCategoryMarkets(ctx context.Context, category string, weekStart time.Time) ([]market.Market, error) {
	out := make([]market.Market, 0, c.pageLimit)
	cursor := ""
	for page := 0; page < defaultMaxPages; page++ {
		query := map[string]string{
			"limit":    strconv.Itoa(c.pageLimit),
			"status":   "open",
			"category": category,
		}
		if cursor != "" {
			query["cursor"] = cursor
		}

		var envelope marketsEnvelope
		if err := c.doJSON(ctx, "/markets", query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch %s markets: %w", strings.ToLower(category), err)
		}

		for _, item := range envelope.Markets {
			mapped, ok := item.toDomain(weekStart)
			if !ok {
				continue
			}
			out = append(out, mapped)
		}

		cursor = strings.TrimSpace(envelope.Cursor)
		if cursor == "" || len(envelope.Markets) == 0 {
			break
		}
	}

	return out, nil
}

func (c *Client) demoMarkets(weekStart time.Time) []market.Market {
	base := c.now().UTC()
	out := make([]market.Market, 0, len(demoCatalog))
	for _, entry := range demoCatalog {
		out = append(out, market.Market{
			Ticker:     entry.ticker,
			WeekStart:  weekStart,
			Title:      entry.title,
			Category:   entry.category,
			CloseTime:  base.Add(entry.closeIn),
			YesPrice:   entry.yesPrice,
			NoPrice:    entry.noPrice,
			Volume:     entry.volume,
			Resolution: market.ResolutionNone,
		})
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "kalshi circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: market data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errKalshiTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errKalshiTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errKalshiTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errKalshiTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "kalshi request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
