package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"atlas/internal/adapters/config"
	rediscache "atlas/internal/adapters/redis"
	"atlas/internal/metrics"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// Yahoo blocks requests without a browser user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client fetches quotes and daily price history from the Yahoo Finance
// chart API. Requests are rate limited, and responses are cached in Redis
// when a cache client is provided.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *rediscache.Client
	cacheTTL   time.Duration
	baseURL    string
	log        *logger.Logger
}

// NewClient creates a market data client. cache may be nil.
func NewClient(cfg config.MarketDataConfig, cache *rediscache.Client, log *logger.Logger) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		baseURL:    cfg.BaseURL,
		log:        log.With("component", "marketdata"),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the latest price for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	resp, err := c.chart(ctx, symbol, url.Values{
		"range":    {"1d"},
		"interval": {"1d"},
	})
	if err != nil {
		return Quote{}, err
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return Quote{}, errors.Wrapf(errors.ErrQuoteUnavailable, "no price field for %s", symbol)
	}
	return Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(meta.RegularMarketPrice),
		Currency:  meta.Currency,
		Timestamp: meta.RegularMarketTime,
	}, nil
}

// History returns daily bars over a named range such as "1y" or "5y".
func (c *Client) History(ctx context.Context, symbol, rng, interval string) (Series, error) {
	if interval == "" {
		interval = "1d"
	}
	resp, err := c.chart(ctx, symbol, url.Values{
		"range":    {rng},
		"interval": {interval},
	})
	if err != nil {
		return Series{}, err
	}
	return buildSeries(symbol, resp)
}

// HistoryBetween returns bars between two instants.
func (c *Client) HistoryBetween(ctx context.Context, symbol string, start, end time.Time, interval string) (Series, error) {
	if interval == "" {
		interval = "1d"
	}
	resp, err := c.chart(ctx, symbol, url.Values{
		"period1":  {fmt.Sprintf("%d", start.Unix())},
		"period2":  {fmt.Sprintf("%d", end.Unix())},
		"interval": {interval},
	})
	if err != nil {
		return Series{}, err
	}
	return buildSeries(symbol, resp)
}

func buildSeries(symbol string, resp *chartResponse) (Series, error) {
	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return Series{}, errors.Wrapf(errors.ErrQuoteUnavailable, "no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	series := Series{Symbol: symbol, Bars: make([]Bar, 0, len(result.Timestamp))}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		bar := Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		series.Bars = append(series.Bars, bar)
	}

	if len(series.Bars) == 0 {
		return Series{}, errors.Wrapf(errors.ErrQuoteUnavailable, "empty history for %s", symbol)
	}
	return series, nil
}

func (c *Client) chart(ctx context.Context, symbol string, params url.Values) (*chartResponse, error) {
	cacheKey := fmt.Sprintf("md:chart:%s:%s", symbol, params.Encode())
	if c.cache != nil {
		var cached chartResponse
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
			return &cached, nil
		} else if rediscache.IsMiss(err) {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		} else {
			metrics.CacheOperations.WithLabelValues("get", "error").Inc()
			c.log.Warn("Market data cache read failed", "key", cacheKey, "error", err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build chart request")
	}
	req.Header.Set("User-Agent", browserUserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamCall("market", "chart", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "chart request failed for %s", symbol)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(errors.ErrInvalidSymbol, "symbol %s not found", symbol)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "throttled fetching %s", symbol)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.Wrapf(errors.ErrUnavailable, "chart request for %s returned HTTP %d", symbol, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chart response")
	}

	var parsed chartResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode chart response")
	}
	if parsed.Chart.Error != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSymbol, "chart API error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "empty chart result for %s", symbol)
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, cacheKey, &parsed, c.cacheTTL); err != nil {
			metrics.CacheOperations.WithLabelValues("set", "error").Inc()
			c.log.Warn("Market data cache write failed", "key", cacheKey, "error", err)
		} else {
			metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
		}
	}
	return &parsed, nil
}
