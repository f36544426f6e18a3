package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"atlas/internal/adapters/config"
	rediscache "atlas/internal/adapters/redis"
	"atlas/pkg/logger"
)

const chartBody = `{
	"chart": {
		"result": [{
			"meta": {
				"currency": "USD",
				"symbol": "AAPL",
				"regularMarketPrice": 175.5,
				"regularMarketTime": 1700000000
			},
			"timestamp": [1699900000, 1699986400, 1700072800],
			"indicators": {
				"quote": [{
					"open":   [170.0, 172.0, 174.0],
					"high":   [171.0, 173.5, 176.0],
					"low":    [169.0, 171.0, 173.0],
					"close":  [170.5, 172.8, 175.5],
					"volume": [1000, 2000, 1500]
				}]
			}
		}],
		"error": null
	}
}`

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	if err := logger.Init("error", "test"); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return logger.Get()
}

func newTestClient(t *testing.T, handler http.Handler, cache *rediscache.Client, ttl time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.MarketDataConfig{
		BaseURL:        srv.URL,
		RequestsPerSec: 100,
		Timeout:        5 * time.Second,
		CacheTTL:       ttl,
	}
	return NewClient(cfg, cache, testLogger(t))
}

func newTestCache(t *testing.T) *rediscache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return rediscache.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

func TestQuote(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, chartBody)
	}), nil, 0)

	quote, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price.InexactFloat64() != 175.5 {
		t.Errorf("price = %s, want 175.5", quote.Price)
	}
	if quote.Currency != "USD" || quote.Timestamp != 1700000000 {
		t.Errorf("unexpected quote: %+v", quote)
	}
}

func TestHistoryBars(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartBody)
	}), nil, 0)

	series, err := client.History(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(series.Bars))
	}
	if series.Bars[2].Close != 175.5 || series.Bars[2].Volume != 1500 {
		t.Errorf("unexpected last bar: %+v", series.Bars[2])
	}

	returns := series.LogReturns()
	if len(returns) != 2 {
		t.Fatalf("got %d log returns, want 2", len(returns))
	}
}

func TestHistoryUsesCache(t *testing.T) {
	var calls atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, chartBody)
	}), newTestCache(t), time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := client.History(context.Background(), "AAPL", "1mo", "1d"); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1", got)
	}
}

func TestInvalidSymbol(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), nil, 0)

	if _, err := client.Quote(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}
