package shared

import (
	"context"
	"time"

	"atlas/internal/adapters/config"
	"atlas/internal/adapters/marketdata"
	"atlas/pkg/logger"
)

// KnowledgeClient answers free-text queries against the enterprise search
// engine. AnswerText never fails; errors are folded into fallback messages.
type KnowledgeClient interface {
	AnswerText(ctx context.Context, query string) string
}

// MarketDataClient provides quotes, history and fundamentals.
type MarketDataClient interface {
	Quote(ctx context.Context, symbol string) (marketdata.Quote, error)
	History(ctx context.Context, symbol, rng, interval string) (marketdata.Series, error)
	HistoryBetween(ctx context.Context, symbol string, start, end time.Time, interval string) (marketdata.Series, error)
	Summary(ctx context.Context, symbol string) (marketdata.FundamentalsSummary, error)
	Statements(ctx context.Context, symbol string) (marketdata.Statements, error)
}

// IndexSource resolves a major index name to its constituent symbols.
type IndexSource interface {
	Constituents(ctx context.Context, indexName string) ([]string, error)
}

// RedisClient interface to avoid circular dependency
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Deps bundles dependencies required by concrete tool implementations
type Deps struct {
	Knowledge  KnowledgeClient
	MarketData MarketDataClient
	Indexes    IndexSource
	Redis      RedisClient
	Props      *config.Properties
	OutputDir  string
	Log        *logger.Logger
}

// HasKnowledge reports whether the enterprise search client is available
func (d Deps) HasKnowledge() bool {
	return d.Knowledge != nil
}

// HasMarketData reports whether the market data client is wired
func (d Deps) HasMarketData() bool {
	return d.MarketData != nil
}

// HasIndexes reports whether the index constituents source is wired
func (d Deps) HasIndexes() bool {
	return d.Indexes != nil
}

// HasCache reports whether Redis is available
func (d Deps) HasCache() bool {
	return d.Redis != nil
}
