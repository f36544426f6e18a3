package portfolio

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/adapters/config"
	"atlas/internal/portfolio"
	"atlas/internal/tools/shared"
)

const tradingDays = 252

// NewBuildPortfolioTool screens the given symbols into the two-bucket
// portfolio: betas against the benchmark from one year of daily log
// returns, correlation-constrained bucket selection, Sharpe from the
// configured risk-free proxy.
func NewBuildPortfolioTool(deps shared.Deps, cfg config.PortfolioConfig) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("build_portfolio: market data client not configured"), nil
		}
		symbols := argStringSlice(args, "symbols")
		if len(symbols) == 0 {
			return errResult("build_portfolio: symbols is required"), nil
		}
		rng := argStringDefault(args, "range", "1y")

		benchmark, err := deps.MarketData.History(ctx, cfg.BenchmarkSym, rng, "1d")
		if err != nil {
			return errResult("build_portfolio: benchmark %s: %v", cfg.BenchmarkSym, err), nil
		}
		marketReturns := benchmark.LogReturns()
		if len(marketReturns) < 20 {
			return errResult("build_portfolio: insufficient benchmark history for %s", cfg.BenchmarkSym), nil
		}

		riskFree := riskFreeRate(ctx, deps, cfg)

		candidates := make([]portfolio.Candidate, 0, len(symbols))
		skipped := make([]string, 0)
		for _, symbol := range symbols {
			series, err := deps.MarketData.History(ctx, symbol, rng, "1d")
			if err != nil {
				skipped = append(skipped, symbol)
				continue
			}
			returns := series.LogReturns()
			if len(returns) < 20 {
				skipped = append(skipped, symbol)
				continue
			}

			rm, rs := alignTail(marketReturns, returns)
			closes := series.Closes()

			candidates = append(candidates, portfolio.Candidate{
				Symbol:           symbol,
				Beta:             slope(rm, rs),
				AnnualVolatility: stdSample(returns) * math.Sqrt(tradingDays),
				SharpeRatio:      sharpe(returns, riskFree),
				LastPrice:        closes[len(closes)-1],
				Returns:          returns,
			})
		}
		if len(candidates) == 0 {
			return errResult("build_portfolio: no usable history for any of the %d symbols", len(symbols)), nil
		}

		built, err := portfolio.Build(candidates, cfg)
		if err != nil {
			return errResult("build_portfolio: %v", err), nil
		}

		deps.Log.Info("Portfolio constructed",
			"candidates", len(candidates),
			"skipped", len(skipped),
			"high_beta", len(built.HighBeta.Members),
			"low_beta", len(built.LowBeta.Members))

		return map[string]interface{}{
			"high_beta":                 bucketPayload(built.HighBeta),
			"low_beta":                  bucketPayload(built.LowBeta),
			"high_beta_avg_correlation": built.HighBeta.AvgCorrelation,
			"low_beta_avg_correlation":  built.LowBeta.AvgCorrelation,
			"skipped_symbols":           skipped,
		}, nil
	}

	return shared.NewToolBuilder(
		"build_portfolio",
		"Construct a high-beta/low-beta portfolio from candidate symbols with a correlation constraint",
		fn, deps,
	).WithTimeout(5 * time.Minute).WithStats().Build()
}

func bucketPayload(b portfolio.Bucket) []interface{} {
	out := make([]interface{}, 0, len(b.Members))
	for _, m := range b.Members {
		out = append(out, map[string]interface{}{
			"symbol":            m.Symbol,
			"beta":              m.Beta,
			"annual_volatility": m.AnnualVolatility,
			"sharpe_ratio":      m.SharpeRatio,
			"last_price":        m.LastPrice,
		})
	}
	return out
}

// riskFreeRate resolves the annual risk-free rate from the configured
// proxy quote; failures degrade to zero rather than blocking screening.
func riskFreeRate(ctx tool.Context, deps shared.Deps, cfg config.PortfolioConfig) float64 {
	quote, err := deps.MarketData.Quote(ctx, cfg.RiskFreeProxy)
	if err != nil {
		deps.Log.Warn("Risk-free proxy unavailable, using 0", "symbol", cfg.RiskFreeProxy, "error", err)
		return 0
	}
	return quote.Price.InexactFloat64() / 100
}

func sharpe(logReturns []float64, annualRiskFree float64) float64 {
	sigma := stdSample(logReturns) * math.Sqrt(tradingDays)
	if sigma == 0 {
		return 0
	}
	annualized := mean(logReturns) * tradingDays
	return (annualized - annualRiskFree) / sigma
}

func errResult(format string, args ...interface{}) map[string]interface{} {
	return map[string]interface{}{"error": fmt.Sprintf(format, args...)}
}
