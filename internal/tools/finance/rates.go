package finance

import (
	"strings"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/tools/shared"
)

// Treasury yield proxies. All map to the US 10Y for now; non-US callers
// should use the override.
var riskFreeProxies = map[string]string{
	"US": "^TNX", "USA": "^TNX", "NASDAQ": "^TNX", "NYSE": "^TNX",
	"UK": "^TNX", "LSE": "^TNX", "JAPAN": "^TNX", "TOKYO": "^TNX",
}

// NewRiskFreeRateTool returns the annual risk-free rate as a decimal,
// either from the configured override or a 10Y yield proxy quote.
func NewRiskFreeRateTool(deps shared.Deps, override float64) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if override > 0 {
			return map[string]interface{}{
				"rate_decimal_annual": round(override, 6),
				"rate_symbol":         "override",
				"note":                "Provided via env override.",
			}, nil
		}
		if !deps.HasMarketData() {
			return errResult("get_risk_free_rate: market data client not configured"), nil
		}

		region := strings.ToUpper(strings.TrimSpace(argString(args, "exchange_or_country")))
		proxy, ok := riskFreeProxies[region]
		if !ok {
			proxy = "^TNX"
		}

		quote, err := deps.MarketData.Quote(ctx, proxy)
		if err != nil {
			return errResult("Failed to fetch risk-free proxy (%s) for %s: %v", proxy, region, err), nil
		}
		// ^TNX quotes the yield in percent.
		return map[string]interface{}{
			"rate_decimal_annual": round(quote.Price.InexactFloat64()/100.0, 6),
			"rate_symbol":         proxy,
			"note":                "10Y yield proxy; use override for non-US.",
		}, nil
	}

	return shared.NewToolBuilder(
		"get_risk_free_rate",
		"Fetch the annual risk-free rate as a decimal",
		fn, deps,
	).WithTimeout(15 * time.Second).WithRetry(2, 500*time.Millisecond).WithStats().Build()
}

// NewMarketReturnTool annualizes an index's return over a period.
func NewMarketReturnTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_historical_market_return: market data client not configured"), nil
		}
		indexSymbol := argString(args, "index_symbol")
		period := argStringDefault(args, "period", "5y")
		if indexSymbol == "" {
			return errResult("get_historical_market_return: index_symbol is required"), nil
		}

		series, err := deps.MarketData.History(ctx, indexSymbol, period, "1d")
		if err != nil {
			return errResult("Failed to calculate market return for %s: %v", indexSymbol, err), nil
		}
		closes := series.Closes()
		if len(closes) < 20 {
			return errResult("Insufficient data for %s over %s.", indexSymbol, period), nil
		}

		totalReturn := closes[len(closes)-1]/closes[0] - 1
		ann := annualizedReturn(totalReturn, len(closes))
		return map[string]interface{}{
			"index_symbol":                     indexSymbol,
			"period":                           period,
			"annualized_market_return_decimal": round(ann, 6),
			"note":                             "Nominal return.",
		}, nil
	}

	return shared.NewToolBuilder(
		"get_historical_market_return",
		"Annualize an index's historical market return",
		fn, deps,
	).WithTimeout(20 * time.Second).WithStats().Build()
}
