package finance

import (
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/tools/shared"
)

// NewLastPriceTool returns the latest traded price for a symbol.
func NewLastPriceTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_last_stock_price: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		if symbol == "" {
			return errResult("get_last_stock_price: symbol is required"), nil
		}

		deps.Log.Debug("Tool: get_last_stock_price called", "symbol", symbol)

		quote, err := deps.MarketData.Quote(ctx, symbol)
		if err != nil {
			return errResult("Failed to fetch last price for %s: %v", symbol, err), nil
		}
		return map[string]interface{}{
			"symbol":    symbol,
			"price":     quote.Price.InexactFloat64(),
			"timestamp": quote.Timestamp,
		}, nil
	}

	return shared.NewToolBuilder(
		"get_last_stock_price",
		"Fetch the latest traded price for a stock symbol",
		fn, deps,
	).WithTimeout(15 * time.Second).WithRetry(2, 500*time.Millisecond).WithStats().Build()
}

// NewAggregatedDataTool returns OHLCV bars between two dates.
func NewAggregatedDataTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_aggregated_stock_data: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		interval := argStringDefault(args, "interval", "1d")
		startDate := argString(args, "start_date")
		endDate := argString(args, "end_date")
		if symbol == "" || startDate == "" || endDate == "" {
			return errResult("get_aggregated_stock_data: symbol, start_date and end_date are required"), nil
		}

		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return errResult("Invalid start_date %q, expected YYYY-MM-DD", startDate), nil
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return errResult("Invalid end_date %q, expected YYYY-MM-DD", endDate), nil
		}

		series, err := deps.MarketData.HistoryBetween(ctx, symbol, start, end, interval)
		if err != nil {
			return errResult("Failed to fetch aggregated data for %s: %v", symbol, err), nil
		}

		data := make([]map[string]interface{}, 0, len(series.Bars))
		for _, bar := range series.Bars {
			data = append(data, map[string]interface{}{
				"date":   bar.Date.Format("2006-01-02 15:04:05"),
				"open":   round(bar.Open, 4),
				"high":   round(bar.High, 4),
				"low":    round(bar.Low, 4),
				"close":  round(bar.Close, 4),
				"volume": bar.Volume,
			})
		}
		return map[string]interface{}{
			"symbol":   symbol,
			"interval": interval,
			"data":     data,
		}, nil
	}

	return shared.NewToolBuilder(
		"get_aggregated_stock_data",
		"Fetch OHLCV bars for a symbol between two dates",
		fn, deps,
	).WithTimeout(20 * time.Second).WithRetry(2, 500*time.Millisecond).WithStats().Build()
}

// NewChartDataTool returns a single metric as chartable time series points.
func NewChartDataTool(deps shared.Deps) tool.Tool {
	validMetrics := map[string]bool{"Close": true, "Open": true, "High": true, "Low": true, "Volume": true}

	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("generate_time_series_chart_data: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		period := argStringDefault(args, "period", "1y")
		metric := argString(args, "metric")
		if !validMetrics[metric] {
			return errResult("Invalid metric '%s'.", metric), nil
		}

		series, err := deps.MarketData.History(ctx, symbol, period, "1d")
		if err != nil {
			return errResult("No %s data for %s over %s", metric, symbol, period), nil
		}

		points := make([]map[string]interface{}, 0, len(series.Bars))
		for _, bar := range series.Bars {
			var value interface{}
			switch metric {
			case "Open":
				value = round(bar.Open, 4)
			case "High":
				value = round(bar.High, 4)
			case "Low":
				value = round(bar.Low, 4)
			case "Volume":
				value = bar.Volume
			default:
				value = round(bar.Close, 4)
			}
			points = append(points, map[string]interface{}{
				"date":  bar.Date.Format("2006-01-02"),
				"value": value,
			})
		}
		return map[string]interface{}{
			"symbol":      symbol,
			"metric":      metric,
			"period":      period,
			"title":       symbol + " " + metric + " over " + period,
			"data_points": points,
		}, nil
	}

	return shared.NewToolBuilder(
		"generate_time_series_chart_data",
		"Produce chartable time series points for one price metric",
		fn, deps,
	).WithTimeout(20 * time.Second).WithStats().Build()
}

// NewDailyReturnsTool returns daily simple returns per symbol, used as
// diversification inputs.
func NewDailyReturnsTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_daily_returns: market data client not configured"), nil
		}
		symbols := argStringSlice(args, "symbols")
		period := argStringDefault(args, "period", "5y")
		if len(symbols) == 0 {
			return errResult("get_daily_returns: symbols are required"), nil
		}

		returns := make(map[string]interface{}, len(symbols))
		for _, symbol := range symbols {
			series, err := deps.MarketData.History(ctx, symbol, period, "1d")
			if err != nil {
				deps.Log.Warn("Tool: get_daily_returns symbol skipped", "symbol", symbol, "error", err)
				continue
			}
			if r := series.PctReturns(); len(r) > 0 {
				returns[symbol] = r
			}
		}
		if len(returns) == 0 {
			return errResult("Insufficient price data to compute returns."), nil
		}
		return map[string]interface{}{
			"period":        period,
			"daily_returns": returns,
		}, nil
	}

	return shared.NewToolBuilder(
		"get_daily_returns",
		"Fetch daily simple returns for a list of symbols",
		fn, deps,
	).WithTimeout(60 * time.Second).WithStats().Build()
}

// NewCompareMetricsTool compares total/annualized return and volatility
// across symbols.
func NewCompareMetricsTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("compare_key_metrics: market data client not configured"), nil
		}
		symbols := argStringSlice(args, "symbols")
		period := argStringDefault(args, "period", "1y")
		if len(symbols) == 0 {
			return errResult("compare_key_metrics: symbols are required"), nil
		}

		results := make(map[string]interface{}, len(symbols))
		for _, symbol := range symbols {
			series, err := deps.MarketData.History(ctx, symbol, period, "1d")
			if err != nil {
				results[symbol] = map[string]interface{}{"error": "No data"}
				continue
			}
			closes := series.Closes()
			if len(closes) < 20 {
				results[symbol] = errResult("Only %d days", len(closes))
				continue
			}
			totalReturn := closes[len(closes)-1]/closes[0] - 1
			logReturns := series.LogReturns()
			annVol := stdSample(logReturns) * sqrtTradingDays
			ann := annualizedReturn(totalReturn, len(closes))
			results[symbol] = map[string]interface{}{
				"total_return_percent":          round(totalReturn*100, 2),
				"annualized_return_percent":     round(ann*100, 2),
				"annualized_volatility_percent": round(annVol*100, 2),
			}
		}
		return map[string]interface{}{
			"comparison_period": period,
			"results":           results,
		}, nil
	}

	return shared.NewToolBuilder(
		"compare_key_metrics",
		"Compare return and volatility metrics across symbols",
		fn, deps,
	).WithTimeout(60 * time.Second).WithStats().Build()
}
