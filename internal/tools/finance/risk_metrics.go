package finance

import (
	"math"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/tools/shared"
)

// NewBetaVolatilityTool regresses a stock's daily log returns against a
// market index to estimate beta, and reports annualized return/volatility.
func NewBetaVolatilityTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_beta_and_volatility: market data client not configured"), nil
		}
		stockSymbol := argString(args, "stock_symbol")
		indexSymbol := argString(args, "market_index_symbol")
		period := argStringDefault(args, "period", "5y")
		if stockSymbol == "" || indexSymbol == "" {
			return errResult("calculate_beta_and_volatility: stock_symbol and market_index_symbol are required"), nil
		}

		stock, err := deps.MarketData.History(ctx, stockSymbol, period, "1d")
		if err != nil {
			return errResult("Insufficient data for %s/%s over %s.", stockSymbol, indexSymbol, period), nil
		}
		market, err := deps.MarketData.History(ctx, indexSymbol, period, "1d")
		if err != nil {
			return errResult("Insufficient data for %s/%s over %s.", stockSymbol, indexSymbol, period), nil
		}

		rs, rm := alignTail(stock.LogReturns(), market.LogReturns())
		if len(rs) < 20 {
			return errResult("Insufficient aligned data (%d days).", len(rs)), nil
		}

		beta := slope(rm, rs)
		stockVol := stdSample(rs) * sqrtTradingDays
		marketVol := stdSample(rm) * sqrtTradingDays

		closes := stock.Closes()
		totalReturn := closes[len(closes)-1]/closes[0] - 1
		annReturn := annualizedReturn(totalReturn, len(closes))

		return map[string]interface{}{
			"stock_symbol":                 stockSymbol,
			"market_index_symbol":          indexSymbol,
			"period":                       period,
			"beta":                         round(beta, 4),
			"stock_annualized_return":      round(annReturn, 6),
			"stock_annualized_volatility":  round(stockVol, 6),
			"market_annualized_volatility": round(marketVol, 6),
			// percent mirrors kept for downstream formatting
			"stock_annualized_return_percent":      round(annReturn*100, 2),
			"stock_annualized_volatility_percent":  round(stockVol*100, 2),
			"market_annualized_volatility_percent": round(marketVol*100, 2),
			"note": "Decimals + percent mirrors for backward compatibility.",
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_beta_and_volatility",
		"Estimate beta and annualized volatility versus a market index",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

// NewSharpeRatioTool computes the Sharpe ratio from daily log returns.
func NewSharpeRatioTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_sharpe_ratio: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		rfPercent, ok := argFloat(args, "risk_free_rate")
		if symbol == "" || !ok {
			return errResult("calculate_sharpe_ratio: symbol and risk_free_rate are required"), nil
		}
		period := argStringDefault(args, "period", "5y")

		series, err := deps.MarketData.History(ctx, symbol, period, "1d")
		if err != nil {
			return errResult("No data for %s over %s", symbol, period), nil
		}
		returns := series.LogReturns()
		if len(returns) < 2 {
			return errResult("Insufficient prices for %s", symbol), nil
		}

		rf := rfPercent / 100.0
		mu := mean(returns) * tradingDays
		sigma := stdSample(returns) * sqrtTradingDays
		if sigma <= 1e-12 || math.IsNaN(sigma) {
			return errResult("Zero/NaN volatility for %s", symbol), nil
		}

		return map[string]interface{}{
			"symbol":                 symbol,
			"period":                 period,
			"risk_free_rate_percent": rfPercent,
			"sharpe_ratio":           round((mu-rf)/sigma, 6),
			"annualized_return":      round(mu, 6),
			"annualized_volatility":  round(sigma, 6),
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_sharpe_ratio",
		"Compute the Sharpe ratio for a symbol",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

// NewSortinoRatioTool computes the Sortino ratio using downside deviation
// below the daily minimum acceptable return.
func NewSortinoRatioTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_sortino_ratio: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		rfPercent, ok := argFloat(args, "risk_free_rate")
		if symbol == "" || !ok {
			return errResult("calculate_sortino_ratio: symbol and risk_free_rate are required"), nil
		}
		period := argStringDefault(args, "period", "5y")

		series, err := deps.MarketData.History(ctx, symbol, period, "1d")
		if err != nil {
			return errResult("No data for %s over %s", symbol, period), nil
		}
		returns := series.PctReturns()
		if len(returns) < 2 {
			return errResult("Insufficient prices for %s", symbol), nil
		}

		rf := rfPercent / 100.0
		marDaily := math.Pow(1+rf, 1.0/tradingDays) - 1

		var downsideSq float64
		for _, r := range returns {
			if d := r - marDaily; d < 0 {
				downsideSq += d * d
			}
		}
		downsideVar := downsideSq / float64(len(returns))
		if downsideVar <= 0 {
			return errResult("No downside variance for %s", symbol), nil
		}
		downsideStd := math.Sqrt(downsideVar) * sqrtTradingDays
		meanAnnual := mean(returns) * tradingDays

		return map[string]interface{}{
			"symbol":                         symbol,
			"period":                         period,
			"risk_free_rate_percent":         rfPercent,
			"sortino_ratio":                  round((meanAnnual-rf)/downsideStd, 6),
			"annualized_return":              round(meanAnnual, 6),
			"annualized_downside_volatility": round(downsideStd, 6),
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_sortino_ratio",
		"Compute the Sortino ratio for a symbol",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

// NewCorrelationMatrixTool builds a pairwise correlation matrix of daily
// log returns.
func NewCorrelationMatrixTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_correlation_matrix: market data client not configured"), nil
		}
		symbols := argStringSlice(args, "symbols")
		period := argStringDefault(args, "period", "5y")
		if len(symbols) < 2 {
			return errResult("Requires at least two symbols"), nil
		}

		returns := make(map[string][]float64, len(symbols))
		var valid []string
		for _, symbol := range symbols {
			series, err := deps.MarketData.History(ctx, symbol, period, "1d")
			if err != nil {
				deps.Log.Warn("Tool: correlation matrix symbol skipped", "symbol", symbol, "error", err)
				continue
			}
			if r := series.LogReturns(); len(r) >= 2 {
				returns[symbol] = r
				valid = append(valid, symbol)
			}
		}
		if len(valid) < 2 {
			return errResult("Less than two valid symbols"), nil
		}

		matrix := make(map[string]interface{}, len(valid))
		for _, a := range valid {
			row := make(map[string]interface{}, len(valid))
			for _, b := range valid {
				ra, rb := alignTail(returns[a], returns[b])
				row[b] = round(correlation(ra, rb), 6)
			}
			matrix[a] = row
		}
		return map[string]interface{}{
			"period":             period,
			"symbols":            valid,
			"correlation_matrix": matrix,
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_correlation_matrix",
		"Compute the pairwise correlation matrix of daily returns",
		fn, deps,
	).WithTimeout(120 * time.Second).WithStats().Build()
}

// NewTreynorRatioTool computes the Treynor ratio from supplied inputs.
func NewTreynorRatioTool(deps shared.Deps) tool.Tool {
	fn := func(_ tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		symbol := argString(args, "symbol")
		rfPercent, okRf := argFloat(args, "risk_free_rate")
		annReturn, okAr := argFloat(args, "annualized_return")
		beta, okB := argFloat(args, "beta")
		if !okRf || !okAr || !okB {
			return errResult("calculate_treynor_ratio: risk_free_rate, annualized_return and beta are required"), nil
		}
		if math.Abs(beta) < 1e-12 {
			return map[string]interface{}{
				"symbol":                 symbol,
				"treynor_ratio":          nil,
				"annualized_return":      annReturn,
				"beta":                   beta,
				"risk_free_rate_percent": rfPercent,
				"error":                  "Beta too close to zero",
			}, nil
		}
		return map[string]interface{}{
			"symbol":                 symbol,
			"treynor_ratio":          (annReturn - rfPercent/100.0) / beta,
			"annualized_return":      annReturn,
			"beta":                   beta,
			"risk_free_rate_percent": rfPercent,
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_treynor_ratio",
		"Compute the Treynor ratio from return, beta and risk-free rate",
		fn, deps,
	).WithStats().Build()
}

// NewJensensAlphaTool computes Jensen's alpha against the CAPM expected
// return.
func NewJensensAlphaTool(deps shared.Deps) tool.Tool {
	fn := func(_ tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		symbol := argString(args, "symbol")
		rfPercent, okRf := argFloat(args, "risk_free_rate")
		annReturn, okAr := argFloat(args, "annualized_return")
		beta, okB := argFloat(args, "beta")
		marketReturn, okMr := argFloat(args, "market_return")
		if !okRf || !okAr || !okB || !okMr {
			return errResult("calculate_jensens_alpha: risk_free_rate, annualized_return, beta and market_return are required"), nil
		}

		rf := rfPercent / 100.0
		expected := rf + beta*(marketReturn-rf)
		return map[string]interface{}{
			"symbol":               symbol,
			"jensens_alpha":        annReturn - expected,
			"expected_return_capm": expected,
			"inputs": map[string]interface{}{
				"risk_free_rate_percent": rfPercent,
				"annualized_return":      annReturn,
				"beta":                   beta,
				"market_return":          marketReturn,
			},
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_jensens_alpha",
		"Compute Jensen's alpha versus the CAPM expected return",
		fn, deps,
	).WithStats().Build()
}
