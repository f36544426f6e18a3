package finance

import (
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"google.golang.org/adk/tool"

	"atlas/internal/tools/shared"
)

func lastValue(values []float64) (float64, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != 0 {
			return values[i], true
		}
	}
	return 0, false
}

// NewTechnicalIndicatorsTool reports the latest SMA, RSI and MACD readings
// for a symbol.
func NewTechnicalIndicatorsTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_technical_indicators: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		period := argStringDefault(args, "period", "1y")
		if symbol == "" {
			return errResult("get_technical_indicators: symbol is required"), nil
		}
		shortWindow := argIntDefault(args, "short_window", 12)
		longWindow := argIntDefault(args, "long_window", 26)
		signalWindow := argIntDefault(args, "signal_window", 9)
		maWindow := argIntDefault(args, "ma_window", 20)

		series, err := deps.MarketData.History(ctx, symbol, period, "1d")
		if err != nil {
			return errResult("No data for %s over %s", symbol, period), nil
		}
		closes := series.Closes()
		if len(closes) < longWindow+signalWindow {
			return errResult("Insufficient history for %s over %s", symbol, period), nil
		}

		sma := talib.Sma(closes, maWindow)
		rsi := talib.Rsi(closes, 14)
		macdLine, signalLine, histogram := talib.Macd(closes, shortWindow, longWindow, signalWindow)

		lastSMA, okSMA := lastValue(sma)
		lastRSI, okRSI := lastValue(rsi)
		if !okSMA || !okRSI {
			return errResult("Indicators failed for %s", symbol), nil
		}

		return map[string]interface{}{
			"symbol":                strings.ToUpper(symbol),
			"period":                period,
			"latest_close_price":    round(closes[len(closes)-1], 2),
			"latest_sma":            round(lastSMA, 2),
			"latest_rsi":            round(lastRSI, 2),
			"latest_macd_line":      round(macdLine[len(macdLine)-1], 4),
			"latest_macd_signal":    round(signalLine[len(signalLine)-1], 4),
			"latest_macd_histogram": round(histogram[len(histogram)-1], 4),
			"note":                  "RSI>70 overbought, <30 oversold.",
		}, nil
	}

	return shared.NewToolBuilder(
		"get_technical_indicators",
		"Report latest SMA, RSI and MACD readings for a symbol",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

// NewOnBalanceVolumeTool reports the latest on-balance volume figure.
func NewOnBalanceVolumeTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_on_balance_volume: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		period := argStringDefault(args, "period", "1y")
		if symbol == "" {
			return errResult("get_on_balance_volume: symbol is required"), nil
		}

		series, err := deps.MarketData.History(ctx, symbol, period, "1d")
		if err != nil || len(series.Bars) < 2 {
			return errResult("Insufficient data for OBV (%s)", symbol), nil
		}

		closes := series.Closes()
		volumes := make([]float64, len(series.Bars))
		for i, bar := range series.Bars {
			volumes[i] = float64(bar.Volume)
		}

		obv := talib.Obv(closes, volumes)
		if len(obv) == 0 {
			return errResult("OBV failed for %s", symbol), nil
		}
		return map[string]interface{}{
			"symbol":                   strings.ToUpper(symbol),
			"period":                   period,
			"latest_on_balance_volume": int64(obv[len(obv)-1]),
		}, nil
	}

	return shared.NewToolBuilder(
		"get_on_balance_volume",
		"Report the latest on-balance volume for a symbol",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}
