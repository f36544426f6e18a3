package finance

import (
	"strings"
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/adapters/marketdata"
	"atlas/internal/tools/shared"
)

// NewPERatioTool returns the trailing price-to-earnings ratio.
func NewPERatioTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("get_pe_ratio: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		if symbol == "" {
			return errResult("get_pe_ratio: symbol is required"), nil
		}

		summary, err := deps.MarketData.Summary(ctx, symbol)
		if err != nil {
			return errResult("PE failed for %s: %v", symbol, err), nil
		}
		if summary.TrailingPE <= 0 {
			return map[string]interface{}{
				"symbol": symbol,
				"error":  "P/E missing or non-positive",
			}, nil
		}
		return map[string]interface{}{
			"symbol":                  symbol,
			"price_to_earnings_ratio": summary.TrailingPE,
			"note":                    "Trailing P/E",
		}, nil
	}

	return shared.NewToolBuilder(
		"get_pe_ratio",
		"Fetch the trailing P/E ratio for a symbol",
		fn, deps,
	).WithTimeout(15 * time.Second).WithStats().Build()
}

// NewPEGRatioTool derives the PEG ratio from trailing P/E and earnings
// growth. Growth outside (0, 2.0] is treated as implausible.
func NewPEGRatioTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_peg_ratio: market data client not configured"), nil
		}
		symbol := argString(args, "symbol")
		if symbol == "" {
			return errResult("calculate_peg_ratio: symbol is required"), nil
		}

		summary, err := deps.MarketData.Summary(ctx, symbol)
		if err != nil {
			return errResult("PEG failed for %s: %v", symbol, err), nil
		}
		pe := summary.TrailingPE
		growth := summary.EarningsGrowth
		if pe <= 0 || growth <= 0 || growth > 2.0 {
			return map[string]interface{}{
				"symbol": symbol,
				"error":  "Missing/implausible inputs",
			}, nil
		}
		return map[string]interface{}{
			"symbol":                    symbol,
			"peg_ratio":                 pe / (growth * 100.0),
			"pe_ratio":                  pe,
			"annual_eps_growth_percent": growth * 100.0,
			"raw_growth_input":          growth,
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_peg_ratio",
		"Derive the PEG ratio from P/E and earnings growth",
		fn, deps,
	).WithTimeout(15 * time.Second).WithStats().Build()
}

// NewEBITDATool reports EBITDA, falling back to EBIT plus depreciation or
// a net-income add-back when the direct figure is missing.
func NewEBITDATool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_ebitda: market data client not configured"), nil
		}
		symbol := strings.ToUpper(argString(args, "symbol"))
		if symbol == "" {
			return errResult("calculate_ebitda: symbol is required"), nil
		}

		summary, err := deps.MarketData.Summary(ctx, symbol)
		if err == nil && summary.EBITDA != 0 {
			return map[string]interface{}{
				"symbol": symbol,
				"ebitda": summary.EBITDA,
				"source": "info",
			}, nil
		}

		statements, err := deps.MarketData.Statements(ctx, symbol)
		if err != nil || len(statements.Income) == 0 {
			return errResult("No financials for %s", symbol), nil
		}
		income := statements.Income[0]
		var cashflow marketdata.StatementPeriod
		if len(statements.CashFlow) > 0 {
			cashflow = statements.CashFlow[0]
		}

		ebit := firstOf(income, "ebit", "operatingIncome")
		da := firstOf(cashflow, "depreciation", "depreciationAndAmortization")
		if ebit != 0 && da != 0 {
			return map[string]interface{}{
				"symbol": symbol,
				"ebitda": ebit + da,
				"source": "ebit_plus_da",
			}, nil
		}

		netIncome := income["netIncome"]
		interest := firstOf(income, "interestExpense", "interestExpenseNonOperating")
		tax := income["incomeTaxExpense"]
		if netIncome == 0 || tax == 0 || da == 0 {
			return errResult("Missing components for EBITDA add-back"), nil
		}
		return map[string]interface{}{
			"symbol": symbol,
			// interestExpense is reported negative; subtract to add it back
			"ebitda": netIncome - interest + tax + da,
			"source": "net_income_addback",
		}, nil
	}

	return shared.NewToolBuilder(
		"calculate_ebitda",
		"Compute EBITDA from reported financials",
		fn, deps,
	).WithTimeout(20 * time.Second).WithStats().Build()
}

// NewPiotroskiTool scores nine binary profitability, leverage and
// efficiency signals across the two most recent annual reports.
func NewPiotroskiTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasMarketData() {
			return errResult("calculate_piotroski_f_score: market data client not configured"), nil
		}
		symbol := strings.ToUpper(argString(args, "symbol"))
		if symbol == "" {
			return errResult("calculate_piotroski_f_score: symbol is required"), nil
		}

		statements, err := deps.MarketData.Statements(ctx, symbol)
		if err != nil {
			return errResult("Piotroski failed for %s: %v", symbol, err), nil
		}
		if len(statements.Income) < 2 || len(statements.Balance) < 2 || len(statements.CashFlow) < 2 {
			return map[string]interface{}{
				"symbol": symbol,
				"error":  "Missing/insufficient financial tables",
			}, nil
		}

		incT, incP := statements.Income[0], statements.Income[1]
		balT, balP := statements.Balance[0], statements.Balance[1]
		cfT := statements.CashFlow[0]

		score := 0
		details := map[string]interface{}{}
		addSignal := func(name string, pass bool) {
			details[name] = pass
			if pass {
				score++
			}
		}

		roaT := ratio(incT["netIncome"], balT["totalAssets"])
		roaP := ratio(incP["netIncome"], balP["totalAssets"])
		cfo := firstOf(cfT, "totalCashFromOperatingActivities", "operatingCashFlow")

		addSignal("P1_ROA_Positive", roaT > 0)
		addSignal("P2_CFO_Positive", cfo > 0)
		addSignal("P3_ROA_Improvement", roaT > roaP)
		addSignal("P4_CFO_vs_NetIncome", cfo > incT["netIncome"])

		addSignal("L1_Debt_Decrease", balT["longTermDebt"] <= balP["longTermDebt"])
		crT := ratio(balT["totalCurrentAssets"], balT["totalCurrentLiabilities"])
		crP := ratio(balP["totalCurrentAssets"], balP["totalCurrentLiabilities"])
		addSignal("L2_Current_Ratio_Improvement", crT > crP)
		addSignal("L3_No_New_Shares", balT["commonStock"] <= balP["commonStock"])

		gmT := ratio(incT["grossProfit"], incT["totalRevenue"])
		gmP := ratio(incP["grossProfit"], incP["totalRevenue"])
		addSignal("O1_Gross_Margin_Improvement", gmT > gmP)
		atT := ratio(incT["totalRevenue"], balT["totalAssets"])
		atP := ratio(incP["totalRevenue"], balP["totalAssets"])
		addSignal("O2_Asset_Turnover_Improvement", atT > atP)

		result := map[string]interface{}{
			"symbol":            symbol,
			"piotroski_f_score": score,
			"breakdown":         details,
		}
		if roaT == 0 || roaP == 0 || cfo == 0 || crT == 0 || crP == 0 || gmT == 0 || gmP == 0 {
			result["warning"] = "Partial input encountered."
		}
		return result, nil
	}

	return shared.NewToolBuilder(
		"calculate_piotroski_f_score",
		"Score nine Piotroski F-score signals from annual reports",
		fn, deps,
	).WithTimeout(30 * time.Second).WithStats().Build()
}

func firstOf(period marketdata.StatementPeriod, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := period[key]; ok {
			return v
		}
	}
	return 0
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
