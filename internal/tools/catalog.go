package tools

// Definition describes a tool's metadata for registration and documentation.
type Definition struct {
	Name        string
	Description string
	Category    string
}

// toolDefinitions enumerates every tool the agents can call.
var toolDefinitions = []Definition{
	{Name: "answer_query", Description: "Answer a question from the enterprise knowledge base", Category: "knowledge"},

	{Name: "get_last_stock_price", Description: "Latest traded price for a symbol", Category: "market_data"},
	{Name: "get_aggregated_stock_data", Description: "OHLCV bars between two dates", Category: "market_data"},
	{Name: "generate_time_series_chart_data", Description: "Time series of a single metric for charting", Category: "market_data"},
	{Name: "get_daily_returns", Description: "Daily percentage returns over a range", Category: "market_data"},
	{Name: "compare_key_metrics", Description: "Side-by-side return and volatility comparison", Category: "market_data"},

	{Name: "get_risk_free_rate", Description: "Annual risk-free rate from the 10Y note proxy", Category: "rates"},
	{Name: "get_historical_market_return", Description: "Annualized benchmark return over a range", Category: "rates"},

	{Name: "calculate_beta_and_volatility", Description: "Regression beta and annualized volatility", Category: "risk_metrics"},
	{Name: "calculate_sharpe_ratio", Description: "Sharpe ratio from daily log returns", Category: "risk_metrics"},
	{Name: "calculate_sortino_ratio", Description: "Sortino ratio with downside deviation", Category: "risk_metrics"},
	{Name: "calculate_treynor_ratio", Description: "Treynor ratio from supplied inputs", Category: "risk_metrics"},
	{Name: "calculate_jensens_alpha", Description: "Jensen's alpha from supplied inputs", Category: "risk_metrics"},
	{Name: "calculate_correlation_matrix", Description: "Pairwise correlation of symbol returns", Category: "risk_metrics"},

	{Name: "get_pe_ratio", Description: "Trailing price-to-earnings ratio", Category: "fundamentals"},
	{Name: "calculate_peg_ratio", Description: "PEG ratio with growth plausibility check", Category: "fundamentals"},
	{Name: "calculate_ebitda", Description: "EBITDA with statement fallbacks", Category: "fundamentals"},
	{Name: "calculate_piotroski_f_score", Description: "Nine-signal Piotroski F-score", Category: "fundamentals"},

	{Name: "get_technical_indicators", Description: "SMA, RSI and MACD snapshot", Category: "indicators"},
	{Name: "get_on_balance_volume", Description: "On-balance volume series", Category: "indicators"},

	{Name: "get_major_index_symbols", Description: "Constituent symbols of a major index", Category: "research"},

	{Name: "build_portfolio", Description: "Two-bucket beta portfolio with correlation constraint", Category: "portfolio"},
	{Name: "write_portfolio_workbook", Description: "Write the portfolio Excel workbook", Category: "portfolio"},

	{Name: "persist_final_json", Description: "Validate and write the approved process JSON", Category: "process"},
	{Name: "load_master_process_json", Description: "Read the master process JSON", Category: "process"},
	{Name: "save_iteration_feedback", Description: "Record reviewer feedback for the next iteration", Category: "process"},
	{Name: "load_iteration_feedback", Description: "Read accumulated reviewer feedback", Category: "process"},
	{Name: "record_approval", Description: "Merge a reviewer verdict into the approval state", Category: "process"},
	{Name: "stop_if_ready", Description: "Escalate out of the loop when approvals are complete", Category: "process"},
	{Name: "status_logger", Description: "Log stop-controller progress", Category: "process"},
	{Name: "simulate_process_performance", Description: "Monte Carlo bottleneck simulation", Category: "process"},
	{Name: "persist_subprocess_json", Description: "Write a step's subprocess flow and diagram", Category: "process"},
	{Name: "create_process_document", Description: "Render the process specification document", Category: "process"},
	{Name: "extract_document_text", Description: "Extract text from an existing specification", Category: "process"},
}

// Definitions exposes a copy of all tool definitions.
func Definitions() []Definition {
	defs := make([]Definition, len(toolDefinitions))
	copy(defs, toolDefinitions)
	return defs
}

// DefinitionsByCategory groups tool definitions for documentation output.
func DefinitionsByCategory() map[string][]Definition {
	out := make(map[string][]Definition)
	for _, def := range toolDefinitions {
		out[def.Category] = append(out[def.Category], def)
	}
	return out
}
