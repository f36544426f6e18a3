package agents

// AgentToolMap lists the tool names each agent type is allowed to call.
// Email drafting agents work purely on session state; their knowledge
// lookup happens in the category tool agents of the orchestrator.
var AgentToolMap = map[AgentType][]string{
	AgentEmailSentiment: nil,
	AgentEmailParser:    nil,
	AgentQueryRewriter:  nil,
	AgentEmailGenerator: nil,
	AgentEmailReviewer:  nil,
	AgentEmailReviser:   nil,

	AgentProcessAnalysis: nil,
	AgentProcessDesign: {
		"load_iteration_feedback",
		"load_master_process_json",
	},
	AgentProcessCompliance: {
		"record_approval",
		"save_iteration_feedback",
	},
	AgentProcessSimulation: {
		"simulate_process_performance",
		"record_approval",
		"save_iteration_feedback",
	},
	AgentProcessGrounding: {
		"answer_query",
		"record_approval",
		"save_iteration_feedback",
	},
	AgentProcessNormalizer: {
		"load_iteration_feedback",
	},
	AgentProcessJSONReviewer: {
		"record_approval",
		"save_iteration_feedback",
		"persist_final_json",
	},
	AgentSubprocessGenerator: {
		"persist_subprocess_json",
	},
	AgentProcessUpdateAnalyst: {
		"extract_document_text",
	},

	AgentPortfolioResearch: {
		"get_major_index_symbols",
		"get_last_stock_price",
		"compare_key_metrics",
	},
	AgentPortfolioCalculation: {
		"get_last_stock_price",
		"get_aggregated_stock_data",
		"get_daily_returns",
		"get_risk_free_rate",
		"get_historical_market_return",
		"calculate_beta_and_volatility",
		"calculate_sharpe_ratio",
		"calculate_sortino_ratio",
		"calculate_treynor_ratio",
		"calculate_jensens_alpha",
		"calculate_correlation_matrix",
		"get_pe_ratio",
		"calculate_peg_ratio",
		"calculate_ebitda",
		"calculate_piotroski_f_score",
		"get_technical_indicators",
		"get_on_balance_volume",
	},
	AgentPortfolioArchitect: {
		"build_portfolio",
		"write_portfolio_workbook",
	},
}
