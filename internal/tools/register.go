package tools

import (
	"atlas/internal/adapters/config"
	procmodel "atlas/internal/process"
	"atlas/internal/tools/finance"
	"atlas/internal/tools/knowledge"
	toolportfolio "atlas/internal/tools/portfolio"
	toolprocess "atlas/internal/tools/process"
	"atlas/internal/tools/research"
	"atlas/internal/tools/shared"
)

// RegisterAllTools registers every tool family in the registry.
//
// All tools are built through shared.NewToolBuilder() with middleware
// configured per tool: WithRetry for upstream API calls, WithTimeout for
// everything, WithStats for Prometheus usage tracking.
func RegisterAllTools(registry *Registry, deps shared.Deps, cfg *config.Config) {
	log := deps.Log.With("component", "tool_registration")

	store := procmodel.NewStore(deps.OutputDir, deps.Log)

	// Knowledge base
	registry.Register("answer_query", knowledge.NewAnswerQueryTool(deps))
	log.Debug("Registered knowledge tools")

	// Market data
	registry.Register("get_last_stock_price", finance.NewLastPriceTool(deps))
	registry.Register("get_aggregated_stock_data", finance.NewAggregatedDataTool(deps))
	registry.Register("generate_time_series_chart_data", finance.NewChartDataTool(deps))
	registry.Register("get_daily_returns", finance.NewDailyReturnsTool(deps))
	registry.Register("compare_key_metrics", finance.NewCompareMetricsTool(deps))
	log.Debug("Registered market data tools")

	// Rates and benchmarks
	registry.Register("get_risk_free_rate", finance.NewRiskFreeRateTool(deps, cfg.MarketData.RiskFreeOverride))
	registry.Register("get_historical_market_return", finance.NewMarketReturnTool(deps))
	log.Debug("Registered rate tools")

	// Risk metrics
	registry.Register("calculate_beta_and_volatility", finance.NewBetaVolatilityTool(deps))
	registry.Register("calculate_sharpe_ratio", finance.NewSharpeRatioTool(deps))
	registry.Register("calculate_sortino_ratio", finance.NewSortinoRatioTool(deps))
	registry.Register("calculate_treynor_ratio", finance.NewTreynorRatioTool(deps))
	registry.Register("calculate_jensens_alpha", finance.NewJensensAlphaTool(deps))
	registry.Register("calculate_correlation_matrix", finance.NewCorrelationMatrixTool(deps))
	log.Debug("Registered risk metric tools")

	// Fundamentals
	registry.Register("get_pe_ratio", finance.NewPERatioTool(deps))
	registry.Register("calculate_peg_ratio", finance.NewPEGRatioTool(deps))
	registry.Register("calculate_ebitda", finance.NewEBITDATool(deps))
	registry.Register("calculate_piotroski_f_score", finance.NewPiotroskiTool(deps))
	log.Debug("Registered fundamentals tools")

	// Technical indicators
	registry.Register("get_technical_indicators", finance.NewTechnicalIndicatorsTool(deps))
	registry.Register("get_on_balance_volume", finance.NewOnBalanceVolumeTool(deps))
	log.Debug("Registered indicator tools")

	// Research
	registry.Register("get_major_index_symbols", research.NewIndexSymbolsTool(deps))
	log.Debug("Registered research tools")

	// Portfolio construction
	registry.Register("build_portfolio", toolportfolio.NewBuildPortfolioTool(deps, cfg.Portfolio))
	registry.Register("write_portfolio_workbook", toolportfolio.NewWriteWorkbookTool(deps))
	log.Debug("Registered portfolio tools")

	// Process engineering
	registry.Register("persist_final_json", toolprocess.NewPersistProcessTool(deps, store))
	registry.Register("load_master_process_json", toolprocess.NewLoadProcessTool(deps, store))
	registry.Register("save_iteration_feedback", toolprocess.NewSaveFeedbackTool(deps, store))
	registry.Register("load_iteration_feedback", toolprocess.NewLoadFeedbackTool(deps, store))
	registry.Register("record_approval", toolprocess.NewRecordApprovalTool(deps, store))
	registry.Register("stop_if_ready", toolprocess.NewStopIfReadyTool(deps, store))
	registry.Register("status_logger", toolprocess.NewStatusLoggerTool(deps))
	registry.Register("simulate_process_performance", toolprocess.NewSimulateProcessTool(deps))
	registry.Register("persist_subprocess_json", toolprocess.NewPersistSubprocessTool(deps, store))
	registry.Register("create_process_document", toolprocess.NewCreateDocumentTool(deps, store))
	registry.Register("extract_document_text", toolprocess.NewExtractDocumentTextTool(deps))
	log.Debug("Registered process engineering tools")

	log.Infof("Tool registration complete: %d tools available", len(registry.List()))
}
