package agents

// AgentType enumerates supported agent specializations.
type AgentType string

const (
	AgentEmailSentiment AgentType = "email_sentiment"
	AgentEmailParser    AgentType = "email_parser"
	AgentQueryRewriter  AgentType = "query_rewriter"
	AgentEmailGenerator AgentType = "email_generator"
	AgentEmailReviewer  AgentType = "email_reviewer"
	AgentEmailReviser   AgentType = "email_reviser"

	AgentProcessAnalysis      AgentType = "process_analysis"
	AgentProcessDesign        AgentType = "process_design"
	AgentProcessCompliance    AgentType = "process_compliance"
	AgentProcessSimulation    AgentType = "process_simulation"
	AgentProcessGrounding     AgentType = "process_grounding"
	AgentProcessNormalizer    AgentType = "process_normalizer"
	AgentProcessJSONReviewer  AgentType = "process_json_reviewer"
	AgentSubprocessGenerator  AgentType = "subprocess_generator"
	AgentProcessUpdateAnalyst AgentType = "process_update_analyst"

	AgentPortfolioResearch    AgentType = "portfolio_research"
	AgentPortfolioCalculation AgentType = "portfolio_calculation"
	AgentPortfolioArchitect   AgentType = "portfolio_architect"
)

// RunOptions carries runtime model selection for building pipelines.
type RunOptions struct {
	UserID     string
	AIProvider string
	Model      string
}
