package agents

import "time"

// AgentConfig captures runtime settings for an agent instance.
type AgentConfig struct {
	Type                 AgentType
	Name                 string
	Description          string
	AIProvider           string
	Model                string
	Tools                []string
	SystemPromptTemplate string
	OutputKey            string

	MaxToolCalls   int
	TimeoutPerTool time.Duration
	TotalTimeout   time.Duration
}

// DefaultAgentConfigs defines limits, prompts and output keys per agent.
var DefaultAgentConfigs = map[AgentType]AgentConfig{
	AgentEmailSentiment: {
		Type:                 AgentEmailSentiment,
		Name:                 "EmailSentimentReviewer",
		Description:          "Classifies sentiment, urgency and intention of an incoming email",
		Tools:                AgentToolMap[AgentEmailSentiment],
		SystemPromptTemplate: "email/sentiment",
		OutputKey:            "email_sentiment_obj",
		TotalTimeout:         time.Minute,
	},
	AgentEmailParser: {
		Type:                 AgentEmailParser,
		Name:                 "EmailParser",
		Description:          "Extracts structured customer fields from the email body",
		Tools:                AgentToolMap[AgentEmailParser],
		SystemPromptTemplate: "email/parser",
		OutputKey:            "email_parser_obj",
		TotalTimeout:         time.Minute,
	},
	AgentQueryRewriter: {
		Type:                 AgentQueryRewriter,
		Name:                 "QueryRewriter",
		Description:          "Rewrites the email body into a knowledge base query",
		Tools:                AgentToolMap[AgentQueryRewriter],
		SystemPromptTemplate: "email/rewriter",
		OutputKey:            "rewritten_query",
		TotalTimeout:         time.Minute,
	},
	AgentEmailGenerator: {
		Type:                 AgentEmailGenerator,
		Name:                 "EmailGenerator",
		Description:          "Drafts the reply email from the knowledge lookup result",
		Tools:                AgentToolMap[AgentEmailGenerator],
		SystemPromptTemplate: "email/generator",
		OutputKey:            "email_draft",
		TotalTimeout:         time.Minute,
	},
	AgentEmailReviewer: {
		Type:                 AgentEmailReviewer,
		Name:                 "EmailReviewer",
		Description:          "Reviews the draft reply and emits revision comments",
		Tools:                AgentToolMap[AgentEmailReviewer],
		SystemPromptTemplate: "email/reviewer",
		OutputKey:            "email_review_comments",
		TotalTimeout:         time.Minute,
	},
	AgentEmailReviser: {
		Type:                 AgentEmailReviser,
		Name:                 "EmailReviser",
		Description:          "Applies reviewer comments to the draft reply",
		Tools:                AgentToolMap[AgentEmailReviser],
		SystemPromptTemplate: "email/reviser",
		OutputKey:            "email_draft",
		TotalTimeout:         time.Minute,
	},

	AgentProcessAnalysis: {
		Type:                 AgentProcessAnalysis,
		Name:                 "ProcessAnalysisAgent",
		Description:          "Elicits requirements for the requested business process",
		Tools:                AgentToolMap[AgentProcessAnalysis],
		SystemPromptTemplate: "process/analysis",
		OutputKey:            "requirements_summary",
		TotalTimeout:         2 * time.Minute,
	},
	AgentProcessDesign: {
		Type:                 AgentProcessDesign,
		Name:                 "ProcessDesignAgent",
		Description:          "Designs the process model and revises it from feedback",
		Tools:                AgentToolMap[AgentProcessDesign],
		SystemPromptTemplate: "process/design",
		OutputKey:            "master_process_json",
		MaxToolCalls:         6,
		TimeoutPerTool:       10 * time.Second,
		TotalTimeout:         3 * time.Minute,
	},
	AgentProcessCompliance: {
		Type:                 AgentProcessCompliance,
		Name:                 "ComplianceAgent",
		Description:          "Checks the design against policy and records its verdict",
		Tools:                AgentToolMap[AgentProcessCompliance],
		SystemPromptTemplate: "process/compliance",
		OutputKey:            "compliance_review",
		MaxToolCalls:         4,
		TimeoutPerTool:       10 * time.Second,
		TotalTimeout:         2 * time.Minute,
	},
	AgentProcessSimulation: {
		Type:                 AgentProcessSimulation,
		Name:                 "SimulationAgent",
		Description:          "Stress-tests the design with a Monte Carlo run",
		Tools:                AgentToolMap[AgentProcessSimulation],
		SystemPromptTemplate: "process/simulation",
		OutputKey:            "simulation_report",
		MaxToolCalls:         4,
		TimeoutPerTool:       30 * time.Second,
		TotalTimeout:         3 * time.Minute,
	},
	AgentProcessGrounding: {
		Type:                 AgentProcessGrounding,
		Name:                 "GroundingAgent",
		Description:          "Validates design claims against the knowledge base",
		Tools:                AgentToolMap[AgentProcessGrounding],
		SystemPromptTemplate: "process/grounding",
		OutputKey:            "grounding_review",
		MaxToolCalls:         6,
		TimeoutPerTool:       20 * time.Second,
		TotalTimeout:         3 * time.Minute,
	},
	AgentProcessNormalizer: {
		Type:                 AgentProcessNormalizer,
		Name:                 "JSONNormalizerAgent",
		Description:          "Normalizes the approved design into the process schema",
		Tools:                AgentToolMap[AgentProcessNormalizer],
		SystemPromptTemplate: "process/normalizer",
		OutputKey:            "normalized_process_json",
		MaxToolCalls:         4,
		TimeoutPerTool:       10 * time.Second,
		TotalTimeout:         2 * time.Minute,
	},
	AgentProcessJSONReviewer: {
		Type:                 AgentProcessJSONReviewer,
		Name:                 "JSONReviewAgent",
		Description:          "Reviews the normalized JSON and records approval",
		Tools:                AgentToolMap[AgentProcessJSONReviewer],
		SystemPromptTemplate: "process/json_review",
		OutputKey:            "json_review_comments",
		MaxToolCalls:         4,
		TimeoutPerTool:       10 * time.Second,
		TotalTimeout:         2 * time.Minute,
	},
	AgentSubprocessGenerator: {
		Type:                 AgentSubprocessGenerator,
		Name:                 "SubprocessGeneratorAgent",
		Description:          "Expands one process step into a subprocess flow",
		Tools:                AgentToolMap[AgentSubprocessGenerator],
		SystemPromptTemplate: "process/subprocess_generator",
		OutputKey:            "subprocess_json",
		MaxToolCalls:         4,
		TimeoutPerTool:       15 * time.Second,
		TotalTimeout:         2 * time.Minute,
	},
	AgentProcessUpdateAnalyst: {
		Type:                 AgentProcessUpdateAnalyst,
		Name:                 "UpdateAnalysisAgent",
		Description:          "Derives change requirements from an existing document",
		Tools:                AgentToolMap[AgentProcessUpdateAnalyst],
		SystemPromptTemplate: "process/update_analysis",
		OutputKey:            "requirements_summary",
		MaxToolCalls:         4,
		TimeoutPerTool:       15 * time.Second,
		TotalTimeout:         2 * time.Minute,
	},

	AgentPortfolioResearch: {
		Type:                 AgentPortfolioResearch,
		Name:                 "ResearchAgent",
		Description:          "Screens index constituents into a candidate universe",
		Tools:                AgentToolMap[AgentPortfolioResearch],
		SystemPromptTemplate: "finance/research",
		OutputKey:            "candidate_symbols",
		MaxToolCalls:         15,
		TimeoutPerTool:       15 * time.Second,
		TotalTimeout:         3 * time.Minute,
	},
	AgentPortfolioCalculation: {
		Type:                 AgentPortfolioCalculation,
		Name:                 "CalculationAgent",
		Description:          "Computes risk and valuation metrics for candidates",
		Tools:                AgentToolMap[AgentPortfolioCalculation],
		SystemPromptTemplate: "finance/calculation",
		OutputKey:            "metrics_report",
		MaxToolCalls:         40,
		TimeoutPerTool:       15 * time.Second,
		TotalTimeout:         5 * time.Minute,
	},
	AgentPortfolioArchitect: {
		Type:                 AgentPortfolioArchitect,
		Name:                 "PortfolioArchitect",
		Description:          "Assembles the two-bucket portfolio and writes the workbook",
		Tools:                AgentToolMap[AgentPortfolioArchitect],
		SystemPromptTemplate: "finance/architect",
		OutputKey:            "portfolio_recommendation",
		MaxToolCalls:         6,
		TimeoutPerTool:       5 * time.Minute,
		TotalTimeout:         10 * time.Minute,
	},
}
