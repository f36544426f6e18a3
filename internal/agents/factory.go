package agents

import (
	"context"
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/agent/workflowagents/loopagent"
	sequentialagent "google.golang.org/adk/agent/workflowagents/sequentialagent"
	adktool "google.golang.org/adk/tool"

	"atlas/internal/adapters/ai"
	"atlas/internal/adapters/config"
	"atlas/internal/agents/callbacks"
	"atlas/internal/tools"
	"atlas/pkg/templates"
)

// FactoryDeps gathers external dependencies needed to instantiate agents.
type FactoryDeps struct {
	AIRegistry   *ai.ProviderRegistry
	ToolRegistry *tools.Registry
	Templates    *templates.Registry
	Props        *config.Properties
}

// Factory creates configured agents and registries. Every pipeline in the
// repo assembles its agents through here; there is no per-pipeline clone of
// agent construction code.
type Factory struct {
	aiRegistry   *ai.ProviderRegistry
	toolRegistry *tools.Registry
	templates    *templates.Registry
	props        *config.Properties
}

// NewFactory builds an agent factory with required dependencies.
func NewFactory(deps FactoryDeps) (*Factory, error) {
	if deps.ToolRegistry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	if deps.AIRegistry == nil {
		return nil, fmt.Errorf("AI provider registry is required")
	}

	if deps.Templates == nil {
		deps.Templates = templates.Get()
	}

	return &Factory{
		aiRegistry:   deps.AIRegistry,
		toolRegistry: deps.ToolRegistry,
		templates:    deps.Templates,
		props:        deps.Props,
	}, nil
}

// CreateAgent constructs a single ADK agent instance from a config.
func (f *Factory) CreateAgent(cfg AgentConfig) (agent.Agent, error) {
	modelInfo, err := f.aiRegistry.ResolveModel(context.Background(), cfg.AIProvider, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model %s/%s: %w", cfg.AIProvider, cfg.Model, err)
	}

	llmModel, err := f.aiRegistry.CreateLLM(context.Background(), cfg.AIProvider, modelInfo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s/%s: %w", cfg.AIProvider, modelInfo.Name, err)
	}

	agentTools := make([]adktool.Tool, 0, len(cfg.Tools))
	toolInfo := make([]tools.Definition, 0, len(cfg.Tools))
	definitionByName := map[string]tools.Definition{}
	for _, def := range tools.Definitions() {
		definitionByName[def.Name] = def
	}

	for _, toolName := range cfg.Tools {
		t, ok := f.toolRegistry.Get(toolName)
		if !ok {
			return nil, fmt.Errorf("tool not found: %s", toolName)
		}
		agentTools = append(agentTools, t)
		if def, ok := definitionByName[toolName]; ok {
			toolInfo = append(toolInfo, def)
		} else {
			toolInfo = append(toolInfo, tools.Definition{Name: toolName, Description: ""})
		}
	}

	instruction := ""
	if cfg.SystemPromptTemplate != "" {
		data := map[string]interface{}{
			"Tools":        toolInfo,
			"MaxToolCalls": cfg.MaxToolCalls,
			"AgentName":    cfg.Name,
			"AgentType":    cfg.Type,
		}
		instruction, err = f.templates.Render(cfg.SystemPromptTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("render prompt for %s: %w", cfg.Name, err)
		}
	}

	return llmagent.New(llmagent.Config{
		Name:        cfg.Name,
		Description: cfg.Description,
		Model:       llmModel,
		Tools:       agentTools,
		Instruction: instruction,
		OutputKey:   cfg.OutputKey,
		BeforeAgentCallbacks: []agent.BeforeAgentCallback{
			callbacks.StartTimingBeforeCallback(string(cfg.Type)),
		},
		AfterAgentCallbacks: []agent.AfterAgentCallback{
			callbacks.DurationAfterCallback(),
		},
		BeforeModelCallbacks: []llmagent.BeforeModelCallback{
			callbacks.ModelPacingBeforeCallback(f.props),
		},
		AfterModelCallbacks: []llmagent.AfterModelCallback{
			callbacks.TokenCountingCallback(),
		},
		BeforeToolCallbacks: []llmagent.BeforeToolCallback{
			callbacks.AuditBeforeToolCallback(f.toolRegistry),
		},
		AfterToolCallbacks: []llmagent.AfterToolCallback{
			callbacks.StatsAfterToolCallback(),
			callbacks.ErrorFoldingAfterToolCallback(),
		},
	})
}

// CreateTypedAgent looks up the default config for a type, applies the
// provider/model overrides and builds the agent.
func (f *Factory) CreateTypedAgent(agentType AgentType, opts RunOptions) (agent.Agent, error) {
	cfg, ok := DefaultAgentConfigs[agentType]
	if !ok {
		return nil, fmt.Errorf("no default config for agent type %s", agentType)
	}
	cfg.AIProvider = opts.AIProvider
	cfg.Model = opts.Model
	return f.CreateAgent(cfg)
}

// CreateSequential wraps sub-agents in a sequential workflow agent.
func (f *Factory) CreateSequential(name, description string, subAgents ...agent.Agent) (agent.Agent, error) {
	return sequentialagent.New(sequentialagent.Config{
		AgentConfig: agent.Config{
			Name:        name,
			Description: description,
			SubAgents:   subAgents,
		},
	})
}

// CreateLoop wraps sub-agents in a bounded loop workflow agent. The loop
// exits early when a sub-agent escalates.
func (f *Factory) CreateLoop(name, description string, maxIterations uint, subAgents ...agent.Agent) (agent.Agent, error) {
	return loopagent.New(loopagent.Config{
		AgentConfig: agent.Config{
			Name:        name,
			Description: description,
			SubAgents:   subAgents,
		},
		MaxIterations: maxIterations,
	})
}

// CreateDefaultRegistry builds and registers agents using DefaultAgentConfigs.
func (f *Factory) CreateDefaultRegistry(provider, model string) (*Registry, error) {
	reg := NewRegistry()

	for _, cfg := range DefaultAgentConfigs {
		cfg.AIProvider = provider
		cfg.Model = model
		ag, err := f.CreateAgent(cfg)
		if err != nil {
			return nil, err
		}
		reg.Register(cfg.Type, ag)
	}

	return reg, nil
}

// Templates exposes the prompt template registry used by this factory.
func (f *Factory) Templates() *templates.Registry { return f.templates }

// ToolRegistry exposes the tool registry used by this factory.
func (f *Factory) ToolRegistry() *tools.Registry { return f.toolRegistry }
