package workflows

import (
	"fmt"

	"google.golang.org/adk/agent"

	"atlas/internal/adapters/config"
	"atlas/internal/agents"
	"atlas/internal/process"
	"atlas/internal/tools/shared"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// Factory assembles the application pipelines from configured agents.
// Deterministic stages (stop controllers, JSON writer, subprocess driver,
// document stage) are built here as custom agents around the same store
// and knowledge client the tools use.
type Factory struct {
	agents *agents.Factory
	deps   shared.Deps
	store  *process.Store
	props  *config.Properties
	opts   agents.RunOptions

	log *logger.Logger
}

// NewFactory builds a workflow factory.
func NewFactory(agentFactory *agents.Factory, deps shared.Deps, opts agents.RunOptions) (*Factory, error) {
	if agentFactory == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "agent factory is required")
	}

	props := deps.Props
	if props == nil {
		props = config.NewProperties()
	}

	return &Factory{
		agents: agentFactory,
		deps:   deps,
		store:  process.NewStore(deps.OutputDir, deps.Log),
		props:  props,
		opts:   opts,
		log:    logger.Get().With("component", "workflow_factory"),
	}, nil
}

// Store exposes the process artifact store shared with the tool layer.
func (f *Factory) Store() *process.Store { return f.store }

// createAgent builds an agent from its default config with the factory's
// provider and model applied.
func (f *Factory) createAgent(agentType agents.AgentType) (agent.Agent, error) {
	return f.agents.CreateTypedAgent(agentType, f.opts)
}

// createNamedAgent builds an agent from its default config under a distinct
// name. Pipelines that run the same specialization at several positions use
// this instead of cloning agent definitions.
func (f *Factory) createNamedAgent(agentType agents.AgentType, name string) (agent.Agent, error) {
	cfg, ok := agents.DefaultAgentConfigs[agentType]
	if !ok {
		return nil, fmt.Errorf("no default config for agent type %s", agentType)
	}
	cfg.Name = name
	cfg.AIProvider = f.opts.AIProvider
	cfg.Model = f.opts.Model
	return f.agents.CreateAgent(cfg)
}

// loopIterations resolves the design/normalization loop budget.
func (f *Factory) loopIterations() uint {
	n := f.props.GetInt("loopIterations", 6)
	if n <= 0 {
		n = 6
	}
	return uint(n)
}

// groundingEnabled reports whether the grounding stage joins the design loop.
func (f *Factory) groundingEnabled() bool {
	return f.props.GetBool("enableGroundingAgent", true)
}
