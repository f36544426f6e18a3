package workflows

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	adkmodel "google.golang.org/adk/model"

	"atlas/internal/adapters/ai"
	"atlas/internal/adapters/config"
	"atlas/internal/agents"
	"atlas/internal/tools"
	"atlas/internal/tools/shared"
	"atlas/pkg/logger"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "mock" }

func (stubProvider) GetModel(ctx context.Context, model string) (ai.ModelInfo, error) {
	return ai.ModelInfo{Name: model, MaxTokens: 8192}, nil
}

func (stubProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	return []ai.ModelInfo{{Name: "alpha", MaxTokens: 8192}}, nil
}

func (stubProvider) CreateLLM(ctx context.Context, model string) (adkmodel.LLM, error) {
	return stubLLM{name: model}, nil
}

func (stubProvider) SupportsStreaming() bool { return true }
func (stubProvider) SupportsTools() bool     { return true }

type stubLLM struct {
	name string
}

func (s stubLLM) Name() string { return s.name }

func (s stubLLM) GenerateContent(context.Context, *adkmodel.LLMRequest, bool) iter.Seq2[*adkmodel.LLMResponse, error] {
	return func(func(*adkmodel.LLMResponse, error) bool) {}
}

func testFactory(t *testing.T) *Factory {
	t.Helper()

	require.NoError(t, logger.Init("error", "test"))

	aiRegistry := ai.NewProviderRegistry()
	require.NoError(t, aiRegistry.Register(stubProvider{}))

	deps := shared.Deps{
		Props:     config.NewProperties(),
		OutputDir: t.TempDir(),
		Log:       logger.Get(),
	}

	toolRegistry := tools.NewRegistry()
	tools.RegisterAllTools(toolRegistry, deps, &config.Config{})

	agentFactory, err := agents.NewFactory(agents.FactoryDeps{
		AIRegistry:   aiRegistry,
		ToolRegistry: toolRegistry,
	})
	require.NoError(t, err)

	factory, err := NewFactory(agentFactory, deps, agents.RunOptions{AIProvider: "mock", Model: "alpha"})
	require.NoError(t, err)
	return factory
}

func TestCreateEmailPipeline(t *testing.T) {
	factory := testFactory(t)

	pipeline, err := factory.CreateEmailPipeline()
	require.NoError(t, err)
	assert.Equal(t, "EmailProcessor", pipeline.Name())
}

func TestCategoryAgentCoverage(t *testing.T) {
	assert.Len(t, categoryAgentNames, 12, "one category agent per classified intention")
	assert.Contains(t, categoryAgentNames, "Customer Meter Request")
	assert.NotContains(t, categoryAgentNames, "GenericIT", "generic agent is the fallback, not a category")
}

func TestCreateProcessPipelines(t *testing.T) {
	factory := testFactory(t)

	pipeline, err := factory.CreateProcessPipeline()
	require.NoError(t, err)
	assert.Equal(t, "ProcessCreatePipeline", pipeline.Name())

	update, err := factory.CreateProcessUpdatePipeline("output/customer_onboarding_specification.docx")
	require.NoError(t, err)
	assert.Equal(t, "ProcessUpdatePipeline", update.Name())
}

func TestCreatePortfolioPipeline(t *testing.T) {
	factory := testFactory(t)

	pipeline, err := factory.CreatePortfolioPipeline()
	require.NoError(t, err)
	assert.Equal(t, "PortfolioPipeline", pipeline.Name())
}

func TestLoopIterationsDefault(t *testing.T) {
	factory := testFactory(t)

	assert.Equal(t, uint(6), factory.loopIterations())

	factory.props.Set("loopIterations", "3")
	assert.Equal(t, uint(3), factory.loopIterations())
}
