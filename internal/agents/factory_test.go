package agents

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	adkmodel "google.golang.org/adk/model"

	"atlas/internal/adapters/ai"
	"atlas/internal/tools"
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

func newTestFactory(t *testing.T) *Factory {
	t.Helper()

	aiRegistry := ai.NewProviderRegistry()
	require.NoError(t, aiRegistry.Register(stubProvider{}))

	factory, err := NewFactory(FactoryDeps{
		AIRegistry:   aiRegistry,
		ToolRegistry: tools.NewRegistry(),
	})
	require.NoError(t, err)
	return factory
}

func TestCreateAgentBuildsLLMAgent(t *testing.T) {
	factory := newTestFactory(t)

	ag, err := factory.CreateAgent(AgentConfig{
		Name:        "email_sentiment",
		Type:        AgentEmailSentiment,
		Description: "Classifies the tone of an inbound email",
		AIProvider:  "mock",
		Model:       "alpha",
	})
	require.NoError(t, err)
	assert.Equal(t, "email_sentiment", ag.Name())
}

func TestCreateAgentRejectsUnknownTool(t *testing.T) {
	factory := newTestFactory(t)

	_, err := factory.CreateAgent(AgentConfig{
		Name:       "broken",
		AIProvider: "mock",
		Model:      "alpha",
		Tools:      []string{"no_such_tool"},
	})
	assert.Error(t, err)
}

func TestCreateAgentRejectsUnknownProvider(t *testing.T) {
	factory := newTestFactory(t)

	_, err := factory.CreateAgent(AgentConfig{
		Name:       "orphan",
		AIProvider: "missing",
		Model:      "alpha",
	})
	assert.Error(t, err)
}
