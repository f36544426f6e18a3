package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	adkmodel "google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"atlas/pkg/errors"
)

// GeminiProvider implements Google Gemini metadata and model construction.
type GeminiProvider struct {
	apiKey  string
	timeout time.Duration
	models  []ModelInfo

	mu   sync.Mutex
	llms map[string]adkmodel.LLM
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		timeout: timeout,
		models:  geminiModels(),
		llms:    make(map[string]adkmodel.LLM),
	}
}

// Name returns provider name.
func (p *GeminiProvider) Name() string { return ProviderNameGoogle.String() }

// GetModel returns model info by name.
func (p *GeminiProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "gemini model %s not found", model)
}

// ListModels lists available models.
func (p *GeminiProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

// CreateLLM returns the Gemini-backed ADK model for a model name. The
// underlying genai client is created once per model and reused, so every
// agent on the same model shares one connection pool.
func (p *GeminiProvider) CreateLLM(ctx context.Context, model string) (adkmodel.LLM, error) {
	if _, err := p.GetModel(ctx, model); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if llm, ok := p.llms[model]; ok {
		return llm, nil
	}

	llm, err := gemini.NewModel(ctx, model, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create gemini model %s", model)
	}

	p.llms[model] = llm
	return llm, nil
}

// SupportsStreaming indicates streaming support.
func (p *GeminiProvider) SupportsStreaming() bool { return true }

// SupportsTools indicates tool calling support.
func (p *GeminiProvider) SupportsTools() bool { return true }

func geminiModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:          ProviderNameGoogle,
			Name:              "gemini-2.0-flash",
			Family:            "gemini-2.0",
			MaxTokens:         1000000,
			InputCostPer1K:    0.0001,
			OutputCostPer1K:   0.0004,
			SupportsImages:    true,
			SupportsAudio:     true,
			SupportsTools:     true,
			SupportsStreaming: true,
		},
		{
			Provider:          ProviderNameGoogle,
			Name:              "gemini-2.5-pro",
			Family:            "gemini-2.5",
			MaxTokens:         2000000,
			InputCostPer1K:    0.00125,
			OutputCostPer1K:   0.01,
			SupportsImages:    true,
			SupportsAudio:     true,
			SupportsTools:     true,
			SupportsStreaming: true,
		},
	}
}
