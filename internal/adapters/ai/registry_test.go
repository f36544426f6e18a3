package ai

import (
	"context"
	"fmt"
	"iter"
	"testing"

	adkmodel "google.golang.org/adk/model"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewProviderRegistry()
	mock := &mockProvider{models: []ModelInfo{{Name: "alpha", MaxTokens: 1000}}}
	if err := registry.Register(mock); err != nil {
		t.Fatalf("failed to register provider: %v", err)
	}

	if err := registry.Register(mock); err == nil {
		t.Fatal("expected error on duplicate registration")
	}

	info, err := registry.ResolveModel(context.Background(), "mock", "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "alpha" {
		t.Fatalf("expected model alpha, got %s", info.Name)
	}

	if _, err := registry.ResolveModel(context.Background(), "missing", "alpha"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistryCreateLLM(t *testing.T) {
	registry := NewProviderRegistry()
	mock := &mockProvider{models: []ModelInfo{{Name: "alpha", MaxTokens: 1000}}}
	if err := registry.Register(mock); err != nil {
		t.Fatalf("failed to register provider: %v", err)
	}

	llm, err := registry.CreateLLM(context.Background(), "mock", "alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.Name() != "alpha" {
		t.Fatalf("expected llm alpha, got %s", llm.Name())
	}

	if _, err := registry.CreateLLM(context.Background(), "missing", "alpha"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestGeminiProviderModels(t *testing.T) {
	provider := NewGeminiProvider("test-key", 0)

	models, err := provider.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("expected at least one model")
	}

	info, err := provider.GetModel(context.Background(), string(ModelGeminiFlash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Provider != ProviderNameGoogle {
		t.Fatalf("expected provider %s, got %s", ProviderNameGoogle, info.Provider)
	}
	if !info.SupportsTools {
		t.Fatal("flash model should support tools")
	}

	if _, err := provider.GetModel(context.Background(), "unknown-model"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestGeminiProviderCreateLLM(t *testing.T) {
	provider := NewGeminiProvider("test-key", 0)

	llm, err := provider.CreateLLM(context.Background(), string(ModelGeminiFlash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.Name() != string(ModelGeminiFlash) {
		t.Fatalf("expected model %s, got %s", ModelGeminiFlash, llm.Name())
	}

	again, err := provider.CreateLLM(context.Background(), string(ModelGeminiFlash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm != again {
		t.Fatal("expected the cached llm instance on the second call")
	}

	if _, err := provider.CreateLLM(context.Background(), "unknown-model"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

type mockProvider struct {
	models []ModelInfo
}

func (m *mockProvider) Name() string { return "mock" }
func (m *mockProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, item := range m.models {
		if item.Name == model {
			return item, nil
		}
	}
	return ModelInfo{}, fmt.Errorf("not found")
}
func (m *mockProvider) ListModels(_ context.Context) ([]ModelInfo, error) { return m.models, nil }
func (m *mockProvider) CreateLLM(ctx context.Context, model string) (adkmodel.LLM, error) {
	if _, err := m.GetModel(ctx, model); err != nil {
		return nil, err
	}
	return stubLLM{name: model}, nil
}
func (m *mockProvider) SupportsStreaming() bool { return true }
func (m *mockProvider) SupportsTools() bool     { return true }

type stubLLM struct {
	name string
}

func (s stubLLM) Name() string { return s.name }

func (s stubLLM) GenerateContent(context.Context, *adkmodel.LLMRequest, bool) iter.Seq2[*adkmodel.LLMResponse, error] {
	return func(func(*adkmodel.LLMResponse, error) bool) {}
}
