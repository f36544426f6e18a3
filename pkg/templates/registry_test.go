package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	agentDir := filepath.Join(base, "email")
	if err := os.MkdirAll(agentDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	tplPath := filepath.Join(agentDir, "sentiment.tmpl")
	initial := "Classify {{.AgentName}}"
	if err := os.WriteFile(tplPath, []byte(initial), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	reg, err := NewRegistry(base)
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	tmpl, err := reg.GetTemplate("email/sentiment")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}

	rendered, err := tmpl.Render(map[string]string{"AgentName": "SentimentAgent"})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if rendered != "Classify SentimentAgent" {
		t.Fatalf("unexpected render result: %s", rendered)
	}

	updated := "Changed {{.AgentName}}"
	if err := os.WriteFile(tplPath, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}

	rendered, err = tmpl.Render(map[string]string{"AgentName": "SentimentAgent"})
	if err != nil {
		t.Fatalf("render template after update: %v", err)
	}
	if rendered != "Classify SentimentAgent" {
		t.Fatalf("expected registry to keep initially parsed content, got: %s", rendered)
	}
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	path := filepath.Join(base, "process", "analysis.tmpl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dirs: %v", err)
	}

	content := "Elicit requirements for {{.ProcessName}}"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	rendered, err := reg.Render("process/analysis", map[string]string{"ProcessName": "Onboarding"})
	if err != nil {
		t.Fatalf("render lazily loaded template: %v", err)
	}

	if rendered != "Elicit requirements for Onboarding" {
		t.Fatalf("unexpected render output: %s", rendered)
	}
}

func TestEmbeddedRegistryHasCoreTemplates(t *testing.T) {
	reg := Get()

	for _, id := range []string{
		"email/sentiment",
		"email/parser",
		"email/rewriter",
		"email/generator",
		"email/reviewer",
		"email/reviser",
		"process/analysis",
		"process/update_analysis",
		"process/design",
		"process/compliance",
		"process/simulation",
		"process/grounding",
		"process/normalizer",
		"process/json_review",
		"process/subprocess_generator",
		"finance/research",
		"finance/calculation",
		"finance/architect",
	} {
		if _, err := reg.GetTemplate(id); err != nil {
			t.Errorf("embedded template missing: %s", id)
		}
	}
}
