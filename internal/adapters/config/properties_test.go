package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProps(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.properties")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	return path
}

func TestLoadProperties(t *testing.T) {
	path := writeProps(t, `
# pipeline settings
loopIterations = 6
model.sleep: 1.5
enableGroundingAgent=true
! legacy comment
loopHardStop = off
`)

	p, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("load properties: %v", err)
	}

	if got := p.GetInt("loopIterations", 3); got != 6 {
		t.Errorf("loopIterations = %d, want 6", got)
	}
	if got := p.GetFloat("modelSleep", 0); got != 1.5 {
		t.Errorf("modelSleep = %v, want 1.5", got)
	}
	if !p.GetBool("enableGroundingAgent", false) {
		t.Error("enableGroundingAgent should be true")
	}
	if p.GetBool("loopHardStop", true) {
		t.Error("loopHardStop=off should parse as false")
	}
}

func TestPropertiesKeyNormalization(t *testing.T) {
	path := writeProps(t, "loop.iterations = 9\n")

	p, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("load properties: %v", err)
	}

	// Dotted and camel-case spellings resolve to the same entry.
	if got := p.GetInt("loopIterations", 0); got != 9 {
		t.Errorf("loopIterations = %d, want 9", got)
	}
	if got := p.GetInt("loop.iterations", 0); got != 9 {
		t.Errorf("loop.iterations = %d, want 9", got)
	}
}

func TestPropertiesEnvOverride(t *testing.T) {
	path := writeProps(t, "loopIterations = 4\n")

	p, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("load properties: %v", err)
	}

	t.Setenv("loopIterations", "12")
	if got := p.GetInt("loopIterations", 0); got != 12 {
		t.Errorf("env override: got %d, want 12", got)
	}
}

func TestPropertiesDefaults(t *testing.T) {
	p := NewProperties()

	if got := p.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("Get default = %q", got)
	}
	if got := p.GetInt("missing", 7); got != 7 {
		t.Errorf("GetInt default = %d", got)
	}
	if !p.GetBool("missing", true) {
		t.Error("GetBool default should hold")
	}
}
