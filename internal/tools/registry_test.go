package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

func testTool(t *testing.T, name string) tool.Tool {
	t.Helper()
	tl, err := functiontool.New(
		functiontool.Config{Name: name, Description: "test tool"},
		func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"ok": true}, nil
		},
	)
	require.NoError(t, err)
	return tl
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alpha", testTool(t, "alpha"))
	registry.Register("beta", testTool(t, "beta"))

	got, ok := registry.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "beta"}, registry.List())
}

func TestRegistryForNames(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alpha", testTool(t, "alpha"))
	registry.Register("beta", testTool(t, "beta"))

	resolved, err := registry.ForNames([]string{"beta", "alpha"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "beta", resolved[0].Name())

	_, err = registry.ForNames([]string{"alpha", "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCatalogCoversCoreTools(t *testing.T) {
	defs := Definitions()
	require.NotEmpty(t, defs)

	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	for _, name := range []string{
		"answer_query",
		"get_last_stock_price",
		"build_portfolio",
		"stop_if_ready",
		"simulate_process_performance",
	} {
		_, ok := byName[name]
		assert.True(t, ok, "definition missing for %s", name)
	}

	categories := DefinitionsByCategory()
	assert.Contains(t, categories, "process")
	assert.Contains(t, categories, "risk_metrics")
}
