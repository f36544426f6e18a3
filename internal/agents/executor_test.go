package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructuredOutput(t *testing.T) {
	raw := "Here is the result you asked for:\n```json\n{\"status\": \"ok\", \"count\": 3}\n```\nLet me know if you need more."

	result, err := ExtractStructuredOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, float64(3), result["count"])
}

func TestExtractStructuredOutputNoJSON(t *testing.T) {
	_, err := ExtractStructuredOutput("I could not produce a structured answer.")
	assert.Error(t, err)
}

func TestBuildUserMessage(t *testing.T) {
	e := &AgentRunner{}

	msg := e.buildUserMessage(ExecutionInput{Prompt: "Build a portfolio from the Dow 30."})
	assert.Equal(t, "Build a portfolio from the Dow 30.", msg)

	msg = e.buildUserMessage(ExecutionInput{
		Prompt:  "Build a portfolio from the Dow 30.",
		Context: map[string]interface{}{"range": "1y"},
	})
	assert.Contains(t, msg, "Additional context:")
	assert.Contains(t, msg, `"range":"1y"`)
}
