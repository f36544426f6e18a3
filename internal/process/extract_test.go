package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromProse(t *testing.T) {
	text := `Here is the refined model:

{"process_name": "Onboarding", "description": "New hire flow"}

Let me know if anything should change.`

	raw, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"process_name": "Onboarding", "description": "New hire flow"}`, raw)
}

func TestExtractJSONStripsCodeFences(t *testing.T) {
	text := "```json\n{\"process_name\": \"Billing\", \"actors\": [\"Clerk\"]}\n```"

	raw, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.Contains(t, raw, `"Billing"`)
}

func TestExtractJSONIgnoresBracesInsideStrings(t *testing.T) {
	text := `{"description": "uses {placeholders} and \"quotes\"", "process_name": "X"}`

	raw, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, text, raw)
}

func TestExtractJSONUnbalanced(t *testing.T) {
	_, ok := ExtractJSON(`{"process_name": "truncated`)
	assert.False(t, ok)

	_, ok = ExtractJSON("no structured output here")
	assert.False(t, ok)
}

func TestExtractProcess(t *testing.T) {
	text := `{"process_name": "Expense Approval", "description": "d", "actors": ["Employee", "Manager"],
		"process_steps": [{"step_name": "Submit", "description": "file it", "actor": "Employee"}]}`

	proc, ok := ExtractProcess(text)
	require.True(t, ok)
	assert.Equal(t, "Expense Approval", proc.ProcessName)
	require.Len(t, proc.ProcessSteps, 1)
	assert.Equal(t, "Submit", proc.ProcessSteps[0].StepName)
}

func TestExtractSubprocess(t *testing.T) {
	text := `{"step_name": "Submit", "subprocess_steps": [
		{"substep_name": "Fill form", "lane": "Employee"},
		{"substep_name": "Amount over limit?", "type": "gateway", "next_steps": ["Escalate"]}
	]}`

	sub, ok := ExtractSubprocess(text)
	require.True(t, ok)
	require.Len(t, sub.SubprocessSteps, 2)
	assert.True(t, sub.SubprocessSteps[1].IsGateway())
}
