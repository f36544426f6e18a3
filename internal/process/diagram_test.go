package process

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSwimlaneDiagram(t *testing.T) {
	store := testStore(t)
	sub := Subprocess{
		StepName: "Provision Account",
		SubprocessSteps: []Substep{
			{SubstepName: "Create billing entry", Lane: "Operations"},
			{SubstepName: "Credit check passed?", Lane: "Finance", Type: "decision", NextSteps: []string{"Activate account"}},
			{SubstepName: "Activate account", Lane: "Operations"},
		},
	}

	path, err := store.WriteSwimlaneDiagram(sub)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "Provision_Account.svg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	svg := string(data)

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Provision Account")
	// One lane band label per distinct responsible party.
	assert.Contains(t, svg, "Operations")
	assert.Contains(t, svg, "Finance")
	// The decision node renders as a diamond, tasks as rounded rectangles.
	assert.Contains(t, svg, "<polygon")
	assert.Contains(t, svg, "rx=\"8\"")
	// Arrows carry the marker definition.
	assert.Contains(t, svg, `marker-end="url(#arrow)"`)
}

func TestLayoutSubprocessLaneOrder(t *testing.T) {
	sub := Subprocess{
		StepName: "X",
		SubprocessSteps: []Substep{
			{SubstepName: "a", Lane: "B"},
			{SubstepName: "b"},
			{SubstepName: "c", Lane: "B"},
		},
	}

	lanes, nodes := layoutSubprocess(sub)
	assert.Equal(t, []string{"B", "Process"}, lanes)
	require.Len(t, nodes, 3)
	assert.Equal(t, 0, nodes[0].lane)
	assert.Equal(t, 1, nodes[1].lane)
	assert.Equal(t, 0, nodes[2].lane)
	assert.Equal(t, 2, nodes[2].col)
}

func TestRenderSwimlaneSVGEmptySubprocess(t *testing.T) {
	svg := renderSwimlaneSVG(Subprocess{StepName: "Empty"})
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Empty")
}
