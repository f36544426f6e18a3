package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimulationSteps(t *testing.T) {
	raw := `{"process_steps": [
		{"step_name": "Plan", "estimated_duration": "4 hours"},
		{"step_name": "Build", "estimated_duration": "2,5 days", "dependencies": ["Plan"]},
		{"name": "Ship", "dependencies": "Build"}
	]}`

	steps, err := parseSimulationSteps(raw)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, "Plan", steps[0].Name)
	assert.Equal(t, 4.0, steps[0].Base)
	assert.Empty(t, steps[0].Deps)

	assert.Equal(t, 2.5, steps[1].Base)
	assert.Equal(t, []string{"Plan"}, steps[1].Deps)

	assert.Equal(t, "Ship", steps[2].Name)
	assert.Equal(t, 1.0, steps[2].Base, "unparseable duration defaults to 1")
	assert.Equal(t, []string{"Build"}, steps[2].Deps)
}

func TestParseSimulationStepsInvalid(t *testing.T) {
	_, err := parseSimulationSteps("not json")
	assert.Error(t, err)

	steps, err := parseSimulationSteps(`{"process_steps": []}`)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestRunSimulationMetrics(t *testing.T) {
	steps := []simStep{
		{Name: "Intake", Base: 1},
		{Name: "Review", Base: 8, Deps: []string{"Intake"}},
		{Name: "Archive", Base: 0.5, Deps: []string{"Review"}},
	}

	result := runSimulation(steps, 500)

	avgCycle := result["avg_cycle_time"].(float64)
	assert.Greater(t, avgCycle, 9.5*0.8, "cycle time cannot undercut the sum of dependent minimums")

	perStep := result["per_step_avg"].(map[string]interface{})
	require.Len(t, perStep, 3)
	assert.Greater(t, perStep["Review"].(float64), perStep["Intake"].(float64))

	bottlenecks := result["bottlenecks"].([]interface{})
	require.NotEmpty(t, bottlenecks)
	assert.Equal(t, "Review", bottlenecks[0], "slowest step leads the bottleneck list")

	risk := result["resource_contention_risk"].(string)
	assert.Contains(t, []string{"Low", "Medium", "High"}, risk)
}

func TestTriangularStaysInBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := triangular(0.8, 2.2, 1.0)
		assert.GreaterOrEqual(t, v, 0.8)
		assert.LessOrEqual(t, v, 2.2)
	}
}
