package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalReady(t *testing.T) {
	tests := []struct {
		name      string
		approval  Approval
		grounding bool
		want      bool
	}{
		{
			name:     "empty verdict is not ready",
			approval: Approval{},
			want:     false,
		},
		{
			name:     "blanket json approval wins",
			approval: Approval{Status: "JSON APPROVED by reviewer"},
			want:     true,
		},
		{
			name:     "json approval in a dimension field wins",
			approval: Approval{SimulationStatus: StatusJSONApproved},
			want:     true,
		},
		{
			name: "compliance and simulation approved",
			approval: Approval{
				ComplianceStatus: StatusApproved,
				SimulationStatus: StatusApproved,
			},
			want: true,
		},
		{
			name: "grounding enabled requires grounding approval",
			approval: Approval{
				ComplianceStatus: StatusApproved,
				SimulationStatus: StatusApproved,
			},
			grounding: true,
			want:      false,
		},
		{
			name: "grounding enabled and all approved",
			approval: Approval{
				ComplianceStatus: StatusApproved,
				SimulationStatus: StatusApproved,
				GroundingStatus:  StatusApproved,
			},
			grounding: true,
			want:      true,
		},
		{
			name: "rejected simulation blocks",
			approval: Approval{
				ComplianceStatus: StatusApproved,
				SimulationStatus: "REJECTED: deadlock between steps 2 and 3",
			},
			want: false,
		},
		{
			name: "mixed-case verdicts are normalized",
			approval: Approval{
				ComplianceStatus: "Approved",
				SimulationStatus: " approved ",
			},
			want: true,
		},
		{
			name:     "lowercase blanket json approval wins",
			approval: Approval{Status: "json approved by reviewer"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.approval.Ready(tt.grounding))
		})
	}
}

func TestApprovalMergeKeepsExistingFields(t *testing.T) {
	current := Approval{ComplianceStatus: StatusApproved}
	merged := current.Merge(Approval{SimulationStatus: StatusApproved})

	assert.Equal(t, StatusApproved, merged.ComplianceStatus)
	assert.Equal(t, StatusApproved, merged.SimulationStatus)
	assert.Empty(t, merged.GroundingStatus)

	overwritten := merged.Merge(Approval{ComplianceStatus: "REJECTED: missing actor"})
	assert.Equal(t, "REJECTED: missing actor", overwritten.ComplianceStatus)
	assert.Equal(t, StatusApproved, overwritten.SimulationStatus)
}

func TestSubstepLaneAndGateway(t *testing.T) {
	assert.Equal(t, "Finance", Substep{Lane: " Finance "}.LaneName())
	assert.Equal(t, "Process", Substep{}.LaneName())

	assert.True(t, Substep{Type: "gateway"}.IsGateway())
	assert.True(t, Substep{Type: "Decision"}.IsGateway())
	assert.False(t, Substep{Type: "task"}.IsGateway())
	assert.False(t, Substep{}.IsGateway())
}
