package process

import "strings"

// Process is the structured model the design pipeline converges on.
type Process struct {
	ProcessName  string   `json:"process_name"`
	Description  string   `json:"description"`
	Actors       []string `json:"actors"`
	ProcessSteps []Step   `json:"process_steps"`
}

// Step is one top-level activity in the process.
type Step struct {
	StepName    string   `json:"step_name"`
	Description string   `json:"description"`
	Actor       string   `json:"actor"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	NextSteps   []string `json:"next_steps"`
}

// Subprocess is the drill-down flow generated for a single step.
type Subprocess struct {
	StepName        string    `json:"step_name"`
	Description     string    `json:"description,omitempty"`
	SubprocessSteps []Substep `json:"subprocess_steps"`
}

// Substep is one node of a subprocess flow.
type Substep struct {
	SubstepName string   `json:"substep_name"`
	Description string   `json:"description,omitempty"`
	Lane        string   `json:"lane,omitempty"`
	Type        string   `json:"type,omitempty"` // task|gateway|decision
	NextSteps   []string `json:"next_steps,omitempty"`
}

// LaneName resolves the swimlane a substep belongs to.
func (s Substep) LaneName() string {
	if lane := strings.TrimSpace(s.Lane); lane != "" {
		return lane
	}
	return "Process"
}

// IsGateway reports whether the substep is a branching node.
func (s Substep) IsGateway() bool {
	t := strings.ToLower(s.Type)
	return t == "gateway" || t == "decision"
}

// Approval is the review verdict the refinement loops consult before
// stopping. Reviewers merge their status fields into it incrementally.
type Approval struct {
	Status           string `json:"status,omitempty"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
	SimulationStatus string `json:"simulation_status,omitempty"`
	GroundingStatus  string `json:"grounding_status,omitempty"`
}

const (
	// StatusApproved marks an individual review dimension as passed.
	StatusApproved = "APPROVED"
	// StatusJSONApproved marks the whole structured output as final.
	StatusJSONApproved = "JSON APPROVED"
)

// Merge overlays non-empty fields of other onto a.
func (a Approval) Merge(other Approval) Approval {
	if other.Status != "" {
		a.Status = other.Status
	}
	if other.ComplianceStatus != "" {
		a.ComplianceStatus = other.ComplianceStatus
	}
	if other.SimulationStatus != "" {
		a.SimulationStatus = other.SimulationStatus
	}
	if other.GroundingStatus != "" {
		a.GroundingStatus = other.GroundingStatus
	}
	return a
}

// Ready reports whether the refinement loop may stop. A blanket
// "JSON APPROVED" anywhere wins immediately; otherwise every enabled
// review dimension must read APPROVED. Reviewer models are inconsistent
// about casing, so statuses are normalized before comparison.
func (a Approval) Ready(groundingEnabled bool) bool {
	status := normalizeStatus(a.Status)
	compliance := normalizeStatus(a.ComplianceStatus)
	simulation := normalizeStatus(a.SimulationStatus)
	grounding := normalizeStatus(a.GroundingStatus)

	if strings.Contains(status, StatusJSONApproved) {
		return true
	}
	for _, field := range []string{compliance, simulation, grounding} {
		if field == StatusJSONApproved {
			return true
		}
	}

	if compliance != StatusApproved || simulation != StatusApproved {
		return false
	}
	if groundingEnabled && grounding != StatusApproved {
		return false
	}
	return true
}

func normalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
