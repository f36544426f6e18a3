package process

import (
	"time"

	"google.golang.org/adk/tool"

	procmodel "atlas/internal/process"
	"atlas/internal/tools/shared"
)

// NewRecordApprovalTool merges a reviewer's verdict into approval.json.
// Each reviewer only sets its own dimension; the merged state decides when
// the refinement loop may stop.
func NewRecordApprovalTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		update := procmodel.Approval{
			Status:           argString(args, "status"),
			ComplianceStatus: argString(args, "compliance_status"),
			SimulationStatus: argString(args, "simulation_status"),
			GroundingStatus:  argString(args, "grounding_status"),
		}
		if update == (procmodel.Approval{}) {
			return errResult("record_approval: at least one status field is required"), nil
		}

		merged, err := store.RecordApproval(update)
		if err != nil {
			return errResult("record_approval: %v", err), nil
		}

		grounding := deps.Props.GetBool("enableGroundingAgent", true)
		deps.Log.Debug("Approval recorded",
			"compliance", merged.ComplianceStatus,
			"simulation", merged.SimulationStatus,
			"grounding", merged.GroundingStatus)

		return map[string]interface{}{
			"status":            merged.Status,
			"compliance_status": merged.ComplianceStatus,
			"simulation_status": merged.SimulationStatus,
			"grounding_status":  merged.GroundingStatus,
			"ready":             merged.Ready(grounding),
		}, nil
	}

	return shared.NewToolBuilder(
		"record_approval",
		"Merge a reviewer verdict into the cumulative approval state",
		fn, deps,
	).WithTimeout(5 * time.Second).WithStats().Build()
}

// NewStopIfReadyTool is the stop controller's kill switch: it escalates
// out of the loop when the hard-stop property is set or every enabled
// review dimension has approved.
func NewStopIfReadyTool(deps shared.Deps, store *procmodel.Store) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if deps.Props.GetBool("loopHardStop", false) {
			if actions := ctx.Actions(); actions != nil {
				actions.Escalate = true
			}
			return map[string]interface{}{"status": "loopHardStop activated, exiting loop."}, nil
		}

		approval, err := store.LoadApproval()
		if err != nil {
			return errResult("stop_if_ready: %v", err), nil
		}

		grounding := deps.Props.GetBool("enableGroundingAgent", true)
		if approval.Ready(grounding) {
			if actions := ctx.Actions(); actions != nil {
				actions.Escalate = true
			}
			deps.Log.Debug("All approvals present, exiting loop")
			return map[string]interface{}{"status": "All approvals present, exiting loop."}, nil
		}
		return map[string]interface{}{"status": "Continue"}, nil
	}

	return shared.NewToolBuilder(
		"stop_if_ready",
		"Exit the refinement loop when approvals are complete or the kill switch is set",
		fn, deps,
	).WithTimeout(5 * time.Second).WithStats().Build()
}

// NewStatusLoggerTool records loop progress for observability only.
func NewStatusLoggerTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		goals := argInt(args, "goal_count", 0)
		deps.Log.Debug("Stop controller progress", "goals_identified", goals)
		return map[string]interface{}{
			"message": "Logging status", "goal_count": goals,
		}, nil
	}

	return shared.NewToolBuilder(
		"status_logger",
		"Log the number of objectives identified so far",
		fn, deps,
	).WithTimeout(2 * time.Second).Build()
}
