package callbacks

import (
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/genai"

	"atlas/internal/agents/state"
	"atlas/pkg/logger"
)

// StartTimingBeforeCallback records execution start time and the agent type
// in temporary state, and short-circuits when maintenance mode is active.
func StartTimingBeforeCallback(agentType string) agent.BeforeAgentCallback {
	return func(ctx agent.CallbackContext) (*genai.Content, error) {
		state.SetTempStartTime(ctx.State(), time.Now())
		state.SetUserLastActivity(ctx.State(), time.Now())

		if agentType != "" {
			state.SetAgentType(ctx.State(), agentType)
		}

		log := logger.Get().With(
			"agent", ctx.AgentName(),
			"user", ctx.UserID(),
			"session", ctx.SessionID(),
		)
		log.Infof("Agent %s started for user %s", ctx.AgentName(), ctx.UserID())

		if inMaintenance, _ := state.GetAppMaintenanceMode(ctx.ReadonlyState()); inMaintenance {
			log.Warn("System in maintenance mode")
			return genai.NewContentFromText(
				"System is currently in maintenance mode. Please try again later.",
				genai.RoleModel,
			), nil
		}

		return nil, nil
	}
}

// DurationAfterCallback logs how long the agent took, using the start time
// stored by StartTimingBeforeCallback.
func DurationAfterCallback() agent.AfterAgentCallback {
	return func(ctx agent.CallbackContext) (*genai.Content, error) {
		log := logger.Get().With("agent", ctx.AgentName())

		startTime, err := state.GetTempStartTime(ctx.ReadonlyState())
		if err != nil {
			log.Warnf("Start time not found in state: %v", err)
			return nil, nil
		}

		log.Infof("Agent %s completed in %v", ctx.AgentName(), time.Since(startTime).Round(time.Millisecond))
		return nil, nil
	}
}
