package callbacks

import (
	"time"

	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/tool"

	"atlas/internal/agents/state"
	"atlas/internal/metrics"
	"atlas/internal/tools"
	"atlas/pkg/logger"
)

const toolStartTimeKey = "temp:_tool_start_time"

// AuditBeforeToolCallback logs every tool invocation and rejects calls to
// tools the registry does not know about.
func AuditBeforeToolCallback(registry *tools.Registry) llmagent.BeforeToolCallback {
	return func(ctx tool.Context, t tool.Tool, args map[string]any) (map[string]any, error) {
		toolName := t.Name()
		log := logger.Get().With("component", "tool_audit", "tool", toolName, "user", ctx.UserID())

		if registry != nil {
			if _, ok := registry.Get(toolName); !ok {
				log.Warnf("Tool %s is not registered, rejecting call", toolName)
				return map[string]any{"error": "tool is not available"}, nil
			}
		}

		if args == nil {
			log.Debug("Tool called with no arguments")
		} else {
			log.Debugf("Tool call with %d arguments", len(args))
		}

		ctx.State().Set(toolStartTimeKey, time.Now())
		return nil, nil
	}
}

// StatsAfterToolCallback records duration and outcome of each tool call.
func StatsAfterToolCallback() llmagent.AfterToolCallback {
	return func(ctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		toolName := t.Name()
		log := logger.Get().With("component", "tool_stats", "tool", toolName)

		var duration time.Duration
		if startVal, stateErr := ctx.ReadonlyState().Get(toolStartTimeKey); stateErr == nil {
			if start, ok := startVal.(time.Time); ok {
				duration = time.Since(start)
			}
		}

		metrics.RecordToolExecution(toolName, duration, err)
		state.IncrementToolCallCount(ctx.State())

		if err != nil {
			log.Errorf("Tool %s failed after %v: %v", toolName, duration.Round(time.Millisecond), err)
		} else {
			log.Debugf("Tool %s completed in %v", toolName, duration.Round(time.Millisecond))
		}

		return result, err
	}
}

// ErrorFoldingAfterToolCallback converts tool errors into sentinel error
// maps so the model sees a structured failure instead of an aborted turn.
func ErrorFoldingAfterToolCallback() llmagent.AfterToolCallback {
	return func(ctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		if err == nil {
			return result, nil
		}

		logger.Get().With("component", "tool_errors", "tool", t.Name()).
			Warnf("Folding tool error into result: %v", err)

		return map[string]any{"error": err.Error()}, nil
	}
}
