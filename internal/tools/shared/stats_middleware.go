package shared

import (
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/metrics"
)

// wrapWithStats records execution count and latency for every call.
func wrapWithStats(name string, fn ToolFunc) ToolFunc {
	return func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		start := time.Now()
		result, err := fn(ctx, args)
		metrics.RecordToolExecution(name, time.Since(start), err)
		return result, err
	}
}
