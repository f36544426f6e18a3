package shared

import (
	"time"

	"google.golang.org/adk/tool"

	"atlas/pkg/errors"
)

// TimeoutMiddleware enforces per-call deadlines for tool execution.
type TimeoutMiddleware struct {
	Timeout time.Duration
}

type toolResult struct {
	out map[string]interface{}
	err error
}

// wrap bounds fn's execution time. tool.Context cannot be rebuilt with a
// deadline, so the function runs in a goroutine and the caller stops
// waiting when the timer fires.
func (m TimeoutMiddleware) wrap(fn ToolFunc) ToolFunc {
	if m.Timeout <= 0 {
		return fn
	}

	return func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		done := make(chan toolResult, 1)
		go func() {
			out, err := fn(ctx, args)
			done <- toolResult{out: out, err: err}
		}()

		timer := time.NewTimer(m.Timeout)
		defer timer.Stop()

		select {
		case res := <-done:
			return res.out, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, errors.Wrapf(errors.ErrTimeout, "tool execution exceeded %s", m.Timeout)
		}
	}
}
