package shared

import (
	"time"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// ToolBuilder provides a fluent API for creating tools with middleware
type ToolBuilder struct {
	name        string
	description string
	fn          ToolFunc
	deps        Deps

	// Middleware options
	withRetry   bool
	retryConfig RetryMiddleware

	withTimeout   bool
	timeoutConfig TimeoutMiddleware

	withStats bool
}

// NewToolBuilder creates a new builder for a tool
func NewToolBuilder(name, description string, fn ToolFunc, deps Deps) *ToolBuilder {
	return &ToolBuilder{
		name:        name,
		description: description,
		fn:          fn,
		deps:        deps,
		// Default configs
		retryConfig:   RetryMiddleware{Attempts: 3, Backoff: 500 * time.Millisecond},
		timeoutConfig: TimeoutMiddleware{Timeout: 30 * time.Second},
	}
}

// WithRetry enables retry middleware
func (b *ToolBuilder) WithRetry(attempts int, backoff time.Duration) *ToolBuilder {
	b.withRetry = true
	b.retryConfig = RetryMiddleware{
		Attempts: attempts,
		Backoff:  backoff,
	}
	return b
}

// WithTimeout enables timeout middleware
func (b *ToolBuilder) WithTimeout(timeout time.Duration) *ToolBuilder {
	b.withTimeout = true
	b.timeoutConfig = TimeoutMiddleware{
		Timeout: timeout,
	}
	return b
}

// WithStats enables Prometheus usage tracking
func (b *ToolBuilder) WithStats() *ToolBuilder {
	b.withStats = true
	return b
}

// Build creates the tool with configured middleware applied
func (b *ToolBuilder) Build() tool.Tool {
	fn := b.fn

	// Apply middleware in order: retry -> timeout -> stats
	// Inner layers are applied first

	// 1. Retry (innermost - retries the actual tool logic)
	if b.withRetry {
		fn = wrapWithRetry(b.retryConfig, fn)
	}

	// 2. Timeout (wraps retry)
	if b.withTimeout {
		fn = b.timeoutConfig.wrap(fn)
	}

	// 3. Stats (outermost - tracks everything including retries)
	if b.withStats {
		fn = wrapWithStats(b.name, fn)
	}

	return createToolFromFunc(b.name, b.description, fn)
}

func wrapWithRetry(retry RetryMiddleware, fn ToolFunc) ToolFunc {
	return func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		var result map[string]interface{}
		var err error

		attempts := retry.Attempts
		if attempts <= 0 {
			attempts = 1
		}

		for i := 0; i < attempts; i++ {
			result, err = fn(ctx, args)
			if err == nil {
				return result, nil
			}

			// Wait before retry
			if retry.Backoff > 0 && i < attempts-1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retry.Backoff):
				}
			}
		}

		return result, err
	}
}

func createToolFromFunc(name, description string, fn ToolFunc) tool.Tool {
	t, _ := functiontool.New(
		functiontool.Config{
			Name:        name,
			Description: description,
		},
		func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return fn(ctx, args)
		})
	return t
}
