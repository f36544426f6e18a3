package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/genai"

	"atlas/internal/metrics"
	"atlas/internal/process"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// ExecutionInput contains input parameters for agent execution
type ExecutionInput struct {
	UserID    string
	SessionID string        // Generated when empty
	Prompt    string        // Initial user message
	Context   map[string]interface{} // Additional context appended as JSON
	Timeout   time.Duration // Execution timeout (0 = agent config default)
}

// ExecutionOutput contains the result of agent execution
type ExecutionOutput struct {
	AgentType   AgentType
	Result      map[string]interface{} // Structured output extracted from the final text
	RawResponse string                 // Raw final response from the agent

	TokensUsed    int
	InputTokens   int
	OutputTokens  int
	Duration      time.Duration
	ToolCallCount int

	SessionID string
}

// AgentRunner executes a root agent through the ADK runner with timeout,
// token accounting and structured output extraction.
type AgentRunner struct {
	agent          agent.Agent
	runner         *runner.Runner
	agentType      AgentType
	agentConfig    AgentConfig
	sessionService adksession.Service

	log *logger.Logger
}

// NewAgentRunner creates a runner for one root agent.
func NewAgentRunner(
	ag agent.Agent,
	agentType AgentType,
	agentConfig AgentConfig,
	sessionService adksession.Service,
) (*AgentRunner, error) {
	if sessionService == nil {
		sessionService = adksession.InMemoryService()
	}

	runnerInstance, err := runner.New(runner.Config{
		AppName:        fmt.Sprintf("atlas_%s", agentType),
		Agent:          ag,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ADK runner")
	}

	return &AgentRunner{
		agent:          ag,
		runner:         runnerInstance,
		agentType:      agentType,
		agentConfig:    agentConfig,
		sessionService: sessionService,
		log:            logger.Get().With("component", "agent_runner", "agent", agentType),
	}, nil
}

// SessionService exposes the session backend, shared with HTTP handlers
// that resume existing sessions.
func (e *AgentRunner) SessionService() adksession.Service { return e.sessionService }

// Execute runs the agent to completion and collects the final response.
func (e *AgentRunner) Execute(ctx context.Context, input ExecutionInput) (*ExecutionOutput, error) {
	startTime := time.Now()

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	userID := input.UserID
	if userID == "" {
		userID = "anonymous"
	}

	e.log.Infof("Starting agent execution: session=%s user=%s", sessionID, userID)

	execCtx := ctx
	timeout := input.Timeout
	if timeout == 0 {
		timeout = e.agentConfig.TotalTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	output, err := e.runEventLoop(execCtx, userID, sessionID, e.buildUserMessage(input))
	duration := time.Since(startTime)
	metrics.RecordAgentCall(string(e.agentType), e.agentConfig.Model, duration, 0, 0, err)
	if err != nil {
		return nil, errors.Wrap(err, "agent execution failed")
	}

	output.Duration = duration
	output.SessionID = sessionID
	output.AgentType = e.agentType

	e.log.Infof("Agent execution complete: session=%s duration=%v tokens=%s tools=%d",
		sessionID, duration.Round(time.Millisecond),
		humanize.Comma(int64(output.TokensUsed)), output.ToolCallCount)

	return output, nil
}

// runEventLoop drives the ADK event stream and accumulates telemetry.
func (e *AgentRunner) runEventLoop(ctx context.Context, userID, sessionID, message string) (*ExecutionOutput, error) {
	userContent := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: message},
		},
	}

	runConfig := agent.RunConfig{
		StreamingMode: agent.StreamingModeSSE,
	}

	toolCallCount := 0
	totalInputTokens := 0
	totalOutputTokens := 0
	var finalResponse *adksession.Event

	for event, err := range e.runner.Run(ctx, userID, sessionID, userContent, runConfig) {
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}

		// Streaming chunks are folded into the complete events that follow.
		if event.LLMResponse.Partial {
			continue
		}

		if event.UsageMetadata != nil {
			totalInputTokens += int(event.UsageMetadata.PromptTokenCount)
			totalOutputTokens += int(event.UsageMetadata.CandidatesTokenCount)
		}

		if event.LLMResponse.Content != nil {
			for _, part := range event.LLMResponse.Content.Parts {
				if part.FunctionCall != nil {
					toolCallCount++
					e.log.Debugf("Tool call: %s(%v)", part.FunctionCall.Name, part.FunctionCall.Args)
				}
				if part.FunctionResponse != nil {
					e.log.Debugf("Tool result: %s", part.FunctionResponse.Name)
				}
			}
		}

		if event.TurnComplete && event.IsFinalResponse() {
			finalResponse = event
			break
		}
	}

	output := &ExecutionOutput{
		TokensUsed:    totalInputTokens + totalOutputTokens,
		InputTokens:   totalInputTokens,
		OutputTokens:  totalOutputTokens,
		ToolCallCount: toolCallCount,
	}

	if finalResponse == nil || finalResponse.LLMResponse.Content == nil {
		output.RawResponse = ""
		output.Result = map[string]interface{}{
			"error": "agent did not provide final response",
		}
		return output, nil
	}

	rawResponse := ""
	for _, part := range finalResponse.LLMResponse.Content.Parts {
		if part.Text != "" {
			rawResponse += part.Text
		}
	}
	output.RawResponse = rawResponse

	structured, err := ExtractStructuredOutput(rawResponse)
	if err != nil {
		output.Result = map[string]interface{}{
			"raw_response": rawResponse,
		}
		return output, nil
	}
	output.Result = structured

	return output, nil
}

// buildUserMessage composes the initial user message with optional context.
func (e *AgentRunner) buildUserMessage(input ExecutionInput) string {
	message := input.Prompt
	if len(input.Context) > 0 {
		if data, err := json.Marshal(input.Context); err == nil {
			message += fmt.Sprintf("\n\nAdditional context:\n%s", string(data))
		}
	}
	return message
}

// ExtractStructuredOutput pulls the first balanced JSON object out of model
// text. Returns an error when no object can be decoded.
func ExtractStructuredOutput(raw string) (map[string]interface{}, error) {
	extracted, ok := process.ExtractJSON(raw)
	if !ok {
		return nil, errors.Wrap(errors.ErrNoStructuredOutput, "no JSON object in model output")
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(extracted), &result); err != nil {
		return nil, errors.Wrapf(errors.ErrNoStructuredOutput, "decode extracted JSON: %v", err)
	}
	return result, nil
}
