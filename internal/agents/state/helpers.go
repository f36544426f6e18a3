package state

import (
	"time"

	"google.golang.org/adk/session"
)

// State key prefixes (from ADK)
const (
	KeyPrefixApp  = "app:"  // Application-level (shared across all users)
	KeyPrefixUser = "user:" // User-level (shared across user's sessions)
	KeyPrefixTemp = "temp:" // Temporary (not persisted)
)

// ========================================
// App-Level State (shared across all users)
// ========================================

// SetAppMaintenanceMode sets system-wide maintenance mode
func SetAppMaintenanceMode(state session.State, enabled bool) error {
	return state.Set(KeyPrefixApp+"maintenance_mode", enabled)
}

// GetAppMaintenanceMode checks if system is in maintenance mode
func GetAppMaintenanceMode(state session.ReadonlyState) (bool, error) {
	val, err := state.Get(KeyPrefixApp + "maintenance_mode")
	if err != nil {
		return false, nil // Default: not in maintenance
	}
	if enabled, ok := val.(bool); ok {
		return enabled, nil
	}
	return false, nil
}

// ========================================
// User-Level State (shared across user's sessions)
// ========================================

// SetUserMuted sets the user's console mute flag. When muted, pipeline
// stage banners are suppressed and only final output is printed.
func SetUserMuted(state session.State, muted bool) error {
	return state.Set(KeyPrefixUser+"muted", muted)
}

// GetUserMuted gets the user's console mute flag
func GetUserMuted(state session.ReadonlyState) bool {
	val, err := state.Get(KeyPrefixUser + "muted")
	if err != nil {
		return false
	}
	if muted, ok := val.(bool); ok {
		return muted
	}
	return false
}

// SetUserLastActivity sets timestamp of user's last activity
func SetUserLastActivity(state session.State, t time.Time) error {
	return state.Set(KeyPrefixUser+"last_activity", t)
}

// GetUserLastActivity gets timestamp of user's last activity
func GetUserLastActivity(state session.ReadonlyState) (time.Time, error) {
	val, err := state.Get(KeyPrefixUser + "last_activity")
	if err != nil {
		return time.Time{}, nil
	}
	if t, ok := val.(time.Time); ok {
		return t, nil
	}
	return time.Time{}, nil
}

// ========================================
// Session-Level State (specific to current run)
// ========================================

// SetTopic stores the raw user request the pipeline is working on
func SetTopic(state session.State, topic string) error {
	return state.Set("topic", topic)
}

// GetTopic retrieves the raw user request
func GetTopic(state session.ReadonlyState) string {
	return getString(state, "topic", "")
}

// SetFromEmailAddress stores the sender of the email being triaged
func SetFromEmailAddress(state session.State, addr string) error {
	return state.Set("from_email_address", addr)
}

// GetFromEmailAddress retrieves the email sender, defaulting to a
// placeholder when the request did not carry one.
func GetFromEmailAddress(state session.ReadonlyState) string {
	return getString(state, "from_email_address", "a customer")
}

// SetEmailSubject stores the subject of the email being triaged
func SetEmailSubject(state session.State, subject string) error {
	return state.Set("subject", subject)
}

// GetEmailSubject retrieves the email subject
func GetEmailSubject(state session.ReadonlyState) string {
	return getString(state, "subject", "a new support request")
}

// SetToolResult stores the knowledge lookup result of a category agent
func SetToolResult(state session.State, result string) error {
	return state.Set("tool_result", result)
}

// GetToolResult retrieves the knowledge lookup result
func GetToolResult(state session.ReadonlyState) string {
	return getString(state, "tool_result", "")
}

// GetRewrittenQuery retrieves the rewritten knowledge base query,
// falling back to the raw topic when the rewriter produced nothing.
func GetRewrittenQuery(state session.ReadonlyState) string {
	if q := getString(state, "rewritten_query", ""); q != "" {
		return q
	}
	return GetTopic(state)
}

// GetEmailDraft retrieves the current reply draft
func GetEmailDraft(state session.ReadonlyState) string {
	return getString(state, "email_draft", "")
}

// GetEmailReviewComments retrieves the latest reviewer comments
func GetEmailReviewComments(state session.ReadonlyState) string {
	return getString(state, "email_review_comments", "")
}

// GetEmailSentiment retrieves the sentiment object produced by the
// sentiment reviewer. Missing or malformed values yield an empty map.
func GetEmailSentiment(state session.ReadonlyState) map[string]interface{} {
	return getMap(state, "email_sentiment_obj")
}

// GetEmailParserFields retrieves the parsed customer fields
func GetEmailParserFields(state session.ReadonlyState) map[string]interface{} {
	return getMap(state, "email_parser_obj")
}

// SetCurrentProcessStep stores the step the subprocess driver is expanding
func SetCurrentProcessStep(state session.State, stepName string) error {
	return state.Set("current_process_step", stepName)
}

// GetCurrentProcessStep retrieves the step being expanded
func GetCurrentProcessStep(state session.ReadonlyState) string {
	return getString(state, "current_process_step", "")
}

// ========================================
// Temporary State (not persisted)
// ========================================

// IncrementToolCallCount increments the tool call counter
func IncrementToolCallCount(state session.State) error {
	count := 0
	if val, err := state.Get(KeyPrefixTemp + "tool_call_count"); err == nil {
		if c, ok := val.(int); ok {
			count = c
		}
	}
	return state.Set(KeyPrefixTemp+"tool_call_count", count+1)
}

// GetToolCallCount gets the tool call counter
func GetToolCallCount(state session.ReadonlyState) int {
	val, err := state.Get(KeyPrefixTemp + "tool_call_count")
	if err != nil {
		return 0
	}
	if count, ok := val.(int); ok {
		return count
	}
	return 0
}

// IncrementLoopIteration increments and returns the review loop counter
func IncrementLoopIteration(state session.State) int {
	count := 0
	if val, err := state.Get(KeyPrefixTemp + "loop_iteration"); err == nil {
		if c, ok := val.(int); ok {
			count = c
		}
	}
	count++
	state.Set(KeyPrefixTemp+"loop_iteration", count)
	return count
}

// GetLoopIteration gets the review loop counter
func GetLoopIteration(state session.ReadonlyState) int {
	val, err := state.Get(KeyPrefixTemp + "loop_iteration")
	if err != nil {
		return 0
	}
	if count, ok := val.(int); ok {
		return count
	}
	return 0
}

// ResetLoopIteration clears the review loop counter
func ResetLoopIteration(state session.State) error {
	return state.Set(KeyPrefixTemp+"loop_iteration", 0)
}

// SetTempStartTime sets temporary execution start time
func SetTempStartTime(state session.State, t time.Time) error {
	return state.Set(KeyPrefixTemp+"start_time", t)
}

// GetTempStartTime gets temporary execution start time
func GetTempStartTime(state session.ReadonlyState) (time.Time, error) {
	val, err := state.Get(KeyPrefixTemp + "start_time")
	if err != nil {
		return time.Time{}, err
	}
	if t, ok := val.(time.Time); ok {
		return t, nil
	}
	return time.Time{}, session.ErrStateKeyNotExist
}

// SetTempPromptTokens stores prompt tokens in temporary state
func SetTempPromptTokens(state session.State, tokens int) error {
	return state.Set(KeyPrefixTemp+"prompt_tokens", tokens)
}

// SetTempCompletionTokens stores completion tokens in temporary state
func SetTempCompletionTokens(state session.State, tokens int) error {
	return state.Set(KeyPrefixTemp+"completion_tokens", tokens)
}

// GetTempTokens retrieves temporary token counts
func GetTempTokens(state session.ReadonlyState) (promptTokens, completionTokens int) {
	if val, err := state.Get(KeyPrefixTemp + "prompt_tokens"); err == nil {
		if tokens, ok := val.(int); ok {
			promptTokens = tokens
		}
	}
	if val, err := state.Get(KeyPrefixTemp + "completion_tokens"); err == nil {
		if tokens, ok := val.(int); ok {
			completionTokens = tokens
		}
	}
	return promptTokens, completionTokens
}

// SetAgentType stores the agent type
func SetAgentType(state session.State, agentType string) error {
	return state.Set(KeyPrefixTemp+"agent_type", agentType)
}

// GetAgentType retrieves the agent type
func GetAgentType(state session.ReadonlyState) string {
	return getString(state, KeyPrefixTemp+"agent_type", "")
}

// SetWorkflowName stores the current workflow name
func SetWorkflowName(state session.State, name string) error {
	return state.Set(KeyPrefixTemp+"workflow_name", name)
}

// GetWorkflowName retrieves the current workflow name
func GetWorkflowName(state session.ReadonlyState) string {
	return getString(state, KeyPrefixTemp+"workflow_name", "")
}

func getString(state session.ReadonlyState, key, def string) string {
	val, err := state.Get(key)
	if err != nil {
		return def
	}
	if s, ok := val.(string); ok && s != "" {
		return s
	}
	return def
}

func getMap(state session.ReadonlyState, key string) map[string]interface{} {
	val, err := state.Get(key)
	if err != nil {
		return map[string]interface{}{}
	}
	if m, ok := val.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
