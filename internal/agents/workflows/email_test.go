package workflows

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"

	"atlas/internal/agents/state"
)

func TestParsedField(t *testing.T) {
	fields := map[string]interface{}{
		"customer_name": "Pat Smith",
		"customer_id":   "  ",
		"date_range":    42,
	}

	assert.Equal(t, "Pat Smith", parsedField(fields, "customer_name"))
	assert.Equal(t, "unknown", parsedField(fields, "customer_id"), "blank values count as unknown")
	assert.Equal(t, "unknown", parsedField(fields, "date_range"), "non-string values count as unknown")
	assert.Equal(t, "unknown", parsedField(fields, "meter_reading"))
}

func TestEmailResult(t *testing.T) {
	st := newWorkflowTestState()

	require.NoError(t, state.SetFromEmailAddress(st, "pat@example.com"))
	require.NoError(t, state.SetEmailSubject(st, "VPN trouble"))
	st.Set("email_draft", "Dear Pat, please restart your VPN client.")
	st.Set("email_review_comments", "Tighten the greeting.\n\nNo further comments.")
	st.Set("email_sentiment_obj", map[string]interface{}{
		"sentiment": "negative",
		"intention": "Network Issue",
		"urgency":   "high",
	})
	require.NoError(t, state.SetToolResult(st, "Restart the VPN client and re-authenticate."))

	result := emailResult(st, "My VPN drops every hour.")

	emailData := result["email_data"].(map[string]interface{})
	assert.Equal(t, "pat@example.com", emailData["fromEmailAddress"])
	assert.Equal(t, "My VPN drops every hour.", emailData["body"])

	answer := result["answer"].(map[string]interface{})
	assert.Equal(t, "Dear Pat, please restart your VPN client.", answer["email_draft"])
	assert.Equal(t, "Restart the VPN client and re-authenticate.", answer["tool_results"])

	metadata := result["metadata"].(map[string]interface{})
	assert.Equal(t, "Network Issue", metadata["email_intention"])
	assert.Equal(t, "No further comments.", metadata["email_review_comments"], "only the last comment block is reported")
}

func TestEmailResultDefaults(t *testing.T) {
	st := newWorkflowTestState()

	result := emailResult(st, "plain request")

	answer := result["answer"].(map[string]interface{})
	assert.Equal(t, "No tool was explicitly called.", answer["tool_results"])

	emailData := result["email_data"].(map[string]interface{})
	assert.Equal(t, "a customer", emailData["fromEmailAddress"])
	assert.Equal(t, "a new support request", emailData["subject"])
}

// newWorkflowTestState creates an in-memory session.State for tests.
func newWorkflowTestState() session.State {
	return &workflowTestState{data: make(map[string]any)}
}

type workflowTestState struct {
	data map[string]any
}

func (s *workflowTestState) Get(key string) (any, error) {
	if val, ok := s.data[key]; ok {
		return val, nil
	}
	return nil, session.ErrStateKeyNotExist
}

func (s *workflowTestState) Set(key string, val any) error {
	s.data[key] = val
	return nil
}

func (s *workflowTestState) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for k, v := range s.data {
			if !yield(k, v) {
				return
			}
		}
	}
}
