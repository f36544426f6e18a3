package state

import (
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"
)

func TestStateHelpers_EmailKeys(t *testing.T) {
	state := newTestState()

	assert.Equal(t, "a customer", GetFromEmailAddress(state))
	assert.Equal(t, "a new support request", GetEmailSubject(state))

	require.NoError(t, SetFromEmailAddress(state, "pat@example.com"))
	require.NoError(t, SetEmailSubject(state, "VPN keeps dropping"))
	require.NoError(t, SetTopic(state, "My VPN connection drops every hour."))

	assert.Equal(t, "pat@example.com", GetFromEmailAddress(state))
	assert.Equal(t, "VPN keeps dropping", GetEmailSubject(state))

	// Rewritten query falls back to the topic until the rewriter runs.
	assert.Equal(t, "My VPN connection drops every hour.", GetRewrittenQuery(state))
	state.Set("rewritten_query", "VPN disconnects hourly troubleshooting")
	assert.Equal(t, "VPN disconnects hourly troubleshooting", GetRewrittenQuery(state))
}

func TestStateHelpers_SentimentObject(t *testing.T) {
	state := newTestState()

	assert.Empty(t, GetEmailSentiment(state))

	state.Set("email_sentiment_obj", map[string]interface{}{
		"sentiment": "negative",
		"intention": "Network Issue",
		"urgency":   "high",
	})

	sentiment := GetEmailSentiment(state)
	assert.Equal(t, "Network Issue", sentiment["intention"])

	// Wrong type degrades to an empty map rather than panicking.
	state.Set("email_parser_obj", "not a map")
	assert.Empty(t, GetEmailParserFields(state))
}

func TestStateHelpers_ProcessStep(t *testing.T) {
	state := newTestState()

	assert.Equal(t, "", GetCurrentProcessStep(state))
	require.NoError(t, SetCurrentProcessStep(state, "Collect Details"))
	assert.Equal(t, "Collect Details", GetCurrentProcessStep(state))
}

func TestStateHelpers_Counters(t *testing.T) {
	state := newTestState()

	require.NoError(t, IncrementToolCallCount(state))
	require.NoError(t, IncrementToolCallCount(state))
	assert.Equal(t, 2, GetToolCallCount(state))

	assert.Equal(t, 1, IncrementLoopIteration(state))
	assert.Equal(t, 2, IncrementLoopIteration(state))
	require.NoError(t, ResetLoopIteration(state))
	assert.Equal(t, 0, GetLoopIteration(state))
}

func TestStateHelpers_UserLevel(t *testing.T) {
	state := newTestState()

	assert.False(t, GetUserMuted(state))
	require.NoError(t, SetUserMuted(state, true))
	assert.True(t, GetUserMuted(state))

	now := time.Now()
	require.NoError(t, SetUserLastActivity(state, now))
	lastActivity, err := GetUserLastActivity(state)
	require.NoError(t, err)
	assert.WithinDuration(t, now, lastActivity, time.Second)
}

func TestStateHelpers_TemporaryState(t *testing.T) {
	state := newTestState()

	now := time.Now()
	require.NoError(t, SetTempStartTime(state, now))
	startTime, err := GetTempStartTime(state)
	require.NoError(t, err)
	assert.WithinDuration(t, now, startTime, time.Second)

	SetTempPromptTokens(state, 100)
	SetTempCompletionTokens(state, 200)

	promptTokens, completionTokens := GetTempTokens(state)
	assert.Equal(t, 100, promptTokens)
	assert.Equal(t, 200, completionTokens)
}

// newTestState creates a test state implementation
func newTestState() session.State {
	return &testState{data: make(map[string]any)}
}

type testState struct {
	data map[string]any
}

func (s *testState) Get(key string) (any, error) {
	if val, ok := s.data[key]; ok {
		return val, nil
	}
	return nil, session.ErrStateKeyNotExist
}

func (s *testState) Set(key string, val any) error {
	s.data[key] = val
	return nil
}

func (s *testState) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for k, v := range s.data {
			if !yield(k, v) {
				return
			}
		}
	}
}
