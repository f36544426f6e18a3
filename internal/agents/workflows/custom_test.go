package workflows

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/genai"
)

// runCustomAgent executes a root agent through the runner with an
// in-memory session and collects every yielded event.
func runCustomAgent(t *testing.T, root agent.Agent) []*adksession.Event {
	t.Helper()

	ctx := context.Background()
	svc := adksession.InMemoryService()
	_, err := svc.Create(ctx, &adksession.CreateRequest{
		AppName:   "workflow_test",
		UserID:    "pat",
		SessionID: "s1",
	})
	require.NoError(t, err)

	r, err := runner.New(runner.Config{
		AppName:        "workflow_test",
		Agent:          root,
		SessionService: svc,
	})
	require.NoError(t, err)

	var events []*adksession.Event
	msg := genai.NewContentFromText("run", genai.RoleUser)
	for event, err := range r.Run(ctx, "pat", "s1", msg, agent.RunConfig{}) {
		require.NoError(t, err)
		events = append(events, event)
	}
	return events
}

func TestRunSubAgentForwardsEscalation(t *testing.T) {
	stopper, err := agent.New(agent.Config{
		Name:        "stopper",
		Description: "Always escalates",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*adksession.Event, error] {
			return func(yield func(*adksession.Event, error) bool) {
				yield(escalateEvent("stopper", "approvals complete"), nil)
			}
		},
	})
	require.NoError(t, err)

	var escalated, stopped bool
	driver, err := agent.New(agent.Config{
		Name:        "driver",
		Description: "Runs the stopper once",
		SubAgents:   []agent.Agent{stopper},
		Run: func(ictx agent.InvocationContext) iter.Seq2[*adksession.Event, error] {
			return func(yield func(*adksession.Event, error) bool) {
				stopped, escalated = runSubAgent(ictx, stopper, yield)
			}
		},
	})
	require.NoError(t, err)

	events := runCustomAgent(t, driver)

	assert.True(t, escalated, "sub-agent escalation must be reported to the orchestrator")
	assert.False(t, stopped, "consumer kept iterating, so the run was not stopped")

	require.NotEmpty(t, events)
	found := false
	for _, event := range events {
		if event.Actions.Escalate {
			found = true
			assert.Equal(t, "approvals complete", event.Content.Parts[0].Text)
		}
	}
	assert.True(t, found, "escalating event must reach the runner output")
}

func TestRunSubAgentPlainEvents(t *testing.T) {
	talker, err := agent.New(agent.Config{
		Name:        "talker",
		Description: "Emits one plain event",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*adksession.Event, error] {
			return func(yield func(*adksession.Event, error) bool) {
				yield(textEvent("talker", "status noted"), nil)
			}
		},
	})
	require.NoError(t, err)

	var escalated, stopped bool
	driver, err := agent.New(agent.Config{
		Name:        "plain_driver",
		Description: "Runs the talker once",
		SubAgents:   []agent.Agent{talker},
		Run: func(ictx agent.InvocationContext) iter.Seq2[*adksession.Event, error] {
			return func(yield func(*adksession.Event, error) bool) {
				stopped, escalated = runSubAgent(ictx, talker, yield)
			}
		},
	})
	require.NoError(t, err)

	runCustomAgent(t, driver)

	assert.False(t, escalated)
	assert.False(t, stopped)
}
