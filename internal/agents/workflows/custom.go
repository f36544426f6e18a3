package workflows

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// textEvent builds a model-authored text event.
func textEvent(author, text string) *session.Event {
	return &session.Event{
		Author: author,
		LLMResponse: model.LLMResponse{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		},
	}
}

// escalateEvent builds a text event that also escalates out of the
// enclosing loop agent.
func escalateEvent(author, text string) *session.Event {
	ev := textEvent(author, text)
	ev.Actions.Escalate = true
	return ev
}

// runSubAgent runs one sub-agent and forwards its events. Agent.Run
// rebinds the invocation context to the sub-agent itself, so the parent
// context is passed straight through. Returns stop=true when the consumer
// stopped the iteration, escalated=true when the sub-agent escalated.
func runSubAgent(ictx agent.InvocationContext, sub agent.Agent, yield func(*session.Event, error) bool) (stop, escalated bool) {
	for event, err := range sub.Run(ictx) {
		if !yield(event, err) {
			return true, escalated
		}
		if event != nil && event.Actions.Escalate {
			escalated = true
		}
	}
	return false, escalated
}

// userText extracts the text of the triggering user message.
func userText(ictx agent.InvocationContext) string {
	content := ictx.UserContent()
	if content == nil {
		return ""
	}
	text := ""
	for _, part := range content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}
