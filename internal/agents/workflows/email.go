package workflows

import (
	"encoding/json"
	"iter"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"

	"atlas/internal/agents"
	"atlas/internal/agents/schemas"
	"atlas/internal/agents/state"
	"atlas/internal/tools/shared"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// reviewDoneMarker is the reviewer's signal that the draft needs no
// further revision.
const reviewDoneMarker = "No further comments."

// maxReviewIterations bounds the review/revise loop.
const maxReviewIterations = 5

// categoryAgentNames maps the classified email intention to the category
// tool agent that performs the knowledge lookup. Unknown intentions fall
// back to the generic IT agent.
var categoryAgentNames = map[string]string{
	"Hardware Issue":           "HardwareToolAgent",
	"Software Issue":           "SoftwareToolAgent",
	"Windows IT Issue":         "WindowsToolAgent",
	"Unix IT Issue":            "UnixToolAgent",
	"Network Issue":            "NetworkToolAgent",
	"Policy Question":          "PolicyToolAgent",
	"Customer Account Issue":   "CustomerAccountToolAgent",
	"FAQ Request":              "FAQToolAgent",
	"Customer Data Request":    "CustomerDataToolAgent",
	"Customer Payment Request": "CustomerPaymentToolAgent",
	"Customer Meter Request":   "CustomerMeterToolAgent",
	"Other":                    "OtherToolAgent",
}

const genericCategoryAgent = "GenericITToolAgent"

// newCategoryAgent builds a deterministic agent that answers the rewritten
// query against the enterprise knowledge base and stores the result under
// the tool_result state key.
func newCategoryAgent(name string, deps shared.Deps) (agent.Agent, error) {
	return agent.New(agent.Config{
		Name:        name,
		Description: "Answers the rewritten query from the enterprise knowledge base",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				st := ictx.Session().State()

				if !deps.HasKnowledge() {
					msg := "Knowledge client is not configured."
					state.SetToolResult(st, msg)
					yield(textEvent(name, msg), nil)
					return
				}

				query := state.GetRewrittenQuery(st)
				answer := deps.Knowledge.AnswerText(ictx, query)
				state.SetToolResult(st, answer)
				yield(textEvent(name, answer), nil)
			}
		},
	})
}

// newMeterAgent builds the meter-request agent. It requires the parser to
// have produced all four customer fields, verifies the customer against
// the knowledge base and appends the meter-update acknowledgement.
func newMeterAgent(deps shared.Deps) (agent.Agent, error) {
	const name = "CustomerMeterToolAgent"

	return agent.New(agent.Config{
		Name:        name,
		Description: "Validates customer details and applies a meter update",
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				st := ictx.Session().State()

				parsed := state.GetEmailParserFields(st)
				customerName := parsedField(parsed, "customer_name")
				customerID := parsedField(parsed, "customer_id")
				dateRange := parsedField(parsed, "date_range")
				meterReading := parsedField(parsed, "meter_reading")

				var response string
				switch {
				case customerName == "unknown" || customerID == "unknown" ||
					dateRange == "unknown" || meterReading == "unknown":
					response = "You have not specified all the required customer name, id, meter reading or date range details."
				case !deps.HasKnowledge():
					response = "Knowledge client is not configured."
				default:
					query := "Is there a customer with the customer_id " + customerID + "?"
					answer := deps.Knowledge.AnswerText(ictx, query)
					if strings.Contains(strings.ToLower(answer), "yes") {
						response = "The customer exists in the system.\n\nNote: A meter update has been applied to the customer's record."
					} else {
						response = "The customer specified does not exist in the system."
					}
				}

				state.SetToolResult(st, response)
				yield(textEvent(name, response), nil)
			}
		},
	})
}

func parsedField(fields map[string]interface{}, key string) string {
	val, ok := fields[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "unknown"
	}
	return strings.TrimSpace(val)
}

// CreateEmailPipeline builds the email triage orchestrator: classify and
// parse the email, look up an answer per intention category, draft the
// reply and run the bounded review/revise loop.
func (f *Factory) CreateEmailPipeline() (agent.Agent, error) {
	sentiment, err := f.createAgent(agents.AgentEmailSentiment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sentiment reviewer")
	}
	parser, err := f.createAgent(agents.AgentEmailParser)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create email parser")
	}
	rewriter, err := f.createAgent(agents.AgentQueryRewriter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create query rewriter")
	}
	generator, err := f.createAgent(agents.AgentEmailGenerator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create email generator")
	}
	reviewer, err := f.createAgent(agents.AgentEmailReviewer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create email reviewer")
	}
	reviser, err := f.createAgent(agents.AgentEmailReviser)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create email reviser")
	}

	generateSeq, err := f.agents.CreateSequential(
		"GenerateEmail",
		"Classifies sentiment, parses fields and rewrites the query",
		sentiment, parser, rewriter,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create generate sequence")
	}

	categoryAgents := make(map[string]agent.Agent, len(categoryAgentNames)+1)
	for intention, agentName := range categoryAgentNames {
		var categoryAgent agent.Agent
		if agentName == "CustomerMeterToolAgent" {
			categoryAgent, err = newMeterAgent(f.deps)
		} else {
			categoryAgent, err = newCategoryAgent(agentName, f.deps)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create category agent %s", agentName)
		}
		categoryAgents[intention] = categoryAgent
	}
	genericAgent, err := newCategoryAgent(genericCategoryAgent, f.deps)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create generic category agent")
	}

	log := logger.Get().With("component", "email_pipeline")

	subAgents := []agent.Agent{generateSeq, generator, reviewer, reviser, genericAgent}
	for _, categoryAgent := range categoryAgents {
		subAgents = append(subAgents, categoryAgent)
	}

	return agent.New(agent.Config{
		Name:        "EmailProcessor",
		Description: "Orchestrates the full email triage and drafting workflow",
		SubAgents:   subAgents,
		Run: func(ictx agent.InvocationContext) iter.Seq2[*session.Event, error] {
			return func(yield func(*session.Event, error) bool) {
				st := ictx.Session().State()

				state.SetFromEmailAddress(st, state.GetFromEmailAddress(st))
				state.SetEmailSubject(st, state.GetEmailSubject(st))

				bodyText := userText(ictx)
				if ec, err := schemas.ParseEmailContext(bodyText); err == nil {
					if ec.FromEmailAddress != "" {
						state.SetFromEmailAddress(st, ec.FromEmailAddress)
					}
					if ec.Subject != "" {
						state.SetEmailSubject(st, ec.Subject)
					}
					bodyText = ec.Body
				}
				state.SetTopic(st, bodyText)

				if stop, _ := runSubAgent(ictx, generateSeq, yield); stop {
					return
				}

				intention, _ := state.GetEmailSentiment(st)["intention"].(string)
				selected, ok := categoryAgents[intention]
				if !ok {
					selected = genericAgent
				}
				log.Infof("Routing intention %q to %s", intention, selected.Name())
				if stop, _ := runSubAgent(ictx, selected, yield); stop {
					return
				}

				if stop, _ := runSubAgent(ictx, generator, yield); stop {
					return
				}

				if strings.TrimSpace(state.GetEmailDraft(st)) == "" {
					log.Warn("Generator produced an empty draft, skipping review")
					return
				}

				for i := 0; i < maxReviewIterations; i++ {
					state.IncrementLoopIteration(st)
					if stop, _ := runSubAgent(ictx, reviewer, yield); stop {
						return
					}
					if stop, _ := runSubAgent(ictx, reviser, yield); stop {
						return
					}
					if strings.Contains(state.GetEmailReviewComments(st), reviewDoneMarker) {
						break
					}
				}

				result := emailResult(st, bodyText)
				payload, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					yield(nil, errors.Wrap(err, "failed to encode email result"))
					return
				}

				yield(textEvent("EmailProcessor", string(payload)), nil)
			}
		},
	})
}

// emailResult assembles the final pipeline payload from session state.
func emailResult(st session.State, bodyText string) map[string]interface{} {
	sentiment := state.GetEmailSentiment(st)

	toolResult := state.GetToolResult(st)
	if toolResult == "" {
		toolResult = "No tool was explicitly called."
	}

	comments := state.GetEmailReviewComments(st)
	if parts := strings.Split(comments, "\n\n"); len(parts) > 0 {
		comments = strings.TrimSpace(parts[len(parts)-1])
	}

	return map[string]interface{}{
		"email_data": map[string]interface{}{
			"fromEmailAddress": state.GetFromEmailAddress(st),
			"subject":          state.GetEmailSubject(st),
			"body":             bodyText,
		},
		"answer": map[string]interface{}{
			"email_draft":  state.GetEmailDraft(st),
			"tool_results": toolResult,
		},
		"metadata": map[string]interface{}{
			"email_sentiment":       sentiment["sentiment"],
			"email_intention":       sentiment["intention"],
			"email_urgency":         sentiment["urgency"],
			"email_keystatements":   sentiment["keystatement"],
			"email_review_comments": comments,
		},
	}
}
