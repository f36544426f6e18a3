package knowledge

import (
	"time"

	"google.golang.org/adk/tool"

	"atlas/internal/tools/shared"
)

// NewAnswerQueryTool queries the enterprise search engine and returns the
// generated answer text. Failures come back as fallback messages in the
// answer field, never as tool errors, so drafting can always proceed.
func NewAnswerQueryTool(deps shared.Deps) tool.Tool {
	fn := func(ctx tool.Context, args map[string]interface{}) (map[string]interface{}, error) {
		if !deps.HasKnowledge() {
			return map[string]interface{}{
				"error": "answer_query: knowledge client not configured",
			}, nil
		}
		query, _ := args["query"].(string)
		if query == "" {
			return map[string]interface{}{
				"error": "answer_query: query is required",
			}, nil
		}

		deps.Log.Debug("Tool: answer_query called", "query_len", len(query))
		answer := deps.Knowledge.AnswerText(ctx, query)
		return map[string]interface{}{"answer": answer}, nil
	}

	return shared.NewToolBuilder(
		"answer_query",
		"Answer a free-text question from the enterprise knowledge base",
		fn, deps,
	).WithTimeout(90 * time.Second).WithStats().Build()
}
