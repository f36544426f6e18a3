package callbacks

import (
	"math/rand"
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"

	"atlas/internal/adapters/config"
	"atlas/internal/agents/state"
	"atlas/pkg/logger"
)

// ModelPacingBeforeCallback sleeps before each LLM call when the modelSleep
// property is set. Quota-limited backends need the pacing; the jitter keeps
// looping pipelines from synchronizing their calls.
func ModelPacingBeforeCallback(props *config.Properties) llmagent.BeforeModelCallback {
	return func(ctx agent.CallbackContext, req *model.LLMRequest) (*model.LLMResponse, error) {
		if props == nil {
			return nil, nil
		}

		sleepSeconds := props.GetFloat("modelSleep", 0)
		if sleepSeconds <= 0 {
			return nil, nil
		}

		pause := time.Duration((sleepSeconds + rand.Float64()*0.75) * float64(time.Second))
		logger.Get().With("component", "model_pacing").Debugf("Pacing model call by %v", pause.Round(time.Millisecond))
		time.Sleep(pause)
		return nil, nil
	}
}

// TokenCountingCallback tracks token usage in temporary state.
func TokenCountingCallback() llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
		if respErr != nil || resp == nil || resp.UsageMetadata == nil {
			return resp, respErr
		}

		log := logger.Get().With("component", "token_counter")
		log.Debugf("Tokens used: prompt=%d completion=%d total=%d",
			resp.UsageMetadata.PromptTokenCount,
			resp.UsageMetadata.CandidatesTokenCount,
			resp.UsageMetadata.TotalTokenCount,
		)

		state.SetTempPromptTokens(ctx.State(), int(resp.UsageMetadata.PromptTokenCount))
		state.SetTempCompletionTokens(ctx.State(), int(resp.UsageMetadata.CandidatesTokenCount))

		return resp, nil
	}
}
