package api

import (
	"context"
	"encoding/json"
	"net/http"

	"atlas/internal/agents"
	"atlas/internal/process"
	"atlas/pkg/logger"
)

// PipelineRunner executes an agent pipeline for a single request.
type PipelineRunner interface {
	Execute(ctx context.Context, input agents.ExecutionInput) (*agents.ExecutionOutput, error)
}

// Handlers holds the request handlers backed by agent pipelines. Query
// serves the email triage surface, Process runs the documentation
// pipeline headlessly. Either runner may be nil when the service does
// not expose that surface.
type Handlers struct {
	Query   PipelineRunner
	Process PipelineRunner
	Store   *process.Store
	Log     *logger.Logger
}

// QueryRequest is the payload for POST /query.
type QueryRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is returned from POST /query.
type QueryResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// HandleQuery runs the email pipeline against the posted query and
// returns the final agent response.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	output, err := h.Query.Execute(r.Context(), agents.ExecutionInput{
		UserID:    userID,
		SessionID: req.SessionID,
		Prompt:    req.Query,
	})
	if err != nil {
		h.Log.Errorf("Query pipeline failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pipeline execution failed"})
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Response:  output.RawResponse,
		SessionID: output.SessionID,
	})
}

// ProcessRequest is the payload for POST /api/process.
type ProcessRequest struct {
	Query string `json:"query"`
}

// HandleProcess runs the documentation pipeline end to end and returns
// the persisted master process definition.
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	output, err := h.Process.Execute(r.Context(), agents.ExecutionInput{
		UserID: "api",
		Prompt: req.Query,
	})
	if err != nil {
		h.Log.Errorf("Process pipeline failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pipeline execution failed"})
		return
	}

	proc, err := h.Store.LoadProcess()
	if err != nil {
		h.Log.Errorf("Pipeline finished but no process definition was persisted: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "no process definition produced",
			"response": output.RawResponse,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"process":    proc,
		"session_id": output.SessionID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
