package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/agents"
	"atlas/internal/api/health"
	"atlas/internal/process"
	"atlas/pkg/logger"
)

type stubRunner struct {
	output *agents.ExecutionOutput
	err    error
	lastIn agents.ExecutionInput
}

func (s *stubRunner) Execute(ctx context.Context, input agents.ExecutionInput) (*agents.ExecutionOutput, error) {
	s.lastIn = input
	return s.output, s.err
}

func newTestServer(t *testing.T, handlers *Handlers) *httptest.Server {
	t.Helper()
	require.NoError(t, logger.Init("error", "test"))

	healthHandler := health.New(logger.Get(), nil, t.TempDir(), "atlas-test", "test")
	srv := NewServer(ServerConfig{ServiceName: "atlas-test", Version: "test"}, handlers, healthHandler, logger.Get())
	return httptest.NewServer(srv.httpServer.Handler)
}

func TestHandleQuery(t *testing.T) {
	runner := &stubRunner{output: &agents.ExecutionOutput{
		RawResponse: "Dear customer, your VPN issue has been resolved.",
		SessionID:   "sess-1",
	}}
	handlers := &Handlers{Query: runner, Log: logger.Get()}
	ts := newTestServer(t, handlers)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/query", "application/json",
		strings.NewReader(`{"query": "My VPN keeps dropping", "user_id": "pat"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pat", runner.lastIn.UserID)
	assert.Equal(t, "My VPN keeps dropping", runner.lastIn.Prompt)
}

func TestHandleQueryRejectsEmpty(t *testing.T) {
	handlers := &Handlers{Query: &stubRunner{}, Log: logger.Get()}
	ts := newTestServer(t, handlers)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleProcess(t *testing.T) {
	require.NoError(t, logger.Init("error", "test"))

	store := process.NewStore(t.TempDir(), logger.Get())
	require.NoError(t, store.SaveProcess(process.Process{
		ProcessName: "Customer Onboarding",
		Description: "End to end onboarding flow",
	}))

	runner := &stubRunner{output: &agents.ExecutionOutput{RawResponse: "done", SessionID: "sess-2"}}
	handlers := &Handlers{Process: runner, Store: store, Log: logger.Get()}
	ts := newTestServer(t, handlers)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/process", "application/json",
		strings.NewReader(`{"query": "Document the onboarding process"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Document the onboarding process", runner.lastIn.Prompt)
}

func TestVersionEndpoint(t *testing.T) {
	ts := newTestServer(t, &Handlers{Log: logger.Get()})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnwiredSurfacesReturn404(t *testing.T) {
	ts := newTestServer(t, &Handlers{Log: logger.Get()})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(`{"query":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
