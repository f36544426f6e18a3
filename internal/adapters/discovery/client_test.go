package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atlas/internal/adapters/config"
	"atlas/pkg/logger"
)

const testSearchPath = "/v1alpha/projects/test-proj/locations/eu/collections/default_collection/engines/test-app/servingConfigs/default_search:search"

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	if err := logger.Init("error", "test"); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return logger.Get()
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DiscoveryConfig{
		SearchURL: srv.URL + testSearchPath,
		Timeout:   5 * time.Second,
	}
	client, err := NewClient(context.Background(), cfg, testLogger(t))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	// The answer endpoint is derived from the production host; point it at
	// the test server instead.
	client.answerHost = srv.URL
	client.httpClient = srv.Client()
	return client, srv
}

func TestParseSearchURL(t *testing.T) {
	project, region, app, err := parseSearchURL(
		"https://eu-discoveryengine.googleapis.com/v1alpha/projects/my-proj/locations/eu/collections/default_collection/engines/my-app/servingConfigs/default_search:search",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project != "my-proj" || region != "eu" || app != "my-app" {
		t.Fatalf("parsed %s/%s/%s", project, region, app)
	}

	if _, _, _, err := parseSearchURL("not-a-url"); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestSearchSessionInfo(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["query"] != "what is the refund policy" {
			t.Errorf("unexpected query: %v", payload["query"])
		}
		if !strings.HasSuffix(payload["session"].(string), "/sessions/-") {
			t.Errorf("session should target the wildcard session: %v", payload["session"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"sessionInfo": map[string]string{
				"name":    "projects/test-proj/sessions/123",
				"queryId": "q-456",
			},
		})
	}))

	session, err := client.search(context.Background(), "what is the refund policy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Name != "projects/test-proj/sessions/123" || session.QueryID != "q-456" {
		t.Fatalf("unexpected session info: %+v", session)
	}
}

func TestAnswerTextFallbacks(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		got := client.AnswerText(context.Background(), "query")
		if got != "An HTTP error occurred: 403." {
			t.Fatalf("unexpected fallback: %q", got)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"sessionInfo": map[string]string{}})
		}))

		got := client.AnswerText(context.Background(), "query")
		if got != "No valid session or query ID found." {
			t.Fatalf("unexpected fallback: %q", got)
		}
	})
}

func TestAnswerDropsUngroundedSummary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ":search") {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"sessionInfo": map[string]string{"name": "s", "queryId": "q"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": map[string]interface{}{
				"answerText": "A summary could not be generated for your search query. Sorry.",
			},
		})
	}))

	result, err := client.answer(context.Background(), "query", sessionInfo{Name: "s", QueryID: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AnswerText != "" {
		t.Fatalf("ungrounded answer should be empty, got %q", result.AnswerText)
	}
}
