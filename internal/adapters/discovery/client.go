package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"atlas/internal/adapters/config"
	"atlas/internal/metrics"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// noSummaryMarker appears in answers the engine could not ground; such
// answers are treated as empty.
const noSummaryMarker = "A summary could not be generated for your search query"

// Client queries a Vertex AI Discovery Engine app: a search call opens a
// session and yields a query ID, then an answer call against that session
// produces the generated answer text.
type Client struct {
	httpClient *http.Client
	log        *logger.Logger

	searchURL  string
	answerHost string
	projectID  string
	region     string
	appID      string
}

// HTTPStatusError reports a non-2xx response from the engine.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("discovery engine returned HTTP %d", e.StatusCode)
}

// NewClient creates a Discovery Engine client. When cfg.GCPLogin is set the
// client authenticates with Google application default credentials, or with
// the service account key file when cfg.SAKeyFile points at one.
func NewClient(ctx context.Context, cfg config.DiscoveryConfig, log *logger.Logger) (*Client, error) {
	projectID, region, appID, err := parseSearchURL(cfg.SearchURL)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.GCPLogin {
		ts, err := tokenSource(ctx, cfg.SAKeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build GCP token source")
		}
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		httpClient: httpClient,
		log:        log.With("component", "discovery"),
		searchURL:  cfg.SearchURL,
		answerHost: fmt.Sprintf("https://%s-discoveryengine.googleapis.com", region),
		projectID:  projectID,
		region:     region,
		appID:      appID,
	}, nil
}

func tokenSource(ctx context.Context, saKeyFile string) (oauth2.TokenSource, error) {
	if saKeyFile != "" {
		data, err := os.ReadFile(saKeyFile)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, err
		}
		return creds.TokenSource, nil
	}
	return google.DefaultTokenSource(ctx, cloudPlatformScope)
}

// parseSearchURL extracts project, region and app identifiers from the
// serving config URL, e.g.
// https://eu-discoveryengine.googleapis.com/v1alpha/projects/{p}/locations/{r}/collections/default_collection/engines/{app}/servingConfigs/default_search:search
func parseSearchURL(rawURL string) (projectID, region, appID string, err error) {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 12 {
		return "", "", "", errors.Wrapf(errors.ErrInvalidInput, "malformed discovery search URL: %s", rawURL)
	}
	return parts[5], parts[7], parts[11], nil
}

type sessionInfo struct {
	Name    string `json:"name"`
	QueryID string `json:"queryId"`
}

type searchResponse struct {
	SessionInfo sessionInfo `json:"sessionInfo"`
}

type answerResponse struct {
	Answer struct {
		AnswerText string `json:"answerText"`
		References []struct {
			ChunkInfo struct {
				Content string `json:"content"`
			} `json:"chunkInfo"`
		} `json:"references"`
	} `json:"answer"`
}

// AnswerResult holds the generated answer and its supporting chunks.
type AnswerResult struct {
	AnswerText string
	Chunks     []string
}

// Answer runs the two-step search+answer flow for the given query.
func (c *Client) Answer(ctx context.Context, query string) (AnswerResult, error) {
	session, err := c.search(ctx, query)
	if err != nil {
		return AnswerResult{}, err
	}
	if session.Name == "" || session.QueryID == "" {
		return AnswerResult{}, errors.Wrap(errors.ErrAnswerUnavailable, "no session or query ID in search response")
	}
	return c.answer(ctx, query, session)
}

func (c *Client) search(ctx context.Context, query string) (sessionInfo, error) {
	payload := map[string]interface{}{
		"query":              query,
		"pageSize":           100,
		"queryExpansionSpec": map[string]string{"condition": "AUTO"},
		"spellCorrectionSpec": map[string]string{
			"mode": "AUTO",
		},
		"languageCode": "en-US",
		"contentSearchSpec": map[string]interface{}{
			"extractiveContentSpec": map[string]int{"maxExtractiveAnswerCount": 1},
		},
		"userInfo": map[string]string{"timeZone": "Europe/London"},
		"session": fmt.Sprintf(
			"projects/%s/locations/%s/collections/default_collection/engines/%s/sessions/-",
			c.projectID, c.region, c.appID,
		),
	}

	var resp searchResponse
	if err := c.post(ctx, "search", c.searchURL, payload, &resp); err != nil {
		return sessionInfo{}, err
	}
	return resp.SessionInfo, nil
}

func (c *Client) answer(ctx context.Context, query string, session sessionInfo) (AnswerResult, error) {
	url := fmt.Sprintf(
		"%s/v1alpha/projects/%s/locations/%s/collections/default_collection/engines/%s/servingConfigs/default_search:answer",
		c.answerHost, c.projectID, c.region, c.appID,
	)

	payload := map[string]interface{}{
		"query": map[string]string{
			"text":    query,
			"queryId": session.QueryID,
		},
		"session":              session.Name,
		"relatedQuestionsSpec": map[string]string{"enable": "true"},
		"answerGenerationSpec": map[string]interface{}{
			"ignoreAdversarialQuery":      "true",
			"ignoreNonAnswerSeekingQuery": "false",
			"ignoreLowRelevantContent":    "true",
			"multimodalSpec":              map[string]interface{}{},
			"includeCitations":            "true",
			"modelSpec":                   map[string]string{"modelVersion": "stable"},
		},
	}

	var resp answerResponse
	if err := c.post(ctx, "answer", url, payload, &resp); err != nil {
		return AnswerResult{}, err
	}

	if strings.Contains(resp.Answer.AnswerText, noSummaryMarker) {
		return AnswerResult{}, nil
	}

	result := AnswerResult{AnswerText: resp.Answer.AnswerText}
	for _, ref := range resp.Answer.References {
		if content := ref.ChunkInfo.Content; content != "" {
			result.Chunks = append(result.Chunks, content)
		}
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, endpoint, url string, payload interface{}, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode discovery payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build discovery request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamCall("discovery", endpoint, time.Since(start), err)
	if err != nil {
		return errors.Wrapf(err, "discovery %s request failed", endpoint)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read discovery %s response", endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("Discovery engine request failed",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "failed to decode discovery %s response", endpoint)
	}
	return nil
}

// AnswerText runs the answer flow and folds failures into user-facing
// fallback messages, which downstream agents place into the draft context
// verbatim.
func (c *Client) AnswerText(ctx context.Context, query string) string {
	result, err := c.Answer(ctx, query)
	if err == nil {
		return result.AnswerText
	}

	c.log.Error("Discovery answer query failed", "error", err)

	var statusErr *HTTPStatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("An HTTP error occurred: %d.", statusErr.StatusCode)
	case errors.Is(err, errors.ErrAnswerUnavailable):
		return "No valid session or query ID found."
	default:
		return "An unexpected error occurred."
	}
}
