package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"pipeline", "status"}, // status: success|error
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_pipeline_duration_seconds",
			Help:    "Pipeline execution duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"pipeline"},
	)

	PipelineLoopIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_pipeline_loop_iterations",
			Help:    "Number of refinement loop iterations per run",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
		[]string{"pipeline", "loop"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_agent_calls_total",
			Help: "Total number of agent calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"}, // status: success|error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Upstream API metrics
	UpstreamAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_upstream_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"upstream", "endpoint", "status"}, // upstream: discovery|market|wikipedia
	)

	UpstreamAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_upstream_api_latency_seconds",
			Help:    "Upstream API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"upstream", "endpoint"},
	)

	// HTTP server metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
		},
		[]string{"path", "method"},
	)

	// Cache metrics
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "status"}, // operation: get|set, status: hit|miss|error|ok
	)

	// Artifact metrics
	ArtifactsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_artifacts_written_total",
			Help: "Total number of artifacts written to the output directory",
		},
		[]string{"kind", "status"}, // kind: json|docx|xlsx|svg
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Pipeline metrics
	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(PipelineLoopIterations)

	// Agent metrics
	prometheus.MustRegister(AgentCalls)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	// Tool metrics
	prometheus.MustRegister(ToolExecutions)
	prometheus.MustRegister(ToolLatency)

	// Upstream API metrics
	prometheus.MustRegister(UpstreamAPICalls)
	prometheus.MustRegister(UpstreamAPILatency)

	// HTTP server metrics
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPRequestDuration)

	// Cache metrics
	prometheus.MustRegister(CacheOperations)

	// Artifact metrics
	prometheus.MustRegister(ArtifactsWritten)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records a pipeline run
func RecordPipelineRun(pipeline string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	PipelineRuns.WithLabelValues(pipeline, status).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordAgentCall records an agent invocation
func RecordAgentCall(agent, model string, latency time.Duration, inputTokens, outputTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AgentCalls.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())

	if inputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(outputTokens))
	}
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ToolExecutions.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordUpstreamCall records an upstream API call
func RecordUpstreamCall(upstream, endpoint string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	UpstreamAPICalls.WithLabelValues(upstream, endpoint, status).Inc()
	UpstreamAPILatency.WithLabelValues(upstream, endpoint).Observe(latency.Seconds())
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(path, method, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(path, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordArtifactWrite records an artifact written to disk
func RecordArtifactWrite(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ArtifactsWritten.WithLabelValues(kind, status).Inc()
}
