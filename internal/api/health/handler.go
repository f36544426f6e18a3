package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"atlas/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	redis       *redis.Client
	outputDir   string
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. The redis client is optional;
// services running without a cache skip that check.
func New(log *logger.Logger, redisClient *redis.Client, outputDir, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		redis:       redisClient,
		outputDir:   outputDir,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy" or "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks dependencies and reports per-component status.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	allHealthy := true

	if h.redis != nil {
		redisHealth := h.checkRedis(ctx)
		checks["redis"] = redisHealth
		if redisHealth.Status != "healthy" {
			allHealthy = false
		}
	}

	outputHealth := h.checkOutputDir()
	checks["output_dir"] = outputHealth
	if outputHealth.Status != "healthy" {
		allHealthy = false
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnf("Readiness check failed: %+v", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// HandleHealth reports the full component picture with a 200 status as
// long as the process is serving.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	if h.redis != nil {
		checks["redis"] = h.checkRedis(ctx)
	}
	checks["output_dir"] = h.checkOutputDir()

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	for _, check := range checks {
		if check.Status != "healthy" {
			status.Status = "degraded"
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

func (h *Handler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{Status: "unhealthy", Error: err.Error()}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: time.Since(start).String()}
}

// checkOutputDir verifies artifacts can be written.
func (h *Handler) checkOutputDir() ComponentHealth {
	if h.outputDir == "" {
		return ComponentHealth{Status: "healthy"}
	}

	if err := os.MkdirAll(h.outputDir, 0o755); err != nil {
		return ComponentHealth{Status: "unhealthy", Error: err.Error()}
	}

	probe := filepath.Join(h.outputDir, ".healthcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return ComponentHealth{Status: "unhealthy", Error: err.Error()}
	}
	os.Remove(probe)

	return ComponentHealth{Status: "healthy"}
}
