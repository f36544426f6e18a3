package main

import (
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/adk/agent"

	"atlas/internal/agents/workflows"
	"atlas/internal/api"
	"atlas/internal/bootstrap"
	"atlas/pkg/logger"
)

// processapi exposes the process-documentation pipeline over HTTP.
// POST /api/process runs the full create pipeline headlessly and
// returns the normalized process model.
func main() {
	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	log := container.Log

	processRunner, err := container.PipelineRunner("process_pipeline", func(f *workflows.Factory) (agent.Agent, error) {
		return f.CreateProcessPipeline()
	})
	if err != nil {
		log.Fatalf("failed to build process pipeline: %v", err)
	}

	container.MustInitHTTPServer(&api.Handlers{
		Process: processRunner,
		Store:   container.Business.Store,
		Log:     log,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-container.Context.Done():
		log.Info("Internal shutdown triggered")
	}

	container.Shutdown()
}
