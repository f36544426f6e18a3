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

// emailservice exposes the email triage pipeline over HTTP. POST /query
// takes an inbound email body and returns the drafted reply with
// classification metadata.
func main() {
	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	log := container.Log

	emailRunner, err := container.PipelineRunner("email_pipeline", func(f *workflows.Factory) (agent.Agent, error) {
		return f.CreateEmailPipeline()
	})
	if err != nil {
		log.Fatalf("failed to build email pipeline: %v", err)
	}

	container.MustInitHTTPServer(&api.Handlers{
		Query: emailRunner,
		Store: container.Business.Store,
		Log:   log,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	waitForShutdown(container)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a fatal internal error.
func waitForShutdown(container *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		container.Log.Info("Shutdown signal received")
	case <-container.Context.Done():
		container.Log.Info("Internal shutdown triggered")
	}

	container.Shutdown()
}
