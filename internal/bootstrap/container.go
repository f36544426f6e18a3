package bootstrap

import (
	"context"
	"sync"

	adksession "google.golang.org/adk/session"

	"atlas/internal/adapters/config"
	"atlas/internal/adapters/discovery"
	"atlas/internal/adapters/marketdata"
	redisclient "atlas/internal/adapters/redis"
	"atlas/internal/adapters/wikipedia"
	"atlas/internal/agents"
	"atlas/internal/agents/workflows"
	"atlas/internal/api"
	"atlas/internal/api/health"
	domainsession "atlas/internal/domain/session"
	"atlas/internal/process"
	"atlas/internal/tools"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
	"atlas/pkg/templates"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Props        *config.Properties
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer. Redis is optional; binaries without a cache
	// run with in-memory sessions instead.
	Redis *redisclient.Client

	// Domain Layer
	Repos    *Repositories
	Services *Services

	// External Adapters
	Adapters *Adapters

	// Business Logic
	Business *Business

	// Application Layer
	Application *Application

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups all domain repositories
type Repositories struct {
	Session domainsession.Repository
}

// Services groups all domain services
type Services struct {
	Session    *domainsession.Service // Session domain service
	ADKSession adksession.Service     // ADK interface
}

// Adapters groups all external adapters
type Adapters struct {
	Discovery  *discovery.Client  // Enterprise search (Vertex AI Discovery Engine)
	MarketData *marketdata.Client // Market quotes and fundamentals
	Wikipedia  *wikipedia.Client  // Index constituents scraper
}

// Business groups business logic components
type Business struct {
	ToolRegistry    *tools.Registry
	AgentFactory    *agents.Factory
	WorkflowFactory *workflows.Factory
	Store           *process.Store
	DefaultProvider string
	DefaultModel    string
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Adapters:    &Adapters{},
		Business:    &Business{},
		Application: &Application{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitBusiness()
	c.MustInitApplication()
}

// Start starts the HTTP server in the background. Binaries that expose
// no HTTP surface never call this.
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if c.Application.HTTPServer == nil {
		return errors.Wrap(errors.ErrInvalidInput, "HTTP server is not initialized")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

// GetMetrics returns metrics for observability
func (c *Container) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"tools": len(c.Business.ToolRegistry.List()),
	}
}

// TemplateRegistry returns the global template registry
func (c *Container) TemplateRegistry() *templates.Registry {
	return templates.Get()
}
