package bootstrap

import (
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/adk/agent"

	adkadapter "atlas/internal/adapters/adk"
	"atlas/internal/adapters/ai"
	"atlas/internal/adapters/config"
	"atlas/internal/adapters/discovery"
	noopTracker "atlas/internal/adapters/errors/noop"
	sentryTracker "atlas/internal/adapters/errors/sentry"
	"atlas/internal/adapters/marketdata"
	redisclient "atlas/internal/adapters/redis"
	"atlas/internal/adapters/wikipedia"
	"atlas/internal/agents"
	"atlas/internal/agents/workflows"
	"atlas/internal/api"
	"atlas/internal/api/health"
	domainsession "atlas/internal/domain/session"
	"atlas/internal/metrics"
	redisrepo "atlas/internal/repository/redis"
	"atlas/internal/tools"
	"atlas/internal/tools/shared"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.Props = provideProperties(cfg, c.Log)

	// Initialize error tracker
	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// provideProperties loads the runtime tuning file. A missing file is not
// an error; defaults apply.
func provideProperties(cfg *config.Config, log *logger.Logger) *config.Properties {
	if cfg.App.PropertiesFile == "" {
		return config.NewProperties()
	}

	if _, err := os.Stat(cfg.App.PropertiesFile); err != nil {
		log.Infof("Properties file %s not found, using defaults", cfg.App.PropertiesFile)
		return config.NewProperties()
	}

	props, err := config.LoadProperties(cfg.App.PropertiesFile)
	if err != nil {
		log.Warnf("Failed to load properties file %s: %v", cfg.App.PropertiesFile, err)
		return config.NewProperties()
	}

	log.Infof("Loaded runtime properties from %s", cfg.App.PropertiesFile)
	return props
}

// provideErrorTracker selects the error tracking backend.
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		return noopTracker.New()
	}

	tracker, err := sentryTracker.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry, falling back to noop tracker: %v", err)
		return noopTracker.New()
	}

	log.Infof("✓ Error tracking enabled (%s)", cfg.ErrorTracking.Environment)
	return tracker
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects optional data stores. Redis backs the
// tool result cache and session persistence; when disabled both fall
// back to in-process alternatives.
func (c *Container) MustInitInfrastructure() {
	if !c.Config.Redis.Enabled {
		c.Log.Info("Redis disabled, using in-memory sessions and no cache")
		return
	}

	c.Log.Info("Connecting to Redis...")
	redisClient, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Redis = redisClient
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: External Adapters
// ========================================

// MustInitAdapters initializes upstream clients (Discovery Engine,
// market data, Wikipedia).
func (c *Container) MustInitAdapters() {
	if c.Config.Discovery.SearchURL != "" {
		client, err := discovery.NewClient(c.Context, c.Config.Discovery, c.Log)
		if err != nil {
			c.Log.Fatalf("failed to initialize discovery client: %v", err)
		}
		c.Adapters.Discovery = client
		c.Log.Info("✓ Discovery Engine client initialized")
	} else {
		c.Log.Info("Discovery Engine not configured, knowledge tools degrade to fallback answers")
	}

	c.Adapters.MarketData = marketdata.NewClient(c.Config.MarketData, c.Redis, c.Log)
	c.Adapters.Wikipedia = wikipedia.NewClient(c.Log)

	c.Log.Info("✓ Adapters initialized")
}

// ========================================
// Phase 4: Domain Services
// ========================================

// MustInitServices initializes session persistence. With Redis enabled
// sessions survive restarts; otherwise ADK's in-memory service is used
// by the runner layer.
func (c *Container) MustInitServices() {
	if c.Redis == nil {
		c.Log.Info("Session persistence disabled (no Redis)")
		return
	}

	ttl := time.Duration(c.Props.GetInt("sessionTTLHours", 72)) * time.Hour
	c.Repos.Session = redisrepo.NewSessionRepository(c.Redis.Client(), ttl)
	c.Services.Session = domainsession.NewService(c.Repos.Session)
	c.Services.ADKSession = adkadapter.NewSessionService(c.Services.Session)

	c.Log.Infof("✓ Session persistence initialized (ttl=%s)", ttl)
}

// ========================================
// Phase 5: Business Logic
// ========================================

// MustInitBusiness initializes tools, agents and workflow factories.
func (c *Container) MustInitBusiness() {
	aiRegistry, err := ai.BuildRegistry(c.Config.AI)
	if err != nil {
		c.Log.Fatalf("failed to initialize AI providers: %v", err)
	}
	c.Business.DefaultProvider = c.Config.AI.DefaultProvider
	c.Business.DefaultModel = c.Config.AI.DefaultModel

	deps := c.toolDeps()

	c.Business.ToolRegistry = tools.NewRegistry()
	tools.RegisterAllTools(c.Business.ToolRegistry, deps, c.Config)

	c.Business.AgentFactory, err = agents.NewFactory(agents.FactoryDeps{
		AIRegistry:   aiRegistry,
		ToolRegistry: c.Business.ToolRegistry,
		Props:        c.Props,
	})
	if err != nil {
		c.Log.Fatalf("failed to initialize agent factory: %v", err)
	}

	c.Business.WorkflowFactory, err = workflows.NewFactory(c.Business.AgentFactory, deps, agents.RunOptions{
		AIProvider: c.Business.DefaultProvider,
		Model:      c.Business.DefaultModel,
	})
	if err != nil {
		c.Log.Fatalf("failed to initialize workflow factory: %v", err)
	}
	c.Business.Store = c.Business.WorkflowFactory.Store()

	c.Log.With("tools", len(c.Business.ToolRegistry.List())).Info("✓ Business logic initialized")
}

// toolDeps assembles the dependency bundle shared by all tools. Nil
// interface fields must stay nil, not typed-nil wrappers, so the
// Has* checks work.
func (c *Container) toolDeps() shared.Deps {
	deps := shared.Deps{
		Props:     c.Props,
		OutputDir: c.Config.App.OutputDir,
		Log:       c.Log,
	}

	if c.Adapters.Discovery != nil {
		deps.Knowledge = c.Adapters.Discovery
	}
	if c.Adapters.MarketData != nil {
		deps.MarketData = c.Adapters.MarketData
	}
	if c.Adapters.Wikipedia != nil {
		deps.Indexes = c.Adapters.Wikipedia
	}
	if c.Redis != nil {
		deps.Redis = c.Redis
	}

	return deps
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication initializes health checks and metrics. The HTTP
// server itself is attached per binary via MustInitHTTPServer, since
// the exposed handler set differs between services.
func (c *Container) MustInitApplication() {
	var redisRaw *goredis.Client
	if c.Redis != nil {
		redisRaw = c.Redis.Client()
	}

	c.Application.HealthHandler = health.New(
		c.Log,
		redisRaw,
		c.Config.App.OutputDir,
		c.Config.App.Name,
		c.Config.Server.Version,
	)

	metrics.Init()
	customCollector := metrics.NewCustomCollector(c.Log, redisRaw, c.Config.App.OutputDir)
	metrics.RegisterCustomCollector(customCollector)
	c.Log.Info("✓ Metrics initialized")

	c.Log.Info("✓ Application layer initialized")
}

// PipelineRunner builds an executor for a root pipeline agent, backed by
// the persistent session service when available.
func (c *Container) PipelineRunner(name string, build func(*workflows.Factory) (agent.Agent, error)) (*agents.AgentRunner, error) {
	ag, err := build(c.Business.WorkflowFactory)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s pipeline", name)
	}

	return agents.NewAgentRunner(
		ag,
		agents.AgentType(name),
		agents.AgentConfig{TotalTimeout: c.Config.Pipeline.ExecutionTimeout},
		c.Services.ADKSession,
	)
}

// MustInitHTTPServer wires the HTTP server with the given handlers.
func (c *Container) MustInitHTTPServer(handlers *api.Handlers) {
	c.Application.HTTPServer = api.NewServer(
		api.ServerConfig{
			Port:        c.Config.Server.Port,
			ServiceName: c.Config.App.Name,
			Version:     c.Config.Server.Version,
		},
		handlers,
		c.Application.HealthHandler,
		c.Log,
	)
}
