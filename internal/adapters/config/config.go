package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"atlas/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	AI            AIConfig
	Discovery     DiscoveryConfig
	MarketData    MarketDataConfig
	Redis         RedisConfig
	Portfolio     PortfolioConfig
	Pipeline      PipelineConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"atlas"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// OutputDir is where pipeline artifacts (JSON, DOCX, XLSX, SVG) are written
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	// PropertiesFile points at the runtime tuning file (loop iterations,
	// model pacing). Missing file falls back to built-in defaults.
	PropertiesFile string `envconfig:"PROPERTIES_FILE" default:"config.properties"`
}

type ServerConfig struct {
	Port    int    `envconfig:"SERVER_PORT" default:"8080"`
	Version string `envconfig:"SERVICE_VERSION" default:"1.0"`
}

type AIConfig struct {
	GeminiKey       string `envconfig:"GEMINI_API_KEY"`
	DefaultProvider string `envconfig:"DEFAULT_AI_PROVIDER" default:"gemini"`
	DefaultModel    string `envconfig:"DEFAULT_AI_MODEL" default:"gemini-2.0-flash"`
}

// DiscoveryConfig holds the Vertex AI Discovery Engine answer endpoint settings
type DiscoveryConfig struct {
	SearchURL string        `envconfig:"DISCOVERY_SEARCH_URL"`
	GCPLogin  bool          `envconfig:"GCP_LOGIN" default:"false"`
	SAKeyFile string        `envconfig:"SA_JSON_FILE"`
	Timeout   time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"60s"`
}

type MarketDataConfig struct {
	BaseURL          string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://query1.finance.yahoo.com"`
	RequestsPerSec   float64       `envconfig:"MARKET_DATA_RPS" default:"2"`
	Timeout          time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"15s"`
	CacheTTL         time.Duration `envconfig:"MARKET_DATA_CACHE_TTL" default:"15m"`
	RiskFreeOverride float64       `envconfig:"RISK_FREE_RATE_OVERRIDE" default:"0"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PortfolioConfig carries the screening thresholds for portfolio construction
type PortfolioConfig struct {
	BetaHighMin   float64 `envconfig:"BETA_HIGH_MIN" default:"1.2"`
	BetaLowMax    float64 `envconfig:"BETA_LOW_MAX" default:"1.0"`
	MaxAvgCorr    float64 `envconfig:"MAX_AVG_CORR" default:"0.4"`
	BucketSize    int     `envconfig:"PORTFOLIO_BUCKET_SIZE" default:"10"`
	BenchmarkSym  string  `envconfig:"PORTFOLIO_BENCHMARK" default:"^GSPC"`
	RiskFreeProxy string  `envconfig:"RISK_FREE_PROXY" default:"^TNX"`
}

// PipelineConfig carries runtime limits shared by the agent pipelines
type PipelineConfig struct {
	ExecutionTimeout time.Duration `envconfig:"PIPELINE_EXECUTION_TIMEOUT" default:"10m"`
	MaxTokens        int           `envconfig:"PIPELINE_MAX_TOKENS" default:"64000"`
	ReviewLoopMax    uint          `envconfig:"PIPELINE_REVIEW_LOOP_MAX" default:"5"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
