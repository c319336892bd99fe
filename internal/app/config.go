package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Catalog sources.
const (
	SourceDefault  = "default"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

const defaultAddr = "0.0.0.0:8080"

// Config is the kart-server configuration, loadable from KART_ environment
// variables, flags or YAML files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Catalog   CatalogConfig
	Sale      SaleConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CatalogConfig selects where the starting catalog comes from.
type CatalogConfig struct {
	Source      string `default:"default" usage:"Catalog source: default, file or postgres"`
	Path        string `default:"db/seed/catalog.json" usage:"Seed file for the file source (.json or .json.gz)"`
	DatabaseURL string `usage:"PostgreSQL connection URL for the postgres source" flag:"database-url"`
}

// SaleConfig drives the sale simulator.
type SaleConfig struct {
	Enabled           bool          `default:"true" usage:"Run lightning and suggested sales"`
	LightningRate     float64       `default:"0.2" usage:"Lightning sale discount rate"`
	LightningDuration time.Duration `default:"30s" usage:"How long a lightning sale lasts"`
	LightningMaxDelay time.Duration `default:"10s" usage:"Upper bound of the random first lightning delay"`
	LightningInterval time.Duration `default:"30s" usage:"Time between lightning sales"`
	SuggestRate       float64       `default:"0.05" usage:"Suggested sale discount rate"`
	SuggestDelay      time.Duration `default:"60s" usage:"Delay before the first suggested sale"`
	SuggestInterval   time.Duration `default:"60s" usage:"Time between suggested sales"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from the environment and YAML files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KART",
		Files:     []string{"config.yaml", "/etc/kart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations aconfig cannot express.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceDefault:
	case SourceFile:
		if c.Catalog.Path == "" {
			return errors.New("catalog path is required for the file source")
		}
	case SourcePostgres:
		if c.Catalog.DatabaseURL == "" {
			return errors.New("database URL is required for the postgres source: set KART_CATALOG_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	s := c.Sale
	if s.LightningRate < 0 || s.LightningRate >= 1 || s.SuggestRate < 0 || s.SuggestRate >= 1 {
		return errors.New("sale rates must be in [0, 1)")
	}
	if s.Enabled && (s.LightningDuration <= 0 || s.LightningInterval <= 0 || s.SuggestInterval <= 0) {
		return errors.New("sale durations and intervals must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided DATABASE_URL and PORT onto the
// KART_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Catalog.DatabaseURL == "" {
		c.Catalog.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
