package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rxcheck/rxcheck/internal/platform/db"
)

// Storage backends selectable with STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	StoreBackend     string        `mapstructure:"STORE_BACKEND"`
	StoreFile        string        `mapstructure:"STORE_FILE"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBSchema         string        `mapstructure:"DB_SCHEMA"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	MongoURI         string        `mapstructure:"MONGODB_URI"`
	MongoDatabase    string        `mapstructure:"MONGODB_DATABASE"`
	AnalysisBaseURL  string        `mapstructure:"ANALYSIS_BASE_URL"`
	AnalysisTimeout  time.Duration `mapstructure:"ANALYSIS_TIMEOUT"`
	Evaluator        string        `mapstructure:"EVALUATOR"`
	RemoteSearch     bool          `mapstructure:"REMOTE_SEARCH"`
	CatalogFile      string        `mapstructure:"CATALOG_FILE"`
	ReportDir        string        `mapstructure:"REPORT_DIR"`
	AuthSigningKey   string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer       string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience     string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	SentryDSN        string        `mapstructure:"SENTRY_DSN"`
	SentrySampleRate float64       `mapstructure:"SENTRY_SAMPLE_RATE"`
}

var keys = []string{
	"PORT", "ENV",
	"STORE_BACKEND", "STORE_FILE",
	"DATABASE_URL", "DB_SCHEMA", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"MONGODB_URI", "MONGODB_DATABASE",
	"ANALYSIS_BASE_URL", "ANALYSIS_TIMEOUT", "EVALUATOR", "REMOTE_SEARCH",
	"CATALOG_FILE", "REPORT_DIR",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT",
	"SENTRY_DSN", "SENTRY_SAMPLE_RATE",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. Environment values win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("STORE_FILE", "data/rxcheck.json")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("MONGODB_DATABASE", "rxcheck")
	v.SetDefault("ANALYSIS_BASE_URL", "http://localhost:8000")
	v.SetDefault("ANALYSIS_TIMEOUT", "0s")
	v.SetDefault("EVALUATOR", "local")
	v.SetDefault("REMOTE_SEARCH", true)
	v.SetDefault("REPORT_DIR", "")
	v.SetDefault("AUTH_ISSUER", "rxcheck")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("SENTRY_SAMPLE_RATE", 1.0)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.Evaluator = strings.ToLower(strings.TrimSpace(cfg.Evaluator))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is complete for the selected
// storage backend and evaluator, and that production runs with real device
// authentication.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.StoreFile == "" {
			return fmt.Errorf("STORE_FILE is required when STORE_BACKEND is %q", StoreFile)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is %q", StorePostgres)
		}
		if !db.ValidSchema(c.DBSchema) {
			return fmt.Errorf("DB_SCHEMA %q is not a valid schema name", c.DBSchema)
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_BACKEND is %q", StoreMongo)
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE is required when STORE_BACKEND is %q", StoreMongo)
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, file, postgres, mongo, got %q", c.StoreBackend)
	}

	if c.Evaluator != "local" && c.Evaluator != "remote" {
		return fmt.Errorf("EVALUATOR must be \"local\" or \"remote\", got %q", c.Evaluator)
	}
	if u, err := url.Parse(c.AnalysisBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ANALYSIS_BASE_URL must be an http(s) URL, got %q", c.AnalysisBaseURL)
	}
	if c.AnalysisTimeout < 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must not be negative")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		return fmt.Errorf("SENTRY_SAMPLE_RATE must be between 0 and 1, got %v", c.SentrySampleRate)
	}

	if !c.IsDev() {
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q; refusing to start without device authentication", c.Env)
		}
		if len(c.AuthSigningKey) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes, got %d", len(c.AuthSigningKey))
		}
	}
	return nil
}
