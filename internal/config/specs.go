package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// EnvSpec is the environment configuration the server and clanctl start from.
type EnvSpec struct {
	AppEnv   string `envconfig:"app_env" default:"development"`
	LogLevel string `envconfig:"log_level"`
	Port     int    `envconfig:"port" default:"8080"`

	StoreBackend string `envconfig:"store_backend" default:"file"`
	DataDir      string `envconfig:"data_dir" default:"./data"`
	DatabaseDSN  string `envconfig:"database_dsn"`

	RedisAddr     string `envconfig:"redis_addr"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db" default:"0"`
	RedisPrefix   string `envconfig:"redis_prefix" default:"clanhall"`
	StreamMaxLen  int64  `envconfig:"stream_max_len" default:"10000"`

	ActionTokenSecret string        `envconfig:"action_token_secret"`
	ActionTokenTTL    time.Duration `envconfig:"action_token_ttl" default:"72h"`

	PlatformBaseURL string        `envconfig:"platform_base_url"`
	PlatformAPIKey  string        `envconfig:"platform_api_key"`
	PlatformTimeout time.Duration `envconfig:"platform_timeout" default:"10s"`

	RepairInterval time.Duration `envconfig:"repair_interval" default:"1h"`
	KeyCacheTTL    time.Duration `envconfig:"key_cache_ttl" default:"5m"`

	OtelEndpoint string `envconfig:"otel_endpoint"`

	RateLimitPerSecond float64 `envconfig:"rate_limit_per_second" default:"5"`
	RateLimitBurst     int     `envconfig:"rate_limit_burst" default:"20"`
	CORSOrigins        string  `envconfig:"cors_origins" default:"*"`
}

// Load reads the environment and validates the combination of settings.
func Load() (*EnvSpec, error) {
	specs := new(EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %w", err)
	}
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	return specs, nil
}

func (s *EnvSpec) Validate() error {
	s.StoreBackend = strings.ToLower(strings.TrimSpace(s.StoreBackend))
	switch s.StoreBackend {
	case BackendFile:
		if s.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file backend")
		}
	case BackendSQLite, BackendPostgres:
		if s.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s backend", s.StoreBackend)
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.StoreBackend)
	}
	if s.ActionTokenTTL <= 0 {
		return fmt.Errorf("ACTION_TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production logging.
func (s *EnvSpec) IsProduction() bool {
	return s.AppEnv == "production"
}

// Origins splits CORS_ORIGINS on commas.
func (s *EnvSpec) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
