package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	Observability ObservabilityConfig
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"150s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:*,https://*"`
}

// DatabaseConfig holds the hosted Postgres configuration used for reports and profiles.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
// Persistence is disabled when neither DATABASE_URL nor DB_HOST is set.
type DatabaseConfig struct {
	ConnectionString string        `env:"DATABASE_URL"`
	Host             string        `env:"DB_HOST"`
	Port             int           `env:"DB_PORT" envDefault:"5432"`
	User             string        `env:"DB_USER"`
	Password         string        `env:"DB_PASSWORD"`
	Database         string        `env:"DB_NAME" envDefault:"postgres"`
	SSLMode          string        `env:"DB_SSLMODE" envDefault:"require"`
	MaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	InitSchema       bool          `env:"DB_INIT_SCHEMA" envDefault:"false"`
}

// ProvidersConfig holds inference backend configuration.
// Secrets carry no defaults: a backend without its key is reported as not configured.
type ProvidersConfig struct {
	OpenAIBaseURL   string        `env:"OPENAI_COMPAT_OPENAI_URL" envDefault:"https://api.openai.com/v1/"`
	DeepSeekBaseURL string        `env:"OPENAI_COMPAT_DEEPSEEK_URL" envDefault:"https://api.deepseek.com/"`
	GLMBaseURL      string        `env:"OPENAI_COMPAT_GLM_URL" envDefault:"https://open.bigmodel.cn/api/paas/v4/"`
	OllamaEndpoint  string        `env:"OLLAMA_ENDPOINT" envDefault:"http://localhost:11434"`
	OllamaModel     string        `env:"OLLAMA_MODEL" envDefault:"llama3"`
	HFToken         string        `env:"HF_TOKEN"`
	HFBaseURL       string        `env:"HF_BASE_URL" envDefault:"https://api-inference.huggingface.co/models"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-3-flash-preview"`
	RequestTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"json"` // json or console
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// PORT (set by most PaaS runtimes) wins over SERVER_PORT
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			cfg.Server.Port = p
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" && c.Database.Host != "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required when DB_HOST is set")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required when DB_HOST is set")
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Providers.RequestTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}

	// The default route goes to the grounded backend, so production needs its key
	if c.IsProduction() && c.Providers.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required in production")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Enabled reports whether a database has been configured
func (c *DatabaseConfig) Enabled() bool {
	return c.ConnectionString != "" || c.Host != ""
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
