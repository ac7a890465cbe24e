package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agri-advisory-gateway/config"
	"github.com/upb/agri-advisory-gateway/services"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
		},
		Providers: config.ProvidersConfig{
			OllamaEndpoint: "http://127.0.0.1:11434",
			OllamaModel:    "llama3",
			RequestTimeout: 5 * time.Second,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:       "debug",
			MetricsEnabled: true,
		},
	}
}

func TestNewDependencies(t *testing.T) {
	t.Run("wires every backend without persistence", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)

		deps, err := NewDependenciesWithOptions(ctx, cfg, zaptest.NewLogger(t), Options{Registerer: prometheus.NewRegistry()})
		require.NoError(t, err)
		require.NotNil(t, deps)

		assert.ElementsMatch(t,
			[]string{"openai", "deepseek", "glm", "ollama", "huggingface", "gemini"},
			deps.Backends.List())
		assert.NotNil(t, deps.Router)
		assert.NotNil(t, deps.Advisory)
		assert.NotNil(t, deps.Reports)
		assert.False(t, deps.Reports.Enabled())

		assert.Nil(t, deps.DB)
		assert.Nil(t, deps.HealthChecker())
		assert.Nil(t, deps.AuditStats())
		assert.Equal(t, Version, deps.Version)

		_, err = deps.Reports.GetProfile(ctx, "uid-1")
		assert.ErrorIs(t, err, services.ErrPersistenceDisabled)

		require.NoError(t, deps.Close(ctx))
	})

	t.Run("metrics disabled skips registration", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Observability.MetricsEnabled = false
		reg := prometheus.NewRegistry()

		deps, err := NewDependenciesWithOptions(context.Background(), cfg, zaptest.NewLogger(t), Options{Registerer: reg})
		require.NoError(t, err)

		families, err := reg.Gather()
		require.NoError(t, err)
		assert.Empty(t, families)
		require.NoError(t, deps.Close(context.Background()))
	})

	t.Run("duplicate metric registration fails", func(t *testing.T) {
		cfg := testConfig(t)
		reg := prometheus.NewRegistry()

		first, err := NewDependenciesWithOptions(context.Background(), cfg, zaptest.NewLogger(t), Options{Registerer: reg})
		require.NoError(t, err)
		defer first.Close(context.Background())

		_, err = NewDependenciesWithOptions(context.Background(), cfg, zaptest.NewLogger(t), Options{Registerer: reg})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize metrics")
	})

	t.Run("database connection failure", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.Host = "127.0.0.1"
		cfg.Database.Port = 1
		cfg.Database.User = "agri"

		deps, err := NewDependenciesWithOptions(context.Background(), cfg, zaptest.NewLogger(t), Options{Registerer: prometheus.NewRegistry()})
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestDependenciesClose(t *testing.T) {
	ctx := context.Background()

	deps, err := NewDependenciesWithOptions(ctx, testConfig(t), zaptest.NewLogger(t), Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)

	assert.NoError(t, deps.Close(ctx))
	// Second close is a no-op
	assert.NoError(t, deps.Close(ctx))
}
