package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherwizard/manager"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database", cfg.Quota.Backend)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)

	limits := cfg.Limits()
	assert.Equal(t, 50, limits.For(manager.AccuWeather))
	assert.Equal(t, 1440, limits.For(manager.OpenWeatherMap))
	assert.Equal(t, 2500, limits.For(manager.OpenCage))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_KEY_WEATHERBIT", "wb-secret")
	t.Setenv("API_LIMIT_ACCUWEATHER", "25")
	t.Setenv("DATABASE_DSN", "/tmp/forecasts.db")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "wb-secret", cfg.APIKey(manager.Weatherbit))
	assert.Equal(t, 25, cfg.Limits().For(manager.AccuWeather))
	assert.Equal(t, "/tmp/forecasts.db", cfg.Database.DSN)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: postgres
  dsn: host=localhost dbname=weather
quota:
  backend: redis
  redis_url: redis://localhost:6379/0
providers:
  openweathermap.org:
    api_key: owm-secret
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Quota.RedisURL)
	assert.Equal(t, "owm-secret", cfg.APIKey(manager.OpenWeatherMap))
	assert.Equal(t, 1000, cfg.Limits().For(manager.OpenWeatherMap))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "driver", env: map[string]string{"DATABASE_DRIVER": "mysql"}},
		{name: "redis without url", env: map[string]string{"QUOTA_BACKEND": "redis"}},
		{name: "limit", env: map[string]string{"API_LIMIT_WEATHERAPI": "many"}},
		{name: "negative limit", env: map[string]string{"API_LIMIT_WEATHERAPI": "-1"}},
		{name: "timeout", env: map[string]string{"HTTP_TIMEOUT": "soon"}},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("providers: ["))
	assert.Error(t, err)
}
