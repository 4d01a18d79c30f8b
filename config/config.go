package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"weatherwizard/manager"
	"weatherwizard/quota"
)

//go:embed config.yaml
var defaultConfig []byte

var validate = validator.New()

type Config struct {
	Timezone  string                    `yaml:"timezone"`
	Log       Log                       `yaml:"log"`
	Database  Database                  `yaml:"database"`
	Quota     Quota                     `yaml:"quota"`
	HTTP      HTTP                      `yaml:"http"`
	Providers map[string]ProviderConfig `yaml:"providers" validate:"dive"`
}

type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

type Database struct {
	Driver string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

type Quota struct {
	Backend  string `yaml:"backend" validate:"required,oneof=database redis"`
	RedisURL string `yaml:"redis_url" validate:"required_if=Backend redis"`
}

type HTTP struct {
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	DailyLimit int    `yaml:"daily_limit" validate:"gte=0"`
}

// Load reads the embedded defaults, replaced by the file at path when it is
// not empty, then applies environment overrides (optionally from .env).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	raw := defaultConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		raw = b
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse decodes raw YAML without looking at the environment.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Quota.Backend, "QUOTA_BACKEND")
	setString(&c.Quota.RedisURL, "REDIS_URL")

	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}

	providers := append([]manager.Provider{manager.OpenCage}, manager.WeatherProviders...)
	for _, p := range providers {
		pc := c.Providers[p.String()]
		setString(&pc.APIKey, "API_KEY_"+p.EnvName())

		name := "API_LIMIT_" + p.EnvName()
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			pc.DailyLimit = n
		}
		c.Providers[p.String()] = pc
	}

	return nil
}

func (c *Config) APIKey(p manager.Provider) string {
	return c.Providers[p.String()].APIKey
}

// Limits returns the configured daily ceilings; providers without one fall
// back to quota.DefaultLimit.
func (c *Config) Limits() quota.Limits {
	limits := make(quota.Limits, len(c.Providers))
	for tag, pc := range c.Providers {
		if p, ok := manager.ProviderFromTag(tag); ok && pc.DailyLimit > 0 {
			limits[p] = pc.DailyLimit
		}
	}
	return limits
}

// Location is the time zone calendar days are cut in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
