package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config is built once at startup and passed by reference; components never
// read the environment themselves.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	BotToken       string `envconfig:"BOT_TOKEN" required:"true"`
	PollTimeoutSec int    `envconfig:"POLL_TIMEOUT_SEC" default:"50"`

	TranslateSecret     string `envconfig:"TRANSLATE_SECRET" required:"true"`
	TranslateURL        string `envconfig:"TRANSLATE_URL" default:""`
	TranslateUserAgent  string `envconfig:"TRANSLATE_USER_AGENT" default:""`
	TranslateTimeoutMin int    `envconfig:"TRANSLATE_TIMEOUT_MIN" default:"90"`

	MaxActiveTranslations int    `envconfig:"MAX_ACTIVE_TRANSLATIONS" default:"4"`
	DefaultTargetLang     string `envconfig:"DEFAULT_TARGET_LANG" default:"ru"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	PrefsTTLHours int    `envconfig:"PREFS_TTL_HOURS" default:"720"`

	// Empty DSN falls back to the discrete POSTGRES_* variables.
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if strings.TrimSpace(c.TranslateSecret) == "" {
		return fmt.Errorf("TRANSLATE_SECRET is required")
	}
	if c.PollTimeoutSec < 1 {
		return fmt.Errorf("POLL_TIMEOUT_SEC must be >= 1")
	}
	if c.TranslateTimeoutMin < 1 {
		return fmt.Errorf("TRANSLATE_TIMEOUT_MIN must be >= 1")
	}
	if c.MaxActiveTranslations < 1 {
		return fmt.Errorf("MAX_ACTIVE_TRANSLATIONS must be >= 1")
	}
	return nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
