// Package config loads application configuration from an optional YAML file
// plus environment variable overrides, using cleanenv struct tags.
//
// Precedence: environment variables win over the YAML file, which wins over
// the env-default tags. Only AUTH_JWT_SECRET is required — everything else
// has a sensible default for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`

	// StaticDir, when set, is served at / so the SPA bundle can be hosted
	// by the same process. Empty disables static serving (API only).
	StaticDir string `yaml:"static_dir" env:"SERVER_STATIC_DIR"`
}

// DatabaseConfig holds SQLite settings. Path may be ":memory:" in tests.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"data/journally.db"`
}

// AuthConfig holds session and OAuth settings.
//
// GitHub sign-in is optional: when ClientID/ClientSecret are empty the
// /auth/github routes are simply not registered.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"           env:"AUTH_JWT_SECRET"           env-required:"true"`
	SessionTTL         time.Duration `yaml:"session_ttl"          env:"AUTH_SESSION_TTL"          env-default:"24h"`
	GitHubClientID     string        `yaml:"github_client_id"     env:"AUTH_GITHUB_CLIENT_ID"`
	GitHubClientSecret string        `yaml:"github_client_secret" env:"AUTH_GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string        `yaml:"github_callback_url"  env:"AUTH_GITHUB_CALLBACK_URL"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from path (if it exists) and the environment.
// Pass an empty path to skip the file and read the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}
	return &cfg, nil
}

// GitHubEnabled reports whether GitHub OAuth sign-in is configured.
func (c *AuthConfig) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}
