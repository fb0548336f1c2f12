// Package server provides configuration helpers that define runtime defaults,
// validation, and transport limits for the RoomChat service.
package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	defaultPort            = ":8080"
	defaultMaxMessageSize  = 4096
	defaultSendBufferSize  = 256
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string        `env:"SERVER_PORT"`
	RawOrigins      string        `env:"ALLOWED_ORIGINS"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogBackend      string        `env:"LOG_BACKEND,default=std"`
	LogFormat       string        `env:"LOG_FORMAT,default=text"`
	Strict          bool          `env:"RELAY_STRICT,default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// AllowedOrigins is parsed from RawOrigins.
	AllowedOrigins []string
}

var (
	configMu      sync.RWMutex
	activeConfig  Config
	activeOrigins originPolicy
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: defaultPort,
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  defaultMaxMessageSize,
		SendBufferSize:  defaultSendBufferSize,
		LogLevel:        "info",
		LogBackend:      "std",
		LogFormat:       "text",
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	policy, origins := newOriginPolicy(cfg.AllowedOrigins)
	cfg.AllowedOrigins = origins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	activeOrigins = policy

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		sanitizeConfig(defaultConfig())
		return
	}

	sanitized := *cfg
	sanitized.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	sanitizeConfig(sanitized)
}

// CurrentConfig returns a copy of the active configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Unset variables keep their default values.
func NewConfigFromEnv() (*Config, error) {
	cfg := defaultConfig()
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	if cfg.RawOrigins != "" {
		cfg.AllowedOrigins = parseOrigins(cfg.RawOrigins)
	}

	return &cfg, nil
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
