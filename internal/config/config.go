// Package config loads the bot configuration from a YAML file with
// strict field validation, so a typoed key fails startup instead of
// silently applying a default.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable that overrides the configured
// bot token. Keeps the secret out of config files checked into backups.
const TokenEnv = "LEDGERBOT_TOKEN"

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full bot configuration.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Database Database `yaml:"database"`
	Session  Session  `yaml:"session"`
}

// Telegram configures the transport.
type Telegram struct {
	// Token is the bot API token. Overridden by TokenEnv when set.
	Token string `yaml:"token,omitempty"`
}

// Database configures the SQLite ledger.
type Database struct {
	Path string `yaml:"path"`
}

// Duration accepts Go duration strings ("12h", "30m") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Session configures the conversation state store.
type Session struct {
	// Backend is "memory" or "redis".
	Backend string `yaml:"backend"`

	// TTL expires abandoned conversations. Zero applies the store's
	// default of 24 hours.
	TTL Duration `yaml:"ttl,omitempty"`

	Redis Redis `yaml:"redis,omitempty"`
}

// Redis configures the Redis session backend.
type Redis struct {
	Addr   string `yaml:"addr,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// Load reads, parses and validates a config file. The bot token may
// come from the TokenEnv environment variable instead of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if env := os.Getenv(TokenEnv); env != "" {
		cfg.Telegram.Token = env
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendMemory
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (or set %s)", TokenEnv)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch cfg.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Session.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q",
			BackendMemory, BackendRedis, cfg.Session.Backend)
	}
	if cfg.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	return nil
}
