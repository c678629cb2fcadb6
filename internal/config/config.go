// Package config loads the local configuration: config.yaml and
// secrets.yaml in the data directory, overridden by MATEK_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Env holds the environment overrides. Unset variables leave the file
// configuration untouched.
type Env struct {
	LLMProvider    string `env:"MATEK_LLM_PROVIDER"`
	StorageBackend string `env:"MATEK_STORAGE_BACKEND"`
	QuestionCount  int    `env:"MATEK_QUESTION_COUNT"`
	LogLevel       string `env:"MATEK_LOG_LEVEL"`
	Port           int    `env:"MATEK_PORT"`
	ClaudeAPIKey   string `env:"MATEK_CLAUDE_API_KEY"`
	OpenAIAPIKey   string `env:"MATEK_OPENAI_API_KEY"`
	OllamaURL      string `env:"MATEK_OLLAMA_URL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Apply copies the set overrides onto cfg.
func (e Env) Apply(cfg *LocalConfig) {
	if e.LLMProvider != "" {
		cfg.LLM.DefaultProvider = e.LLMProvider
	}
	if e.StorageBackend != "" {
		cfg.Storage.Backend = e.StorageBackend
	}
	if e.QuestionCount > 0 {
		cfg.Game.QuestionCount = e.QuestionCount
	}
	if e.LogLevel != "" {
		cfg.Daemon.LogLevel = e.LogLevel
	}
	if e.Port > 0 {
		cfg.Daemon.Port = e.Port
	}
	e.applyProvider(cfg, "claude", func(p *ProviderConfig) bool {
		if e.ClaudeAPIKey == "" {
			return false
		}
		p.APIKey = e.ClaudeAPIKey
		return true
	})
	e.applyProvider(cfg, "openai", func(p *ProviderConfig) bool {
		if e.OpenAIAPIKey == "" {
			return false
		}
		p.APIKey = e.OpenAIAPIKey
		return true
	})
	e.applyProvider(cfg, "ollama", func(p *ProviderConfig) bool {
		if e.OllamaURL == "" {
			return false
		}
		p.URL = e.OllamaURL
		return true
	})
}

// applyProvider runs set on the named provider, creating it if needed. A
// provider given credentials through the environment is enabled.
func (e Env) applyProvider(cfg *LocalConfig, name string, set func(*ProviderConfig) bool) {
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]*ProviderConfig)
	}
	p, ok := cfg.LLM.Providers[name]
	if !ok || p == nil {
		p = &ProviderConfig{}
	}
	if set(p) {
		p.Enabled = true
		cfg.LLM.Providers[name] = p
	}
}

// Load reads the configuration from dir and applies environment overrides.
func Load(dir string) (*LocalConfig, error) {
	cfg, err := LoadLocalConfig(dir)
	if err != nil {
		return nil, err
	}

	var e Env
	if err := ParseEnv(&e); err != nil {
		return nil, err
	}
	e.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *LocalConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendJSON, BackendSQLite)
	}
	if c.Game.QuestionCount <= 0 {
		return fmt.Errorf("game.question_count must be positive, got %d", c.Game.QuestionCount)
	}
	if c.Daemon.Port <= 0 || c.Daemon.Port > 65535 {
		return fmt.Errorf("daemon.port out of range: %d", c.Daemon.Port)
	}
	switch strings.ToLower(c.Daemon.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Daemon.LogLevel)
	}
	return nil
}

// SlogLevel maps log_level to a slog level. Unknown values mean info.
func (d DaemonConfig) SlogLevel() slog.Level {
	switch strings.ToLower(d.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
