package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDir(t *testing.T) {
	t.Setenv("MATEK_DATA_DIR", "")
	t.Setenv("HOME", "/home/anna")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if dir != filepath.Join("/home/anna", ".matekkaland") {
		t.Errorf("Dir() = %q, want ~/.matekkaland", dir)
	}

	t.Setenv("MATEK_DATA_DIR", "/srv/matek")
	if dir, _ := Dir(); dir != "/srv/matek" {
		t.Errorf("Dir() = %q, want /srv/matek", dir)
	}
}

func TestEnsureDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("MATEK_DATA_DIR", filepath.Join(tmp, "matek"))

	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	for _, sub := range []string{"logs", "data"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("EnsureDir() should create %s: %v", sub, err)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.Daemon.Port != 7433 || cfg.Daemon.Bind != "127.0.0.1" || cfg.Daemon.LogLevel != "info" {
		t.Errorf("Daemon = %+v", cfg.Daemon)
	}
	if cfg.Game.QuestionCount != 10 {
		t.Errorf("Game.QuestionCount = %d, want 10", cfg.Game.QuestionCount)
	}
	if cfg.Game.RevealDelay != 1500*time.Millisecond {
		t.Errorf("Game.RevealDelay = %v, want 1.5s", cfg.Game.RevealDelay)
	}
	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("Storage.Backend = %q, want json", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestDefaultLocalConfig_ProviderDetails(t *testing.T) {
	cfg := DefaultLocalConfig()

	tests := []struct {
		name    string
		enabled bool
		model   string
		url     string
	}{
		{"claude", true, "claude-sonnet-4-20250514", ""},
		{"openai", false, "gpt-4o-mini", ""},
		{"ollama", false, "llama3.2", "http://localhost:11434"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, ok := cfg.LLM.Providers[tt.name]
			if !ok {
				t.Fatalf("Provider %q not found", tt.name)
			}
			if provider.Enabled != tt.enabled {
				t.Errorf("Provider.Enabled = %v, want %v", provider.Enabled, tt.enabled)
			}
			if provider.Model != tt.model {
				t.Errorf("Provider.Model = %q, want %q", provider.Model, tt.model)
			}
			if provider.URL != tt.url {
				t.Errorf("Provider.URL = %q, want %q", provider.URL, tt.url)
			}
		})
	}
}

func TestLoadLocalConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadLocalConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Daemon.Port != 7433 {
		t.Errorf("Daemon.Port = %d, want default", cfg.Daemon.Port)
	}
}

func TestLoadLocalConfig_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `daemon:
  port: 9000
llm:
  default_provider: ollama
game:
  question_count: 5
  reveal_delay: 2s
storage:
  backend: sqlite
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadLocalConfig(dir)
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Daemon.Port != 9000 {
		t.Errorf("Daemon.Port = %d, want 9000", cfg.Daemon.Port)
	}
	if cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon.Bind = %q, want default kept", cfg.Daemon.Bind)
	}
	if cfg.LLM.DefaultProvider != "ollama" {
		t.Errorf("LLM.DefaultProvider = %q, want ollama", cfg.LLM.DefaultProvider)
	}
	if cfg.Game.QuestionCount != 5 || cfg.Game.RevealDelay != 2*time.Second {
		t.Errorf("Game = %+v", cfg.Game)
	}
	if cfg.Game.QuestionTimeout != 20*time.Second {
		t.Errorf("Game.QuestionTimeout = %v, want default kept", cfg.Game.QuestionTimeout)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
}

func TestLoadLocalConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("daemon: [port"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadLocalConfig(dir); err == nil {
		t.Error("LoadLocalConfig() should error on invalid YAML")
	}
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	content := `providers:
  claude:
    api_key: sk-claude-test-key
  unknown_provider:
    api_key: ignored
`
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}

	cfg := DefaultLocalConfig()
	if err := loadSecrets(dir, cfg); err != nil {
		t.Fatalf("loadSecrets() error = %v", err)
	}
	if cfg.LLM.Providers["claude"].APIKey != "sk-claude-test-key" {
		t.Errorf("claude APIKey = %q", cfg.LLM.Providers["claude"].APIKey)
	}
	if _, ok := cfg.LLM.Providers["unknown_provider"]; ok {
		t.Error("unknown provider should be ignored")
	}
}

func TestLoadSecrets_NoSecretsFile(t *testing.T) {
	if err := loadSecrets(t.TempDir(), DefaultLocalConfig()); err != nil {
		t.Errorf("loadSecrets() should not error when secrets file is missing: %v", err)
	}
}

func TestSaveLocalConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := DefaultLocalConfig()
	cfg.Daemon.Port = 8888
	cfg.Game.RevealDelay = 3 * time.Second

	if err := SaveLocalConfig(dir, cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	var loaded LocalConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parse saved config: %v", err)
	}
	if loaded.Daemon.Port != 8888 {
		t.Errorf("saved Daemon.Port = %d, want 8888", loaded.Daemon.Port)
	}
	if loaded.Game.RevealDelay != 3*time.Second {
		t.Errorf("saved Game.RevealDelay = %v, want 3s", loaded.Game.RevealDelay)
	}
}

func TestSaveSecrets(t *testing.T) {
	dir := t.TempDir()

	if err := SaveSecrets(dir, map[string]string{"openai": "sk-openai-secret"}); err != nil {
		t.Fatalf("SaveSecrets() error = %v", err)
	}

	path := filepath.Join(dir, "secrets.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat secrets: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("secrets permissions = %o, want 0600", info.Mode().Perm())
	}

	cfg, err := LoadLocalConfig(dir)
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.LLM.Providers["openai"].APIKey != "sk-openai-secret" {
		t.Errorf("openai APIKey = %q after round trip", cfg.LLM.Providers["openai"].APIKey)
	}
	if got := cfg.Secrets(); len(got) != 1 || got["openai"] != "sk-openai-secret" {
		t.Errorf("Secrets() = %v", got)
	}
}
