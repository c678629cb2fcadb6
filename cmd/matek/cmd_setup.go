package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/game"
	"github.com/felixgeelhaar/matekkaland/internal/player"
)

// cmdInit initializes MatekKaland for first-time use
func cmdInit() error {
	fmt.Println("MatekKaland - First-Time Setup")
	fmt.Println("==============================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Creating data directory... ")
	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Printf("✓ %s\n", dir)

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Print("Creating default configuration... ")
		if err := config.SaveLocalConfig(dir, config.DefaultLocalConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("✓")
	} else {
		fmt.Println("Configuration already exists ✓")
	}

	fmt.Println()
	fmt.Println("Content Provider Setup")
	fmt.Println("----------------------")
	fmt.Println("Questions and encouragement can come from Claude, OpenAI or Ollama.")
	fmt.Println("Without a provider the game uses its bundled question set.")
	fmt.Println()

	cfg, err := config.LoadLocalConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if p := cfg.LLM.Providers["claude"]; p != nil && p.APIKey != "" {
		fmt.Println("Claude API key: already configured ✓")
	} else {
		fmt.Print("Enter Claude API key (or press Enter to skip): ")
		key, _ := reader.ReadString('\n')
		key = strings.TrimSpace(key)
		if key != "" {
			secrets := cfg.Secrets()
			secrets["claude"] = key
			if err := config.SaveSecrets(dir, secrets); err != nil {
				fmt.Printf("  ⚠ Failed to save: %v\n", err)
			} else {
				fmt.Println("  ✓ Saved")
			}
		}
	}

	fmt.Println()
	fmt.Println("Setup Complete!")
	fmt.Println("===============")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. matek doctor   # Verify configuration")
	fmt.Println("  2. matek play     # Play in the terminal")
	fmt.Println("  3. matek start    # Or start the local API daemon")
	fmt.Println()
	fmt.Println("For parents: 'matek mcp' exposes progress to MCP clients.")

	return nil
}

// cmdDoctor checks configuration, storage and providers
func cmdDoctor() error {
	fmt.Println("Checking MatekKaland setup...")

	allGood := true

	fmt.Print("Directory: ")
	dir, err := config.Dir()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Println("✗ not created (run 'matek init')")
		allGood = false
	} else {
		fmt.Printf("✓ %s\n", dir)
	}

	fmt.Print("Config:    ")
	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		fmt.Println("\nSome checks failed. Please fix the issues above.")
		return nil
	}
	fmt.Println("✓ loaded")

	fmt.Print("Storage:   ")
	if err := checkStore(cfg, dir); err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else {
		fmt.Printf("✓ %s (%s)\n", cfg.Storage.Backend, game.DataDir(cfg, dir))
	}

	fmt.Println("\nContent Providers:")
	ready := 0
	for _, name := range slices.Sorted(maps.Keys(cfg.LLM.Providers)) {
		provider := cfg.LLM.Providers[name]
		if !provider.Enabled {
			continue
		}

		fmt.Printf("  %s: ", name)
		switch {
		case name == "ollama":
			if err := checkOllama(provider.URL); err != nil {
				fmt.Printf("✗ %v\n", err)
			} else {
				fmt.Printf("✓ available (model: %s)\n", provider.Model)
				ready++
			}
		case provider.APIKey != "":
			fmt.Printf("✓ configured (model: %s)\n", provider.Model)
			ready++
		default:
			fmt.Printf("✗ no API key (run 'matek provider set-key %s')\n", name)
		}
	}
	if ready == 0 {
		fmt.Println("  ⚠ none ready, the bundled question set will be used")
	}

	fmt.Print("\nDaemon:    ")
	if isRunning(daemonAddr(cfg)) {
		fmt.Println("✓ running")
	} else {
		fmt.Println("- not running (optional, 'matek start')")
	}

	fmt.Println()
	if allGood {
		fmt.Println("All checks passed! ✓")
	} else {
		fmt.Println("Some checks failed. Please fix the issues above.")
	}

	return nil
}

// checkStore opens the configured store and reads the profile.
func checkStore(cfg *config.LocalConfig, dir string) error {
	ctx := context.Background()
	store, closer, err := game.OpenStore(ctx, cfg, dir)
	if err != nil {
		return err
	}
	defer closer.Close()

	if _, err := store.Load(ctx); err != nil && !errors.Is(err, player.ErrNotFound) {
		return err
	}
	return nil
}

func checkOllama(url string) error {
	if url == "" {
		url = "http://localhost:11434"
	}

	resp, err := healthClient.Get(url + "/api/tags")
	if err != nil {
		return fmt.Errorf("not reachable at %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// cmdConfig shows current configuration
func cmdConfig() error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("MatekKaland Configuration")

	fmt.Println("\nDaemon:")
	fmt.Printf("  bind: %s:%d\n", cfg.Daemon.Bind, cfg.Daemon.Port)
	fmt.Printf("  log_level: %s\n", cfg.Daemon.LogLevel)

	fmt.Println("\nContent:")
	fmt.Printf("  default_provider: %s\n", cfg.LLM.DefaultProvider)
	for _, name := range slices.Sorted(maps.Keys(cfg.LLM.Providers)) {
		provider := cfg.LLM.Providers[name]
		if !provider.Enabled {
			continue
		}
		keyStatus := "✗"
		if provider.APIKey != "" || name == "ollama" {
			keyStatus = "✓"
		}
		fmt.Printf("  %s: enabled=%t model=%s key=%s\n", name, provider.Enabled, provider.Model, keyStatus)
	}

	fmt.Println("\nGame:")
	fmt.Printf("  question_count: %d\n", cfg.Game.QuestionCount)
	fmt.Printf("  reveal_delay: %s\n", cfg.Game.RevealDelay)
	fmt.Printf("  question_timeout: %s\n", cfg.Game.QuestionTimeout)
	fmt.Printf("  encouragement_timeout: %s\n", cfg.Game.EncouragementTimeout)
	fmt.Printf("  image_timeout: %s\n", cfg.Game.ImageTimeout)

	fmt.Println("\nStorage:")
	fmt.Printf("  backend: %s\n", cfg.Storage.Backend)
	fmt.Printf("  path: %s\n", game.DataDir(cfg, dir))

	fmt.Printf("\nConfig path: %s\n", filepath.Join(dir, "config.yaml"))

	return nil
}

// cmdProvider manages content provider API keys
func cmdProvider(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Provider management commands:

  matek provider list              List configured providers
  matek provider set-key <name>    Set API key for a provider`)
		return nil
	}

	switch args[0] {
	case "list":
		return cmdProviderList()
	case "set-key":
		if len(args) < 2 {
			return fmt.Errorf("provider name required")
		}
		return cmdProviderSetKey(args[1])
	default:
		return fmt.Errorf("unknown provider command: %s", args[0])
	}
}

func cmdProviderList() error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configured Content Providers:")
	for _, name := range slices.Sorted(maps.Keys(cfg.LLM.Providers)) {
		provider := cfg.LLM.Providers[name]
		status := "disabled"
		if provider.Enabled {
			if provider.APIKey != "" || name == "ollama" {
				status = "ready"
			} else {
				status = "needs API key"
			}
		}

		isDefault := ""
		if name == cfg.LLM.DefaultProvider {
			isDefault = " (default)"
		}

		fmt.Printf("  %s%s\n", name, isDefault)
		fmt.Printf("    status: %s\n", status)
		fmt.Printf("    model:  %s\n", provider.Model)
		if name == "ollama" && provider.URL != "" {
			fmt.Printf("    url:    %s\n", provider.URL)
		}
		fmt.Println()
	}

	return nil
}

func cmdProviderSetKey(provider string) error {
	dir, err := config.EnsureDir()
	if err != nil {
		return err
	}
	cfg, err := config.LoadLocalConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, ok := cfg.LLM.Providers[provider]; !ok {
		return fmt.Errorf("unknown provider: %s (valid: claude, openai, ollama)", provider)
	}

	if provider == "ollama" {
		fmt.Println("Ollama doesn't require an API key.")
		return nil
	}

	fmt.Printf("Enter %s API key: ", provider)
	key, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	// keep the keys of the other providers
	secrets := cfg.Secrets()
	secrets[provider] = key
	if err := config.SaveSecrets(dir, secrets); err != nil {
		return fmt.Errorf("save secrets: %w", err)
	}

	fmt.Printf("✓ API key saved for %s\n", provider)
	fmt.Println("Restart the daemon for changes to take effect.")
	return nil
}
