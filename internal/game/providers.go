package game

import (
	"io"
	"log/slog"

	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/llm"
)

// SetupProviders registers every enabled and usable provider, each wrapped
// in the resilience layer. The returned closers release the wrappers.
func SetupProviders(cfg *config.LocalConfig, logger *slog.Logger) (*llm.Registry, []io.Closer) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := llm.NewRegistry()
	var closers []io.Closer

	register := func(p llm.Provider, model string) {
		rcfg := llm.DefaultResilientConfig()
		rcfg.Logger = logger
		rp := llm.NewResilientProvider(p, rcfg)
		registry.Register(p.Name(), rp)
		closers = append(closers, rp)
		logger.Info("registered LLM provider", "name", p.Name(), "model", model)
	}

	for name, providerCfg := range cfg.LLM.Providers {
		if providerCfg == nil || !providerCfg.Enabled {
			continue
		}

		switch name {
		case "claude":
			if providerCfg.APIKey == "" {
				logger.Debug("Claude provider enabled but no API key set")
				continue
			}
			register(llm.NewClaudeProvider(llm.ClaudeConfig{
				APIKey:  providerCfg.APIKey,
				BaseURL: providerCfg.URL,
				Model:   providerCfg.Model,
			}), providerCfg.Model)

		case "openai":
			if providerCfg.APIKey == "" {
				logger.Debug("OpenAI provider enabled but no API key set")
				continue
			}
			register(llm.NewOpenAIProvider(llm.OpenAIConfig{
				APIKey:  providerCfg.APIKey,
				BaseURL: providerCfg.URL,
				Model:   providerCfg.Model,
			}), providerCfg.Model)

		case "ollama":
			register(llm.NewOllamaProvider(llm.OllamaConfig{
				BaseURL: providerCfg.URL,
				Model:   providerCfg.Model,
			}), providerCfg.Model)

		default:
			logger.Warn("unknown LLM provider in config", "name", name)
		}
	}

	if def := cfg.LLM.DefaultProvider; def != "" && def != "auto" {
		if err := registry.SetDefault(def); err != nil {
			logger.Warn("default provider not available, choosing automatically", "provider", def, "error", err)
		}
	}

	return registry, closers
}

type imageCapable interface {
	SupportsImages() bool
}

// NewContent builds the content adapter over the registry's default text
// provider and the first provider that can edit images. Without any
// provider the game runs on its local fallbacks.
func NewContent(registry llm.ProviderRegistry, logger *slog.Logger) content.Provider {
	text, err := registry.Default()
	if err != nil {
		logger.Info("no content provider configured, using local fallbacks")
		return content.Unavailable{}
	}

	opts := []content.Option{content.WithLogger(logger)}
	if editor := imageEditor(registry); editor != nil {
		opts = append(opts, content.WithImageEditor(editor))
	}
	return content.NewLLMProvider(text, opts...)
}

func imageEditor(registry llm.ProviderRegistry) llm.ImageEditor {
	for _, name := range registry.List() {
		p, err := registry.Get(name)
		if err != nil {
			continue
		}
		editor, ok := p.(llm.ImageEditor)
		if !ok {
			continue
		}
		if c, ok := p.(imageCapable); ok && !c.SupportsImages() {
			continue
		}
		return editor
	}
	return nil
}
