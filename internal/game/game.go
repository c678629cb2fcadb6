// Package game assembles the playable stack from configuration: player
// store, content providers, quiz engine, reward resolver and the state
// machine. The daemon, the terminal client and the MCP server share it.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/matekkaland/internal/app"
	"github.com/felixgeelhaar/matekkaland/internal/audio"
	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/llm"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
	"github.com/felixgeelhaar/matekkaland/internal/reward"
	"github.com/felixgeelhaar/matekkaland/internal/storage"
)

// Options adjust how the stack is built.
type Options struct {
	// Ephemeral keeps the player in memory only.
	Ephemeral bool
	Cues      audio.Cues
	Logger    *slog.Logger
	// Content overrides the configured providers.
	Content content.Provider
}

// Game is an assembled stack.
type Game struct {
	Machine  *app.Machine
	Store    player.Store
	Engine   *quiz.Engine
	Rewards  *reward.Resolver
	Content  content.Provider
	Registry *llm.Registry

	closers []io.Closer
}

// DataDir returns where player data lives for cfg.
func DataDir(cfg *config.LocalConfig, dir string) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return filepath.Join(dir, "data")
}

// OpenStore opens the configured player store without the rest of the
// stack.
func OpenStore(ctx context.Context, cfg *config.LocalConfig, dir string) (player.Store, io.Closer, error) {
	return storage.Open(ctx, cfg.Storage.Backend, DataDir(cfg, dir))
}

// Open builds the stack. Close must be called to release it.
func Open(ctx context.Context, cfg *config.LocalConfig, dir string, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{}

	if opts.Ephemeral {
		g.Store = player.NewMemoryStore(nil)
	} else {
		store, closer, err := OpenStore(ctx, cfg, dir)
		if err != nil {
			return nil, fmt.Errorf("open player store: %w", err)
		}
		g.Store = store
		g.closers = append(g.closers, closer)
	}

	registry, closers := SetupProviders(cfg, logger)
	g.Registry = registry
	g.closers = append(g.closers, closers...)

	g.Content = opts.Content
	if g.Content == nil {
		g.Content = NewContent(registry, logger)
	}

	g.Engine = quiz.NewEngine(g.Content, opts.Cues,
		quiz.WithRevealDelay(cfg.Game.RevealDelay),
		quiz.WithTimeout(cfg.Game.QuestionTimeout),
		quiz.WithLogger(logger),
	)
	g.Rewards = reward.NewResolver(g.Content, nil, logger)

	m, err := app.New(ctx, app.Deps{
		Store:   g.Store,
		Engine:  g.Engine,
		Rewards: g.Rewards,
		Content: g.Content,
		Cues:    opts.Cues,
		Logger:  logger,
	}, app.WithConfig(app.Config{
		QuestionCount:        cfg.Game.QuestionCount,
		EncouragementTimeout: cfg.Game.EncouragementTimeout,
		ImageTimeout:         cfg.Game.ImageTimeout,
	}))
	if err != nil {
		g.Close()
		return nil, err
	}
	g.Machine = m
	return g, nil
}

// Close stops the machine and releases stores and providers.
func (g *Game) Close() error {
	var errs []error
	if g.Machine != nil {
		errs = append(errs, g.Machine.Close())
	}
	for i := len(g.closers) - 1; i >= 0; i-- {
		errs = append(errs, g.closers[i].Close())
	}
	return errors.Join(errs...)
}
