package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/matekkaland/internal/game"
	mcpserver "github.com/felixgeelhaar/matekkaland/internal/mcp"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
)

// cmdMCP serves the parent-facing MCP tools over stdio or HTTP
func cmdMCP(args []string) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closer, err := game.OpenStore(ctx, cfg, dir)
	if err != nil {
		return fmt.Errorf("open player store: %w", err)
	}
	defer closer.Close()

	registry, closers := game.SetupProviders(cfg, logger)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	engine := quiz.NewEngine(game.NewContent(registry, logger), nil,
		quiz.WithTimeout(cfg.Game.QuestionTimeout),
		quiz.WithLogger(logger),
	)

	srv := mcpserver.NewServer(mcpserver.Config{
		Store:     store,
		Questions: engine,
		Version:   Version,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if len(args) == 2 && args[0] == "--http" {
		fmt.Fprintf(os.Stderr, "MCP server listening on %s\n", args[1])
		return srv.ServeHTTP(ctx, args[1])
	}
	return srv.ServeStdio(ctx)
}
