package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/felixgeelhaar/matekkaland/internal/audio"
	"github.com/felixgeelhaar/matekkaland/internal/game"
)

// cmdPlay runs the game in the terminal
func cmdPlay(args []string) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ephemeral := slices.Contains(args, "--ephemeral")
	if !ephemeral {
		if err := requireStopped(cfg); err != nil {
			return err
		}
	}

	logger, logClose, err := fileLogger(filepath.Join(dir, "logs", "matek.log"), cfg.Daemon.SlogLevel())
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logClose.Close()

	var player audio.Player = audio.NewBell(os.Stdout)
	if slices.Contains(args, "--quiet") {
		player = audio.Log(logger)
	}
	cues := audio.NewDispatcher(player, 8, logger)
	defer cues.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.Open(ctx, cfg, dir, game.Options{
		Ephemeral: ephemeral,
		Cues:      cues,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("open game: %w", err)
	}
	defer g.Close()

	if ephemeral {
		fmt.Println("(vendég mód: semmi sem mentődik)")
	}
	return newTerminal(g.Machine, os.Stdin, os.Stdout).run(ctx)
}

// fileLogger appends text records to path.
func fileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}
