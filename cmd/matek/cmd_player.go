package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/game"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
)

// withPlayer opens the store, loads the player and calls fn.
func withPlayer(fn func(ctx context.Context, cfg *config.LocalConfig, store player.Store, p *domain.Player) error) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, closer, err := game.OpenStore(ctx, cfg, dir)
	if err != nil {
		return fmt.Errorf("open player store: %w", err)
	}
	defer closer.Close()

	p, err := store.Load(ctx)
	if errors.Is(err, player.ErrNotFound) {
		return fmt.Errorf("no player yet (run 'matek play' to create one)")
	}
	if err != nil {
		return fmt.Errorf("load player: %w", err)
	}
	return fn(ctx, cfg, store, p)
}

// cmdStats shows the player's statistics
func cmdStats() error {
	return withPlayer(func(_ context.Context, _ *config.LocalConfig, _ player.Store, p *domain.Player) error {
		printStats(os.Stdout, p)
		return nil
	})
}

func printStats(w io.Writer, p *domain.Player) {
	s := progress.Summarize(p.Stats)

	fmt.Fprintf(w, "%s %s statisztikái\n", p.Avatar, p.Name)
	fmt.Fprintln(w, "====================")
	if s.Empty {
		fmt.Fprintln(w, "Még nincs megoldott feladat. Irány játszani!")
		return
	}
	fmt.Fprintf(w, "Játékok:        %d\n", s.GamesPlayed)
	fmt.Fprintf(w, "Helyes válasz:  %d\n", s.CorrectAnswers)
	fmt.Fprintf(w, "Hibás válasz:   %d\n", s.WrongAnswers)
	fmt.Fprintf(w, "Pontosság:      %s %d%%\n", renderProgressBar(s.Accuracy, 20), s.Accuracy)
	fmt.Fprintf(w, "Matricák:       %s %d/%d\n", renderProgressBar(s.AlbumProgress, 20), s.StickersCollected, s.StickersTotal)
}

// cmdAlbum lists or edits the sticker album
func cmdAlbum(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return withPlayer(func(_ context.Context, _ *config.LocalConfig, _ player.Store, p *domain.Player) error {
			printAlbum(os.Stdout, p.Stats)
			return nil
		})
	case "move":
		if len(args) != 3 {
			return fmt.Errorf("usage: matek album move <from> <to>")
		}
		from, err1 := strconv.Atoi(args[1])
		to, err2 := strconv.Atoi(args[2])
		if err := errors.Join(err1, err2); err != nil {
			return fmt.Errorf("positions must be numbers: %w", err)
		}
		return editAlbum(func(stats domain.ProgressStats) (domain.ProgressStats, error) {
			n := len(stats.StickerOrder)
			if from < 1 || from > n || to < 1 || to > n {
				return stats, fmt.Errorf("positions must be between 1 and %d", n)
			}
			return progress.MoveSticker(stats, from-1, to-1), nil
		})
	case "theme":
		if len(args) != 2 {
			return fmt.Errorf("usage: matek album theme <%s>", strings.Join(albumThemeIDs(), "|"))
		}
		return editAlbum(func(stats domain.ProgressStats) (domain.ProgressStats, error) {
			return progress.SetAlbumTheme(stats, domain.AlbumThemeID(args[1]))
		})
	default:
		return fmt.Errorf("unknown album command: %s (valid: list, move, theme)", sub)
	}
}

func editAlbum(fn func(domain.ProgressStats) (domain.ProgressStats, error)) error {
	return withPlayer(func(ctx context.Context, cfg *config.LocalConfig, store player.Store, p *domain.Player) error {
		if err := requireStopped(cfg); err != nil {
			return err
		}
		next, err := fn(p.Stats)
		if err != nil {
			return err
		}
		p.Stats = next
		if err := store.Save(ctx, p); err != nil {
			return fmt.Errorf("save player: %w", err)
		}
		printAlbum(os.Stdout, p.Stats)
		return nil
	})
}

func printAlbum(w io.Writer, stats domain.ProgressStats) {
	theme, _ := catalog.AlbumTheme(stats.AlbumThemeID)
	fmt.Fprintf(w, "Matricaalbum (%s) %s %d%%\n", theme.Name, renderProgressBar(progress.AlbumProgress(stats), 12), progress.AlbumProgress(stats))
	for i, id := range stats.StickerOrder {
		st, _ := catalog.Sticker(id)
		mark := "🔒"
		name := "???"
		if stats.HasSticker(id) {
			mark = "⭐"
			name = st.Name
			if _, ok := stats.CustomStickerImages[id]; ok {
				name += " (egyedi)"
			}
		}
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, mark, name)
	}
}

func albumThemeIDs() []string {
	var ids []string
	for _, t := range catalog.AlbumThemes() {
		ids = append(ids, string(t.ID))
	}
	return ids
}

// cmdReset deletes the player profile
func cmdReset(args []string) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireStopped(cfg); err != nil {
		return err
	}

	if !slices.Contains(args, "--yes") {
		fmt.Print("Delete the player profile and all progress? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" && a != "i" && a != "igen" {
			fmt.Println("Nothing deleted.")
			return nil
		}
	}

	ctx := context.Background()
	store, closer, err := game.OpenStore(ctx, cfg, dir)
	if err != nil {
		return fmt.Errorf("open player store: %w", err)
	}
	defer closer.Close()

	if err := store.Delete(ctx); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	fmt.Println("✓ Player profile deleted")
	return nil
}
