package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
)

// currentPlayer is the row id of the single local profile.
const currentPlayer = "current"

// PlayerStore implements player persistence backed by SQLite.
type PlayerStore struct {
	db *DB
}

// NewPlayerStore creates a new SQLite-backed player store.
func NewPlayerStore(db *DB) *PlayerStore {
	return &PlayerStore{db: db}
}

// Save replaces the stored player and its stats in one transaction.
func (s *PlayerStore) Save(ctx context.Context, p *domain.Player) error {
	if p == nil {
		return errors.New("save player: nil player")
	}

	collected, err := json.Marshal(nonNil(p.Stats.StickersCollected))
	if err != nil {
		return fmt.Errorf("marshal stickers_collected: %w", err)
	}
	order, err := json.Marshal(nonNil(p.Stats.StickerOrder))
	if err != nil {
		return fmt.Errorf("marshal sticker_order: %w", err)
	}
	images := p.Stats.CustomStickerImages
	if images == nil {
		images = map[domain.StickerID]domain.ImageData{}
	}
	custom, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal custom_sticker_images: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (id, name, avatar, design_theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			avatar=excluded.avatar,
			design_theme=excluded.design_theme,
			updated_at=excluded.updated_at`,
		currentPlayer, p.Name, p.Avatar, string(p.DesignTheme), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_stats (player_id, correct_answers, wrong_answers, games_played,
			album_theme_id, stickers_collected, sticker_order, custom_sticker_images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			correct_answers=excluded.correct_answers,
			wrong_answers=excluded.wrong_answers,
			games_played=excluded.games_played,
			album_theme_id=excluded.album_theme_id,
			stickers_collected=excluded.stickers_collected,
			sticker_order=excluded.sticker_order,
			custom_sticker_images=excluded.custom_sticker_images`,
		currentPlayer, p.Stats.CorrectAnswers, p.Stats.WrongAnswers, p.Stats.GamesPlayed,
		string(p.Stats.AlbumThemeID), string(collected), string(order), string(custom),
	)
	if err != nil {
		return fmt.Errorf("upsert player_stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit player: %w", err)
	}
	return nil
}

// Load retrieves the player and applies player.Migrate.
func (s *PlayerStore) Load(ctx context.Context) (*domain.Player, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT p.name, p.avatar, p.design_theme,
			COALESCE(st.correct_answers, 0), COALESCE(st.wrong_answers, 0),
			COALESCE(st.games_played, 0), COALESCE(st.album_theme_id, ''),
			COALESCE(st.stickers_collected, '[]'), COALESCE(st.sticker_order, '[]'),
			COALESCE(st.custom_sticker_images, '{}')
		FROM players p
		LEFT JOIN player_stats st ON st.player_id = p.id
		WHERE p.id = ?`, currentPlayer)

	var (
		p                        domain.Player
		design, album            string
		collected, order, custom string
	)
	err := row.Scan(&p.Name, &p.Avatar, &design,
		&p.Stats.CorrectAnswers, &p.Stats.WrongAnswers, &p.Stats.GamesPlayed, &album,
		&collected, &order, &custom)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, player.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}

	p.DesignTheme = domain.DesignTheme(design)
	p.Stats.AlbumThemeID = domain.AlbumThemeID(album)
	if err := json.Unmarshal([]byte(collected), &p.Stats.StickersCollected); err != nil {
		return nil, fmt.Errorf("unmarshal stickers_collected: %w", err)
	}
	if err := json.Unmarshal([]byte(order), &p.Stats.StickerOrder); err != nil {
		return nil, fmt.Errorf("unmarshal sticker_order: %w", err)
	}
	if err := json.Unmarshal([]byte(custom), &p.Stats.CustomStickerImages); err != nil {
		return nil, fmt.Errorf("unmarshal custom_sticker_images: %w", err)
	}

	return player.Migrate(&p), nil
}

// Delete removes the player; stats follow through the foreign key cascade.
func (s *PlayerStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", currentPlayer); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

func nonNil(ids []domain.StickerID) []domain.StickerID {
	if ids == nil {
		return []domain.StickerID{}
	}
	return ids
}
