package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/storage/local"
)

const (
	collection = "player"
	recordID   = "current"
)

// FileStore keeps the player as a JSON document on disk.
type FileStore struct {
	store *local.Store
}

// NewFileStore creates a file-backed player store rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	store, err := local.NewStore(basePath)
	if err != nil {
		return nil, err
	}
	return &FileStore{store: store}, nil
}

// Path returns the file holding the player profile.
func (s *FileStore) Path() string {
	return s.store.Path(collection, recordID)
}

// Load reads the stored player and applies Migrate.
func (s *FileStore) Load(ctx context.Context) (*domain.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p domain.Player
	if err := s.store.Load(collection, recordID, &p); err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load player: %w", err)
	}
	return Migrate(&p), nil
}

// Save replaces the stored player.
func (s *FileStore) Save(ctx context.Context, p *domain.Player) error {
	if p == nil {
		return errors.New("save player: nil player")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Save(collection, recordID, p); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// Delete removes the stored player. Deleting an absent player is not an error.
func (s *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Delete(collection, recordID); err != nil && !errors.Is(err, local.ErrNotFound) {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
