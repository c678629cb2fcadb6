// Package storage selects the player store backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/storage/sqlite"
)

// Backend names accepted in configuration.
const (
	BackendJSON   = config.BackendJSON
	BackendSQLite = config.BackendSQLite
)

// Open returns the player store for backend rooted at dir. The returned
// closer releases backend resources and is never nil.
func Open(ctx context.Context, backend, dir string) (player.Store, io.Closer, error) {
	switch backend {
	case "", BackendJSON:
		s, err := player.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil

	case BackendSQLite:
		db, err := sqlite.Open(filepath.Join(dir, "matek.db"))
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewPlayerStore(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
