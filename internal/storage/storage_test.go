package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
)

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{"", BackendJSON, BackendSQLite} {
		t.Run("backend="+backend, func(t *testing.T) {
			ctx := context.Background()
			store, closer, err := Open(ctx, backend, t.TempDir())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer closer.Close()

			if _, err := store.Load(ctx); !errors.Is(err, player.ErrNotFound) {
				t.Fatalf("Load() error = %v, want ErrNotFound", err)
			}

			p, _ := player.New("Anna", "🦊", domain.DesignGirl)
			if err := store.Save(ctx, p); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil || got.Name != "Anna" {
				t.Errorf("Load() = %+v, %v", got, err)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, _, err := Open(context.Background(), "postgres", t.TempDir()); err == nil {
		t.Error("Open() with unknown backend should fail")
	}
}
