package sqlite

import "github.com/felixgeelhaar/matekkaland/internal/player"

// Ensure SQLite stores implement the storage interfaces.
var (
	_ player.Store = (*PlayerStore)(nil)
)
