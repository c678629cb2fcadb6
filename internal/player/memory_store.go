package player

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

// MemoryStore keeps the player in memory. It backs tests and the
// --ephemeral mode of the CLI.
type MemoryStore struct {
	mu    sync.Mutex
	p     *domain.Player
	saves int
}

// NewMemoryStore creates a store, optionally seeded with a player.
func NewMemoryStore(seed *domain.Player) *MemoryStore {
	return &MemoryStore{p: seed.Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p == nil {
		return nil, ErrNotFound
	}
	return Migrate(s.p), nil
}

func (s *MemoryStore) Save(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p.Clone()
	s.saves++
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = nil
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ Store = (*MemoryStore)(nil)
