// Package player persists the single local player profile.
package player

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
)

// ErrNotFound is returned by Load when no player has been saved yet.
var ErrNotFound = errors.New("player not found")

// Store is a whole-object mirror of the in-memory player. Save replaces the
// stored profile atomically; there is no partial update.
type Store interface {
	Load(ctx context.Context) (*domain.Player, error)
	Save(ctx context.Context, p *domain.Player) error
	Delete(ctx context.Context) error
}

// Migrate fills in fields that older profiles lack and repairs the
// progress invariants. The input is not modified.
func Migrate(p *domain.Player) *domain.Player {
	if p == nil {
		return nil
	}
	out := p.Clone()
	if !out.DesignTheme.Valid() {
		out.DesignTheme = domain.DefaultDesignTheme
	}
	out.Stats = progress.Normalize(out.Stats)
	return out
}

// New creates a player from onboarding input with initial stats.
func New(name, avatar string, design domain.DesignTheme) (*domain.Player, error) {
	n, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if !catalog.IsAvatar(avatar) {
		return nil, domain.ErrInvalidAvatar
	}
	if !design.Valid() {
		return nil, domain.ErrInvalidDesign
	}
	return &domain.Player{
		Name:        n,
		Avatar:      avatar,
		DesignTheme: design,
		Stats:       progress.Initial(),
	}, nil
}
