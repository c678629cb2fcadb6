// Package reward decides what a finished quiz earns.
package reward

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

// Thresholds on the share of correct answers.
const (
	PassThreshold   = 0.6 // exclusive
	RewardThreshold = 0.8 // inclusive
)

// Fallback encouragement texts.
const (
	FallbackPraise    = "Ügyes vagy!"
	FallbackEncourage = "Gyakorlat teszi a mestert!"
)

// Outcome is the evaluation of a final score.
type Outcome struct {
	Passed         bool `json:"passed"`
	RewardEligible bool `json:"reward_eligible"`
	Perfect        bool `json:"perfect"`
}

// Evaluate grades correct out of total. A zero total earns nothing.
func Evaluate(correct, total int) Outcome {
	if total <= 0 {
		return Outcome{}
	}
	ratio := float64(correct) / float64(total)
	return Outcome{
		Passed:         ratio > PassThreshold,
		RewardEligible: ratio >= RewardThreshold,
		Perfect:        correct == total,
	}
}

// Encourager produces encouragement text. content.Provider satisfies it.
type Encourager interface {
	GenerateEncouragement(ctx context.Context, name string, succeeded bool) (string, error)
}

// Resolver draws stickers and fetches encouragement.
type Resolver struct {
	encourager Encourager
	logger     *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver. A nil rng uses a randomly seeded source.
func NewResolver(e Encourager, rng *rand.Rand, logger *slog.Logger) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{encourager: e, rng: rng, logger: logger}
}

// Draw picks a sticker uniformly from the full catalog. Already collected
// stickers are not excluded; the progress model set-inserts.
func (r *Resolver) Draw() domain.StickerID {
	ids := catalog.StickerIDs()
	r.mu.Lock()
	i := r.rng.IntN(len(ids))
	r.mu.Unlock()
	return ids[i]
}

// Encouragement returns generated text, or the fixed fallback for passed
// when generation fails or returns nothing.
func (r *Resolver) Encouragement(ctx context.Context, name string, passed bool) string {
	if r.encourager != nil {
		text, err := r.encourager.GenerateEncouragement(ctx, name, passed)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			r.logger.Warn("encouragement generation failed, using fallback", "error", err)
		}
	}
	return Fallback(passed)
}

// Fallback returns the fixed encouragement for passed.
func Fallback(passed bool) string {
	if passed {
		return FallbackPraise
	}
	return FallbackEncourage
}
