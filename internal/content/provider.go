// Package content is the boundary to generated content: quiz questions,
// encouragement text and sticker image edits. Every call may fail; callers
// substitute their own fallback.
package content

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

var (
	ErrUnavailable      = errors.New("content provider unavailable")
	ErrEmptyResponse    = errors.New("empty response from content provider")
	ErrMalformed        = errors.New("malformed content payload")
	ErrEmptyInstruction = errors.New("edit instruction must not be empty")
	ErrInvalidImage     = errors.New("invalid source image")
)

// Provider generates content for the game.
type Provider interface {
	GenerateQuestions(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, error)
	GenerateEncouragement(ctx context.Context, name string, succeeded bool) (string, error)
	EditImage(ctx context.Context, source domain.ImageData, instruction string) (domain.ImageData, error)
}

// EditOrKeep runs an image edit and returns the source unchanged on any
// failure. Edits are best effort and never destructive. Failures are logged
// to logger when it is non-nil.
func EditOrKeep(ctx context.Context, p Provider, source domain.ImageData, instruction string, logger *slog.Logger) domain.ImageData {
	if p == nil {
		return source
	}
	edited, err := p.EditImage(ctx, source, instruction)
	if err != nil || edited == "" {
		if err != nil && logger != nil {
			logger.Warn("sticker edit failed, keeping source", "error", err)
		}
		return source
	}
	return edited
}

// Unavailable is the provider used when no generative backend is configured.
// Every call fails, so the game runs on its local fallbacks.
type Unavailable struct{}

func (Unavailable) GenerateQuestions(context.Context, []domain.MathTopic, domain.AdventureTheme, int) ([]domain.Question, error) {
	return nil, ErrUnavailable
}

func (Unavailable) GenerateEncouragement(context.Context, string, bool) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) EditImage(context.Context, domain.ImageData, string) (domain.ImageData, error) {
	return "", ErrUnavailable
}

var _ Provider = Unavailable{}
