// Package quiz runs a single quiz playthrough: it loads a question batch,
// tracks the current question and score, and paces advancement with a
// cancellable reveal timer.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/audio"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

var (
	ErrNoTopics     = errors.New("at least one topic is required")
	ErrInvalidCount = errors.New("question count must be positive")
)

// Defaults.
const (
	DefaultQuestionCount = 10
	DefaultRevealDelay   = 1500 * time.Millisecond
	DefaultTimeout       = 20 * time.Second
)

// QuestionSource produces question batches. content.Provider satisfies it.
type QuestionSource interface {
	GenerateQuestions(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, error)
}

// Engine starts sessions.
type Engine struct {
	source      QuestionSource
	cues        audio.Cues
	scheduler   Scheduler
	revealDelay time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithRevealDelay sets how long an answer stays revealed.
func WithRevealDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.revealDelay = d
		}
	}
}

// WithTimeout bounds question generation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. A nil cues value disables audio.
func NewEngine(source QuestionSource, cues audio.Cues, opts ...Option) *Engine {
	if cues == nil {
		cues = audio.Noop{}
	}
	e := &Engine{
		source:      source,
		cues:        cues,
		scheduler:   RealScheduler,
		revealDelay: DefaultRevealDelay,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start loads questions and returns a new session. Generation failures of
// any kind fall back to the bundled question set, so the only errors are
// argument errors.
func (e *Engine) Start(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) (*Session, error) {
	questions, fallback, err := e.Questions(ctx, topics, theme, count)
	if err != nil {
		return nil, err
	}
	return newSession(e, topics, theme, questions, fallback), nil
}

// Questions loads a batch without starting a session. The boolean reports
// whether the fallback set was used.
func (e *Engine) Questions(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, bool, error) {
	if len(topics) == 0 {
		return nil, false, ErrNoTopics
	}
	if count <= 0 {
		return nil, false, ErrInvalidCount
	}
	questions, fallback := e.load(ctx, topics, theme, count)
	return questions, fallback, nil
}

// load returns the usable generated questions, or the fallback set.
func (e *Engine) load(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, bool) {
	if e.source == nil {
		return FallbackQuestions(), true
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	generated, err := e.generate(ctx, topics, theme, count)
	if err != nil {
		e.logger.Warn("question generation failed, using fallback set", "error", err, "theme", theme.ID)
		return FallbackQuestions(), true
	}

	// An empty batch is a legitimate answer and yields an empty session.
	if len(generated) == 0 {
		return nil, false
	}

	valid := make([]domain.Question, 0, len(generated))
	for _, q := range generated {
		if err := q.Validate(); err != nil {
			e.logger.Debug("dropping invalid question", "id", q.ID, "error", err)
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		e.logger.Warn("no usable generated questions, using fallback set", "received", len(generated))
		return FallbackQuestions(), true
	}
	if len(valid) > count {
		valid = valid[:count]
	}
	return valid, false
}

// generate calls the source and turns a panic into an error. It returns
// when ctx ends even if the source ignores it; the abandoned call finishes
// in the background and its result is discarded.
func (e *Engine) generate(ctx context.Context, topics []domain.MathTopic, theme domain.AdventureTheme, count int) ([]domain.Question, error) {
	type result struct {
		qs  []domain.Question
		err error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r = result{err: fmt.Errorf("question source panicked: %v", p)}
			}
			done <- r
		}()
		r.qs, r.err = e.source.GenerateQuestions(ctx, topics, theme, count)
	}()

	select {
	case r := <-done:
		return r.qs, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("question generation: %w", ctx.Err())
	}
}
