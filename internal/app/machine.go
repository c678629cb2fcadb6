// Package app is the application state machine. It owns the player and the
// current screen, turns intents into transitions and joins asynchronous
// work (question loading, encouragement, sticker edits) back into the
// screen that started it.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/audio"
	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
	"github.com/felixgeelhaar/matekkaland/internal/reward"
)

// Snapshot is an immutable view of the machine.
type Snapshot struct {
	Screen    Screen                  `json:"screen"`
	State     State                   `json:"state"`
	Player    *domain.Player          `json:"player,omitempty"`
	Design    domain.DesignAttributes `json:"design"`
	SaveError string                  `json:"save_error,omitempty"`
	Version   uint64                  `json:"version"`
}

// Config tunes the machine.
type Config struct {
	QuestionCount        int
	EncouragementTimeout time.Duration
	ImageTimeout         time.Duration
}

// DefaultConfig returns the game defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount:        quiz.DefaultQuestionCount,
		EncouragementTimeout: 10 * time.Second,
		ImageTimeout:         60 * time.Second,
	}
}

// Deps are the machine's collaborators. Store and Engine are required.
type Deps struct {
	Store   player.Store
	Engine  *quiz.Engine
	Rewards *reward.Resolver
	Content content.Provider
	Cues    audio.Cues
	Logger  *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithConfig sets the game configuration.
func WithConfig(cfg Config) Option {
	return func(m *Machine) {
		if cfg.QuestionCount > 0 {
			m.cfg.QuestionCount = cfg.QuestionCount
		}
		if cfg.EncouragementTimeout > 0 {
			m.cfg.EncouragementTimeout = cfg.EncouragementTimeout
		}
		if cfg.ImageTimeout > 0 {
			m.cfg.ImageTimeout = cfg.ImageTimeout
		}
	}
}

// WithSpawn replaces the goroutine launcher used for asynchronous work.
func WithSpawn(spawn func(func())) Option {
	return func(m *Machine) { m.spawn = spawn }
}

// Machine serialises every transition behind one mutex.
type Machine struct {
	store   player.Store
	engine  *quiz.Engine
	rewards *reward.Resolver
	content content.Provider
	cues    audio.Cues
	logger  *slog.Logger
	cfg     Config
	spawn   func(func())

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	player  *domain.Player
	design  domain.DesignTheme
	saveErr string
	token   uint64
	version uint64
	pending []func()
	editSeq uint64
}

// New creates a machine and restores the stored player. A stored player
// starts the machine on the dashboard; otherwise it starts at theme
// selection.
func New(ctx context.Context, deps Deps, opts ...Option) (*Machine, error) {
	if deps.Store == nil {
		return nil, errors.New("app: player store is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("app: quiz engine is required")
	}

	m := &Machine{
		store:   deps.Store,
		engine:  deps.Engine,
		rewards: deps.Rewards,
		content: deps.Content,
		cues:    deps.Cues,
		logger:  deps.Logger,
		cfg:     DefaultConfig(),
		state:   ThemeSelect{},
		design:  domain.DefaultDesignTheme,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.cues == nil {
		m.cues = audio.Noop{}
	}
	if m.content == nil {
		m.content = content.Unavailable{}
	}
	if m.rewards == nil {
		m.rewards = reward.NewResolver(m.content, nil, m.logger)
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.spawn == nil {
		m.spawn = func(f func()) {
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				f()
			}()
		}
	}
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))

	p, err := m.store.Load(ctx)
	switch {
	case err == nil:
		m.player = player.Migrate(p)
		m.design = m.player.DesignTheme
		m.state = Dashboard{}
	case errors.Is(err, player.ErrNotFound):
	default:
		m.logger.Warn("failed to load player, starting fresh", "error", err)
	}
	return m, nil
}

// Close cancels outstanding work, stops a running quiz and waits for
// spawned goroutines.
func (m *Machine) Close() error {
	m.mu.Lock()
	if q, ok := m.state.(QuizActive); ok {
		m.stopQuiz(q)
	}
	m.token++
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	return nil
}

// Snapshot returns the current view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Machine) snapshot() Snapshot {
	return Snapshot{
		Screen:    m.state.Screen(),
		State:     m.state.clone(),
		Player:    m.player.Clone(),
		Design:    catalog.Design(m.design),
		SaveError: m.saveErr,
		Version:   m.version,
	}
}

// Dispatch applies an intent and reports whether it was accepted. Intents
// with no transition in the current state leave it unchanged. Background
// deliveries may land before the returned snapshot is taken, so callers use
// the flag rather than comparing versions.
func (m *Machine) Dispatch(in Intent) (Snapshot, bool) {
	m.mu.Lock()
	accepted := m.apply(in)
	if accepted {
		m.version++
	}
	m.unlockAndRun()

	if accepted {
		if _, ok := in.(Answer); !ok {
			m.cues.Click()
		}
	} else {
		m.logger.Debug("intent ignored", "intent", in.Kind())
	}
	return m.Snapshot(), accepted
}

// apply runs the transition for in. It reports whether anything changed.
func (m *Machine) apply(in Intent) bool {
	switch s := m.state.(type) {
	case ThemeSelect:
		return m.onThemeSelect(in)
	case Onboarding:
		return m.onOnboarding(s, in)
	case Dashboard:
		return m.onDashboard(in)
	case AdventureSelect:
		return m.onAdventureSelect(in)
	case TopicSelect:
		return m.onTopicSelect(s, in)
	case QuizActive:
		return m.onQuizActive(s, in)
	case Result:
		return m.onResult(s, in)
	case StickerAlbum:
		return m.onStickerAlbum(s, in)
	case StatsView:
		if _, ok := in.(Back); ok {
			m.enter(Dashboard{})
			return true
		}
	}
	return false
}

// enter switches screens. The token change makes deliveries addressed to
// the previous screen stale.
func (m *Machine) enter(s State) {
	m.token++
	m.state = s
}

// later queues f to run once the lock is released.
func (m *Machine) later(f func()) {
	m.pending = append(m.pending, f)
}

func (m *Machine) unlockAndRun() {
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, f := range pending {
		m.spawn(f)
	}
}

// deliver applies the result of asynchronous work if the screen that
// started it is still current. It reports whether fn ran.
func (m *Machine) deliver(token uint64, fn func()) bool {
	m.mu.Lock()
	if token != m.token {
		m.mu.Unlock()
		return false
	}
	fn()
	m.version++
	m.unlockAndRun()
	return true
}

func (m *Machine) save() {
	if m.player == nil {
		return
	}
	if err := m.store.Save(m.ctx, m.player); err != nil {
		m.logger.Warn("failed to save player", "error", err)
		m.saveErr = err.Error()
		return
	}
	m.saveErr = ""
}

func (m *Machine) onThemeSelect(in Intent) bool {
	sel, ok := in.(SelectDesignTheme)
	if !ok || !sel.Theme.Valid() {
		return false
	}
	m.design = sel.Theme
	m.enter(Onboarding{Design: sel.Theme})
	return true
}

func (m *Machine) onOnboarding(s Onboarding, in Intent) bool {
	sub, ok := in.(SubmitProfile)
	if !ok {
		return false
	}
	p, err := player.New(sub.Name, sub.Avatar, s.Design)
	if err != nil {
		m.logger.Debug("profile rejected", "error", err)
		return false
	}
	m.player = p
	m.save()
	m.enter(Dashboard{})
	return true
}

func (m *Machine) onDashboard(in Intent) bool {
	switch in.(type) {
	case OpenPlay:
		m.enter(AdventureSelect{})
	case OpenAlbum:
		m.enter(StickerAlbum{})
	case OpenStats:
		m.enter(StatsView{})
	default:
		return false
	}
	return true
}

func (m *Machine) onAdventureSelect(in Intent) bool {
	switch in := in.(type) {
	case SelectAdventure:
		adv, ok := catalog.Adventure(in.Adventure)
		if !ok {
			m.logger.Debug("unknown adventure", "adventure", in.Adventure)
			return false
		}
		m.enter(TopicSelect{Adventure: adv})
	case Back:
		m.enter(Dashboard{})
	default:
		return false
	}
	return true
}

func (m *Machine) onTopicSelect(s TopicSelect, in Intent) bool {
	switch in := in.(type) {
	case ConfirmTopics:
		topics := validTopics(in.Topics)
		if len(topics) == 0 {
			return false
		}
		m.startQuiz(s.Adventure, topics)
	case Back:
		m.enter(AdventureSelect{})
	default:
		return false
	}
	return true
}

// validTopics deduplicates topics and drops unknown ones.
func validTopics(in []domain.MathTopic) []domain.MathTopic {
	out := make([]domain.MathTopic, 0, len(in))
	seen := make(map[domain.MathTopic]bool, len(in))
	for _, t := range in {
		if _, ok := catalog.Topic(t); !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (m *Machine) startQuiz(adv domain.AdventureTheme, topics []domain.MathTopic) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.enter(QuizActive{Adventure: adv, Topics: topics, Loading: true, cancel: cancel})
	token := m.token
	count := m.cfg.QuestionCount

	m.later(func() {
		defer cancel()
		sess, err := m.engine.Start(ctx, topics, adv, count)
		if err != nil {
			m.logger.Error("quiz start failed", "error", err)
			m.deliver(token, func() { m.enter(Dashboard{}) })
			return
		}
		ok := m.deliver(token, func() {
			sess.OnAdvance(func(int) {
				m.deliver(token, func() {
					q := m.state.(QuizActive)
					q.LastAnswer = nil
					m.state = q
				})
			})
			q := m.state.(QuizActive)
			q.Loading = false
			q.session = sess
			m.state = q
			if sess.Completed() {
				m.finish(sess.Result())
			}
		})
		if !ok {
			sess.Abandon()
		}
	})
}

func (m *Machine) stopQuiz(q QuizActive) {
	if q.cancel != nil {
		q.cancel()
	}
	if q.session != nil {
		q.session.Abandon()
	}
}

func (m *Machine) onQuizActive(s QuizActive, in Intent) bool {
	switch in := in.(type) {
	case Answer:
		if s.Loading || s.session == nil {
			return false
		}
		token := m.token
		out, ok := s.session.Submit(in.Option, func(c quiz.Completion) {
			m.deliver(token, func() { m.finish(c) })
		})
		if !ok {
			return false
		}
		s.LastAnswer = &out
		m.state = s
	case Back:
		m.stopQuiz(s)
		m.enter(Dashboard{})
	default:
		return false
	}
	return true
}

// finish moves a completed quiz to the result screen and requests the
// encouragement text.
func (m *Machine) finish(c quiz.Completion) {
	outcome := reward.Evaluate(c.Correct, c.Total)
	res := Result{
		Correct:              c.Correct,
		Total:                c.Total,
		Outcome:              outcome,
		EncouragementLoading: true,
	}
	if outcome.RewardEligible {
		id := m.rewards.Draw()
		res.Sticker = &id
	}
	m.enter(res)
	m.logger.Info("quiz finished", "correct", c.Correct, "total", c.Total, "sticker", res.Sticker != nil)

	token := m.token
	name := ""
	if m.player != nil {
		name = m.player.Name
	}
	m.later(func() {
		ctx, cancel := context.WithTimeout(m.ctx, m.cfg.EncouragementTimeout)
		defer cancel()
		text := m.rewards.Encouragement(ctx, name, outcome.Passed)
		m.deliver(token, func() {
			r := m.state.(Result)
			r.Encouragement = text
			r.EncouragementLoading = false
			m.state = r
		})
	})
}

func (m *Machine) onResult(s Result, in Intent) bool {
	if _, ok := in.(ReturnHome); !ok {
		return false
	}
	if m.player != nil {
		m.player.Stats = progress.RecordSession(m.player.Stats, s.Correct, s.Total, s.Sticker)
		m.save()
	}
	m.enter(Dashboard{})
	return true
}
