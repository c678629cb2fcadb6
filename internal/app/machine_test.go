package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
	"github.com/felixgeelhaar/matekkaland/internal/reward"
)

// manualTimer is fired explicitly by the test.
type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) quiz.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// fireLast runs the most recent reveal callback.
func (s *manualScheduler) fireLast(t *testing.T) *manualTimer {
	t.Helper()
	s.mu.Lock()
	if len(s.timers) == 0 {
		s.mu.Unlock()
		t.Fatal("no reveal timer scheduled")
	}
	timer := s.timers[len(s.timers)-1]
	s.mu.Unlock()
	timer.f()
	return timer
}

type mockContent struct {
	mu            sync.Mutex
	questions     []domain.Question
	questionsErr  error
	encouragement string
	edited        domain.ImageData
	editErr       error
	editSources   []domain.ImageData
}

func (c *mockContent) GenerateQuestions(_ context.Context, _ []domain.MathTopic, _ domain.AdventureTheme, _ int) ([]domain.Question, error) {
	return c.questions, c.questionsErr
}

func (c *mockContent) GenerateEncouragement(_ context.Context, name string, _ bool) (string, error) {
	if c.encouragement == "" {
		return "", errors.New("no text")
	}
	return fmt.Sprintf(c.encouragement, name), nil
}

func (c *mockContent) EditImage(_ context.Context, source domain.ImageData, _ string) (domain.ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editSources = append(c.editSources, source)
	return c.edited, c.editErr
}

type failingStore struct {
	player.Store
	err error
}

func (s failingStore) Save(context.Context, *domain.Player) error { return s.err }

func tenQuestions() []domain.Question {
	qs := make([]domain.Question, 10)
	for i := range qs {
		answer := float64(i + 2)
		qs[i] = domain.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Text:          fmt.Sprintf("Mennyi %d + 1?", i+1),
			Options:       []float64{answer - 1, answer, answer + 1, answer + 2},
			CorrectAnswer: answer,
		}
	}
	return qs
}

type harness struct {
	m       *Machine
	store   *player.MemoryStore
	sched   *manualScheduler
	content *mockContent
}

func newHarness(t *testing.T, seed *domain.Player, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:   player.NewMemoryStore(seed),
		sched:   &manualScheduler{},
		content: &mockContent{questions: tenQuestions(), encouragement: "Szuper, %s!"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := quiz.NewEngine(h.content, nil, quiz.WithScheduler(h.sched), quiz.WithLogger(logger))
	opts = append([]Option{WithSpawn(func(f func()) { f() })}, opts...)

	m, err := New(context.Background(), Deps{
		Store:   h.store,
		Engine:  engine,
		Rewards: reward.NewResolver(h.content, rand.New(rand.NewPCG(1, 2)), logger),
		Content: h.content,
		Logger:  logger,
	}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	h.m = m
	return h
}

func seededPlayer(collected ...domain.StickerID) *domain.Player {
	p, _ := player.New("Anna", "🦊", domain.DesignGirl)
	p.Stats = progress.Update(p.Stats, progress.Patch{StickersCollected: collected})
	return p
}

func dispatch(m *Machine, in Intent) Snapshot {
	snap, _ := m.Dispatch(in)
	return snap
}

func mustScreen(t *testing.T, snap Snapshot, want Screen) {
	t.Helper()
	if snap.Screen != want {
		t.Fatalf("Screen = %s, want %s", snap.Screen, want)
	}
}

func TestNew_StartsAtThemeSelectWithoutPlayer(t *testing.T) {
	h := newHarness(t, nil)
	snap := h.m.Snapshot()
	mustScreen(t, snap, ScreenThemeSelect)
	if snap.Player != nil {
		t.Errorf("Player = %+v, want nil", snap.Player)
	}
}

func TestNew_RestoresStoredPlayer(t *testing.T) {
	p := seededPlayer()
	p.DesignTheme = domain.DesignBoy
	p.Stats.StickerOrder = []domain.StickerID{"s2", "s1"}

	h := newHarness(t, p)
	snap := h.m.Snapshot()
	mustScreen(t, snap, ScreenDashboard)
	if snap.Design.Theme != domain.DesignBoy {
		t.Errorf("Design.Theme = %s, want boy", snap.Design.Theme)
	}
	if len(snap.Player.Stats.StickerOrder) != len(catalog.StickerIDs()) {
		t.Errorf("StickerOrder not repaired on load: %v", snap.Player.Stats.StickerOrder)
	}
}

func TestMachine_AnnaScoresNineOfTen(t *testing.T) {
	h := newHarness(t, nil)
	m := h.m

	mustScreen(t, dispatch(m, SelectDesignTheme{Theme: domain.DesignGirl}), ScreenOnboarding)
	snap := dispatch(m, SubmitProfile{Name: "  Anna ", Avatar: "🦊"})
	mustScreen(t, snap, ScreenDashboard)
	if snap.Player.Name != "Anna" {
		t.Errorf("Player.Name = %q, want Anna", snap.Player.Name)
	}
	if h.store.Saves() != 1 {
		t.Errorf("saves after onboarding = %d, want 1", h.store.Saves())
	}

	mustScreen(t, dispatch(m, OpenPlay{}), ScreenAdventureSelect)
	mustScreen(t, dispatch(m, SelectAdventure{Adventure: "space"}), ScreenTopicSelect)
	snap = dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicAddition}})
	mustScreen(t, snap, ScreenQuizActive)

	qs := tenQuestions()
	for i, q := range qs {
		active := m.Snapshot().State.(QuizActive)
		if active.Loading || active.Quiz == nil {
			t.Fatalf("question %d: quiz not loaded: %+v", i, active)
		}
		if active.Quiz.Current.ID != q.ID {
			t.Fatalf("question %d: Current.ID = %s, want %s", i, active.Quiz.Current.ID, q.ID)
		}

		option := q.CorrectAnswer
		if i == len(qs)-1 {
			option = q.Options[0]
		}
		snap = dispatch(m, Answer{Option: option})
		got := snap.State.(QuizActive)
		if got.LastAnswer == nil || got.LastAnswer.IsCorrect != (i < len(qs)-1) {
			t.Fatalf("question %d: LastAnswer = %+v", i, got.LastAnswer)
		}
		h.sched.fireLast(t)
	}

	snap = m.Snapshot()
	mustScreen(t, snap, ScreenResult)
	res := snap.State.(Result)
	if res.Correct != 9 || res.Total != 10 {
		t.Errorf("Result = %d/%d, want 9/10", res.Correct, res.Total)
	}
	if !res.Outcome.Passed || !res.Outcome.RewardEligible || res.Outcome.Perfect {
		t.Errorf("Outcome = %+v", res.Outcome)
	}
	if res.Sticker == nil {
		t.Fatal("no sticker awarded for 90%")
	}
	if res.EncouragementLoading || res.Encouragement != "Szuper, Anna!" {
		t.Errorf("Encouragement = %q (loading %v)", res.Encouragement, res.EncouragementLoading)
	}

	snap = dispatch(m, ReturnHome{})
	mustScreen(t, snap, ScreenDashboard)
	stats := snap.Player.Stats
	if stats.CorrectAnswers != 9 || stats.WrongAnswers != 1 || stats.GamesPlayed != 1 {
		t.Errorf("stats = %d/%d/%d, want 9/1/1", stats.CorrectAnswers, stats.WrongAnswers, stats.GamesPlayed)
	}
	if !stats.HasSticker(*res.Sticker) {
		t.Errorf("sticker %s not collected", *res.Sticker)
	}

	stored, err := h.store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	if stored.Stats.GamesPlayed != 1 || !stored.Stats.HasSticker(*res.Sticker) {
		t.Errorf("stored stats = %+v", stored.Stats)
	}
}

func TestMachine_AbandonCommitsNothing(t *testing.T) {
	h := newHarness(t, seededPlayer())
	m := h.m
	saves := h.store.Saves()

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "dino"})
	dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicMultiplication}})
	dispatch(m, Answer{Option: tenQuestions()[0].CorrectAnswer})

	snap := dispatch(m, Back{})
	mustScreen(t, snap, ScreenDashboard)

	timer := h.sched.fireLast(t)
	if !timer.stopped {
		t.Error("reveal timer not stopped on abandon")
	}
	snap = m.Snapshot()
	mustScreen(t, snap, ScreenDashboard)
	if snap.Player.Stats.GamesPlayed != 0 || snap.Player.Stats.CorrectAnswers != 0 {
		t.Errorf("abandoned quiz changed stats: %+v", snap.Player.Stats)
	}
	if h.store.Saves() != saves {
		t.Errorf("saves = %d, want %d", h.store.Saves(), saves)
	}
}

func TestMachine_StaleQuestionDeliveryDropped(t *testing.T) {
	var queued []func()
	h := newHarness(t, seededPlayer(), WithSpawn(func(f func()) { queued = append(queued, f) }))
	m := h.m

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "ocean"})
	snap := dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicAddition}})
	if !snap.State.(QuizActive).Loading {
		t.Fatal("quiz should be loading until the spawned load runs")
	}
	if len(queued) != 1 {
		t.Fatalf("queued %d tasks, want 1", len(queued))
	}

	dispatch(m, Back{})
	queued[0]()

	mustScreen(t, m.Snapshot(), ScreenDashboard)
}

func TestMachine_FallbackWhenProviderFails(t *testing.T) {
	h := newHarness(t, seededPlayer())
	h.content.questionsErr = errors.New("service down")
	m := h.m

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "zoo"})
	snap := dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicMixed}})

	active := snap.State.(QuizActive)
	if active.Quiz == nil || !active.Quiz.Fallback || active.Quiz.Total != 10 {
		t.Fatalf("Quiz = %+v, want fallback session of 10", active.Quiz)
	}
	if active.Quiz.Current.ID != "f1" {
		t.Errorf("Current.ID = %s, want f1", active.Quiz.Current.ID)
	}
}

func TestMachine_EmptyBatchGoesToResult(t *testing.T) {
	h := newHarness(t, seededPlayer())
	h.content.questions = []domain.Question{}
	m := h.m

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "magic"})
	snap := dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicDivision}})

	mustScreen(t, snap, ScreenResult)
	res := snap.State.(Result)
	if res.Total != 0 || res.Outcome.Passed || res.Sticker != nil {
		t.Errorf("Result = %+v", res)
	}
}

func TestMachine_RevealAdvanceIsVisible(t *testing.T) {
	h := newHarness(t, seededPlayer())
	m := h.m

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "space"})
	dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicAddition}})

	answered := dispatch(m, Answer{Option: tenQuestions()[0].CorrectAnswer})
	if answered.State.(QuizActive).LastAnswer == nil {
		t.Fatal("LastAnswer not set after answering")
	}

	h.sched.fireLast(t)

	snap := m.Snapshot()
	if snap.Version == answered.Version {
		t.Error("moving to the next question did not change the version")
	}
	active := snap.State.(QuizActive)
	if active.LastAnswer != nil {
		t.Errorf("LastAnswer = %+v, want cleared for the new question", active.LastAnswer)
	}
	if active.Quiz.CurrentIndex != 1 || active.Quiz.Revealed {
		t.Errorf("Quiz = %+v, want open question 1", active.Quiz)
	}
}

func TestMachine_PendingAnswerIgnored(t *testing.T) {
	h := newHarness(t, seededPlayer())
	m := h.m

	dispatch(m, OpenPlay{})
	dispatch(m, SelectAdventure{Adventure: "space"})
	dispatch(m, ConfirmTopics{Topics: []domain.MathTopic{domain.TopicAddition}})

	first := dispatch(m, Answer{Option: 1})
	second := dispatch(m, Answer{Option: 2})
	if second.Version != first.Version {
		t.Errorf("second answer changed the version: %d -> %d", first.Version, second.Version)
	}
	if second.State.(QuizActive).Quiz.Score != 0 {
		t.Errorf("Score = %d, want 0", second.State.(QuizActive).Quiz.Score)
	}
}

func TestMachine_InvalidOnboarding(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
	}{
		{"empty name", SubmitProfile{Name: "", Avatar: "🦊"}},
		{"whitespace name", SubmitProfile{Name: "   ", Avatar: "🦊"}},
		{"name too long", SubmitProfile{Name: "Abcdefghijklmnop", Avatar: "🦊"}},
		{"unknown avatar", SubmitProfile{Name: "Anna", Avatar: "🍕"}},
		{"unrelated intent", OpenPlay{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			dispatch(h.m, SelectDesignTheme{Theme: domain.DesignBoy})

			snap := dispatch(h.m, tt.intent)
			mustScreen(t, snap, ScreenOnboarding)
			if snap.Player != nil {
				t.Errorf("Player = %+v, want nil", snap.Player)
			}
			if h.store.Saves() != 0 {
				t.Errorf("saves = %d, want 0", h.store.Saves())
			}
		})
	}
}

func TestMachine_UnknownDesignThemeIgnored(t *testing.T) {
	h := newHarness(t, nil)
	mustScreen(t, dispatch(h.m, SelectDesignTheme{Theme: "neon"}), ScreenThemeSelect)
}

func TestMachine_BackNavigation(t *testing.T) {
	h := newHarness(t, seededPlayer())
	m := h.m

	tests := []struct {
		setup []Intent
		want  Screen
	}{
		{[]Intent{OpenPlay{}}, ScreenDashboard},
		{[]Intent{OpenPlay{}, SelectAdventure{Adventure: "space"}}, ScreenAdventureSelect},
		{[]Intent{OpenAlbum{}}, ScreenDashboard},
		{[]Intent{OpenStats{}}, ScreenDashboard},
	}
	for _, tt := range tests {
		for _, in := range tt.setup {
			dispatch(m, in)
		}
		mustScreen(t, dispatch(m, Back{}), tt.want)
		for m.Snapshot().Screen != ScreenDashboard {
			dispatch(m, Back{})
		}
	}
}

func TestMachine_UnmatchedIntentIsNoop(t *testing.T) {
	h := newHarness(t, seededPlayer())
	before := h.m.Snapshot()

	for _, in := range []Intent{Answer{Option: 3}, ReturnHome{}, AcceptStickerEdit{}, SelectAdventure{Adventure: "space"}, Back{}} {
		after := dispatch(h.m, in)
		if after.Version != before.Version || after.Screen != before.Screen {
			t.Errorf("%s changed the machine: %+v", in.Kind(), after)
		}
	}
}

func TestMachine_SaveErrorRecorded(t *testing.T) {
	h := newHarness(t, nil)
	h.m.store = failingStore{Store: h.store, err: errors.New("disk full")}

	dispatch(h.m, SelectDesignTheme{Theme: domain.DesignGirl})
	snap := dispatch(h.m, SubmitProfile{Name: "Anna", Avatar: "🦄"})

	mustScreen(t, snap, ScreenDashboard)
	if snap.SaveError != "disk full" {
		t.Errorf("SaveError = %q, want disk full", snap.SaveError)
	}
	mustScreen(t, dispatch(h.m, OpenStats{}), ScreenStatsView)
}

func TestMachine_Album(t *testing.T) {
	h := newHarness(t, seededPlayer("s1", "s2"))
	m := h.m
	mustScreen(t, dispatch(m, OpenAlbum{}), ScreenStickerAlbum)
	saves := h.store.Saves()

	snap := dispatch(m, ReorderStickers{From: 0, To: 2})
	if got := snap.Player.Stats.StickerOrder[:3]; got[0] != "s2" || got[2] != "s1" {
		t.Errorf("StickerOrder = %v", snap.Player.Stats.StickerOrder)
	}
	if h.store.Saves() != saves+1 {
		t.Errorf("reorder not persisted")
	}

	before := dispatch(m, ReorderStickers{From: 4, To: 4}).Version
	if after := dispatch(m, ReorderStickers{From: 0, To: 99}).Version; after != before {
		t.Error("out-of-range reorder changed the machine")
	}

	if snap := dispatch(m, SelectAlbumTheme{Theme: "neon"}); snap.Player.Stats.AlbumThemeID != catalog.DefaultAlbumTheme {
		t.Errorf("unknown album theme applied: %s", snap.Player.Stats.AlbumThemeID)
	}
	if snap := dispatch(m, SelectAlbumTheme{Theme: "dark"}); snap.Player.Stats.AlbumThemeID != "dark" {
		t.Errorf("AlbumThemeID = %s, want dark", snap.Player.Stats.AlbumThemeID)
	}

	t.Run("locked sticker", func(t *testing.T) {
		snap := dispatch(m, RequestStickerEdit{Sticker: "s3", Instruction: "legyen kék"})
		if snap.State.(StickerAlbum).Edit != nil {
			t.Error("edit started for a locked sticker")
		}
	})

	t.Run("empty instruction", func(t *testing.T) {
		snap := dispatch(m, RequestStickerEdit{Sticker: "s1", Instruction: "  "})
		if snap.State.(StickerAlbum).Edit != nil {
			t.Error("edit started without an instruction")
		}
	})

	t.Run("accept preview", func(t *testing.T) {
		h.content.edited = "data:image/png;base64,QUJD"
		snap := dispatch(m, RequestStickerEdit{Sticker: "s1", Instruction: "legyen kék"})
		edit := snap.State.(StickerAlbum).Edit
		if edit == nil || edit.Loading || edit.Preview != h.content.edited {
			t.Fatalf("Edit = %+v", edit)
		}
		s1, _ := catalog.Sticker("s1")
		if h.content.editSources[0] != domain.ImageData(s1.URL) {
			t.Errorf("edit source = %q, want catalog URL", h.content.editSources[0])
		}

		snap = dispatch(m, AcceptStickerEdit{})
		if snap.State.(StickerAlbum).Edit != nil {
			t.Error("Edit still set after accept")
		}
		if snap.Player.Stats.CustomStickerImages["s1"] != h.content.edited {
			t.Errorf("CustomStickerImages = %v", snap.Player.Stats.CustomStickerImages)
		}
	})

	t.Run("failed edit cannot be accepted", func(t *testing.T) {
		h.content.edited = ""
		h.content.editErr = errors.New("quota")
		snap := dispatch(m, RequestStickerEdit{Sticker: "s2", Instruction: "csillogjon"})
		edit := snap.State.(StickerAlbum).Edit
		if edit == nil || !edit.Failed || edit.Preview != "" {
			t.Fatalf("Edit = %+v, want failed", edit)
		}

		v := snap.Version
		if dispatch(m, AcceptStickerEdit{}).Version != v {
			t.Error("failed edit was accepted")
		}
		if dispatch(m, DiscardStickerEdit{}).State.(StickerAlbum).Edit != nil {
			t.Error("Edit still set after discard")
		}
		if _, ok := m.Snapshot().Player.Stats.CustomStickerImages["s2"]; ok {
			t.Error("failed edit stored an image")
		}
	})
}

func TestMachine_SnapshotIsImmutable(t *testing.T) {
	h := newHarness(t, seededPlayer("s1"))
	snap := h.m.Snapshot()
	snap.Player.Stats.StickersCollected[0] = "s9"
	snap.Player.Name = "Béla"

	again := h.m.Snapshot()
	if again.Player.Name != "Anna" || again.Player.Stats.StickersCollected[0] != "s1" {
		t.Errorf("Snapshot shares state with the machine: %+v", again.Player)
	}
}
