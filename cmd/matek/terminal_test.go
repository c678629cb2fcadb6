package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/app"
	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/content"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/player"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
	"github.com/felixgeelhaar/matekkaland/internal/reward"
)

type fixedSource struct {
	questions []domain.Question
}

func (f fixedSource) GenerateQuestions(context.Context, []domain.MathTopic, domain.AdventureTheme, int) ([]domain.Question, error) {
	return f.questions, nil
}

func twoQuestions() []domain.Question {
	q := func(id string) domain.Question {
		return domain.Question{ID: id, Text: "1 + 1 = ?", Options: []float64{1, 2, 3, 4}, CorrectAnswer: 2}
	}
	return []domain.Question{q("a"), q("b")}
}

func newTestMachine(t *testing.T, store player.Store) *app.Machine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := quiz.NewEngine(fixedSource{questions: twoQuestions()}, nil,
		quiz.WithRevealDelay(time.Millisecond),
		quiz.WithLogger(logger),
	)
	m, err := app.New(context.Background(), app.Deps{
		Store:   store,
		Engine:  engine,
		Rewards: reward.NewResolver(content.Unavailable{}, nil, logger),
		Content: content.Unavailable{},
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestTerminal_PlaysARound(t *testing.T) {
	store := player.NewMemoryStore(nil)
	m := newTestMachine(t, store)

	input := strings.Join([]string{
		"2",      // girl design
		"Anna 1", // name and first avatar
		"1",      // play
		"1",      // first adventure
		"1 2",    // addition and subtraction
		"2",      // correct
		"3",      // wrong
		"",       // back home from the result
		"q",
	}, "\n") + "\n"

	var out bytes.Buffer
	term := newTerminal(m, strings.NewReader(input), &out)
	term.poll = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := term.run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Name != "Anna" || p.DesignTheme != domain.DesignGirl {
		t.Errorf("player = %+v", p)
	}
	if p.Stats.CorrectAnswers != 1 || p.Stats.WrongAnswers != 1 || p.Stats.GamesPlayed != 1 {
		t.Errorf("stats = %+v, want 1/1/1", p.Stats)
	}
	if len(p.Stats.StickersCollected) != 0 {
		t.Errorf("half score earned a sticker: %v", p.Stats.StickersCollected)
	}

	text := out.String()
	for _, want := range []string{"✅ Helyes!", "❌ A helyes válasz: 2", "Eredmény: 1/2", "Szia, legközelebb"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTerminal_EndOfInputAbandonsQuiz(t *testing.T) {
	seed, err := player.New("Bence", "🦁", domain.DesignBoy)
	if err != nil {
		t.Fatalf("player.New() error = %v", err)
	}
	store := player.NewMemoryStore(seed)
	m := newTestMachine(t, store)

	term := newTerminal(m, strings.NewReader("1\n1\n1\n"), io.Discard)
	term.poll = time.Millisecond
	if err := term.run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := m.Snapshot().Screen; got != app.ScreenDashboard {
		t.Errorf("Screen = %s, want DASHBOARD", got)
	}
	p, _ := store.Load(context.Background())
	if p.Stats.GamesPlayed != 0 {
		t.Errorf("GamesPlayed = %d, abandoned quiz was committed", p.Stats.GamesPlayed)
	}
}

func TestParseLine(t *testing.T) {
	question := &domain.Question{Text: "?", Options: []float64{10, 20, 30, 40}, CorrectAnswer: 30}
	order := catalog.StickerIDs()
	albumSnap := app.Snapshot{
		State:  app.StickerAlbum{},
		Player: &domain.Player{Stats: domain.ProgressStats{StickerOrder: append(order[1:2:2], order[0])}},
	}

	tests := []struct {
		name    string
		snap    app.Snapshot
		line    string
		want    app.Intent
		wantErr error
	}{
		{"quit anywhere", app.Snapshot{State: app.Dashboard{}}, " Q ", nil, errQuit},
		{"design", app.Snapshot{State: app.ThemeSelect{}}, "1", app.SelectDesignTheme{Theme: domain.DesignBoy}, nil},
		{"design out of range", app.Snapshot{State: app.ThemeSelect{}}, "3", nil, errBadChoice},
		{"profile", app.Snapshot{State: app.Onboarding{}}, "Kis Anna 2", app.SubmitProfile{Name: "Kis Anna", Avatar: catalog.Avatars()[1]}, nil},
		{"dashboard stats", app.Snapshot{State: app.Dashboard{}}, "3", app.OpenStats{}, nil},
		{"adventure", app.Snapshot{State: app.AdventureSelect{}}, "2", app.SelectAdventure{Adventure: catalog.Adventures()[1].ID}, nil},
		{"adventure back", app.Snapshot{State: app.AdventureSelect{}}, "0", app.Back{}, nil},
		{"topics", app.Snapshot{State: app.TopicSelect{}}, "1, 3", app.ConfirmTopics{Topics: []domain.MathTopic{domain.TopicAddition, domain.TopicMultiplication}}, nil},
		{"topic out of range", app.Snapshot{State: app.TopicSelect{}}, "9", nil, errBadChoice},
		{"answer", app.Snapshot{State: app.QuizActive{Quiz: &quiz.State{Current: question}}}, "3", app.Answer{Option: 30}, nil},
		{"answer while loading", app.Snapshot{State: app.QuizActive{Loading: true}}, "1", nil, errBadChoice},
		{"give up", app.Snapshot{State: app.QuizActive{}}, "0", app.Back{}, nil},
		{"result", app.Snapshot{State: app.Result{}}, "", app.ReturnHome{}, nil},
		{"stats", app.Snapshot{State: app.StatsView{}}, "", app.Back{}, nil},
		{"album move", albumSnap, "m 1 2", app.ReorderStickers{From: 0, To: 1}, nil},
		{"album theme", albumSnap, "t dark", app.SelectAlbumTheme{Theme: "dark"}, nil},
		{"album edit uses player order", albumSnap, "e 1 legyen kék", app.RequestStickerEdit{Sticker: order[1], Instruction: "legyen kék"}, nil},
		{"album accept", albumSnap, "a", app.AcceptStickerEdit{}, nil},
		{"album unknown", albumSnap, "x", nil, errBadChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.snap, tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseLine() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLine() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseLine() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPending(t *testing.T) {
	tests := []struct {
		name  string
		state app.State
		busy  bool
	}{
		{"loading quiz", app.QuizActive{Loading: true}, true},
		{"revealed answer", app.QuizActive{Quiz: &quiz.State{Revealed: true}}, true},
		{"open question", app.QuizActive{Quiz: &quiz.State{}}, false},
		{"encouragement loading", app.Result{EncouragementLoading: true}, true},
		{"edit loading", app.StickerAlbum{Edit: &app.StickerEdit{Loading: true}}, true},
		{"dashboard", app.Dashboard{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if busy, _ := pending(app.Snapshot{State: tt.state}); busy != tt.busy {
				t.Errorf("pending() = %v, want %v", busy, tt.busy)
			}
		})
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "[░░░░]"},
		{50, "[██░░]"},
		{100, "[████]"},
		{150, "[████]"},
	}
	for _, tt := range tests {
		if got := renderProgressBar(tt.percent, 4); got != tt.want {
			t.Errorf("renderProgressBar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}
