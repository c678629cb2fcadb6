package reward

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		correct, total int
		want           Outcome
	}{
		{8, 10, Outcome{Passed: true, RewardEligible: true}},
		{5, 10, Outcome{Passed: false, RewardEligible: false}},
		{7, 10, Outcome{Passed: true, RewardEligible: false}},
		{0, 0, Outcome{}},
		{6, 10, Outcome{Passed: false, RewardEligible: false}},
		{10, 10, Outcome{Passed: true, RewardEligible: true, Perfect: true}},
		{4, 5, Outcome{Passed: true, RewardEligible: true}},
		{0, 10, Outcome{}},
	}

	for _, tt := range tests {
		got := Evaluate(tt.correct, tt.total)
		if got != tt.want {
			t.Errorf("Evaluate(%d, %d) = %+v, want %+v", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestResolver_Draw(t *testing.T) {
	r := NewResolver(nil, rand.New(rand.NewPCG(1, 2)), nil)

	counts := make(map[domain.StickerID]int)
	for i := 0; i < 1200; i++ {
		id := r.Draw()
		if _, ok := catalog.Sticker(id); !ok {
			t.Fatalf("Draw() = %s, not in catalog", id)
		}
		counts[id]++
	}
	if len(counts) != len(catalog.StickerIDs()) {
		t.Errorf("Draw() covered %d stickers, want all %d", len(counts), len(catalog.StickerIDs()))
	}
}

func TestResolver_Draw_Deterministic(t *testing.T) {
	a := NewResolver(nil, rand.New(rand.NewPCG(7, 7)), nil)
	b := NewResolver(nil, rand.New(rand.NewPCG(7, 7)), nil)
	for i := 0; i < 10; i++ {
		if a.Draw() != b.Draw() {
			t.Fatal("same seed produced different draws")
		}
	}
}

type fakeEncourager struct {
	text string
	err  error
}

func (f fakeEncourager) GenerateEncouragement(ctx context.Context, name string, succeeded bool) (string, error) {
	return f.text, f.err
}

func TestResolver_Encouragement(t *testing.T) {
	tests := []struct {
		name   string
		enc    Encourager
		passed bool
		want   string
	}{
		{"generated", fakeEncourager{text: " Szuper! "}, true, "Szuper!"},
		{"error passed", fakeEncourager{err: errors.New("down")}, true, FallbackPraise},
		{"error failed", fakeEncourager{err: errors.New("down")}, false, FallbackEncourage},
		{"empty text", fakeEncourager{text: "  "}, false, FallbackEncourage},
		{"no encourager", nil, true, FallbackPraise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.enc, nil, nil)
			if got := r.Encouragement(context.Background(), "Anna", tt.passed); got != tt.want {
				t.Errorf("Encouragement() = %q, want %q", got, tt.want)
			}
		})
	}
}
