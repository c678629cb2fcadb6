package app

import (
	"context"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/quiz"
	"github.com/felixgeelhaar/matekkaland/internal/reward"
)

// Screen names a state variant.
type Screen string

const (
	ScreenThemeSelect     Screen = "THEME_SELECT"
	ScreenOnboarding      Screen = "ONBOARDING"
	ScreenDashboard       Screen = "DASHBOARD"
	ScreenAdventureSelect Screen = "ADVENTURE_SELECT"
	ScreenTopicSelect     Screen = "TOPIC_SELECT"
	ScreenQuizActive      Screen = "QUIZ_ACTIVE"
	ScreenResult          Screen = "RESULT"
	ScreenStickerAlbum    Screen = "STICKER_ALBUM"
	ScreenStatsView       Screen = "STATS_VIEW"
)

// State is one of the screen variants below. Each variant carries only the
// data that is valid on its screen.
type State interface {
	Screen() Screen
	clone() State
}

// ThemeSelect is the first screen of a new installation.
type ThemeSelect struct{}

// Onboarding collects the player's name and avatar.
type Onboarding struct {
	Design domain.DesignTheme `json:"design"`
}

// Dashboard is the home screen.
type Dashboard struct{}

// AdventureSelect lists the adventure settings.
type AdventureSelect struct{}

// TopicSelect lets the player pick topics for the chosen adventure.
type TopicSelect struct {
	Adventure domain.AdventureTheme `json:"adventure"`
}

// QuizActive is a running quiz. Quiz is nil while questions load.
type QuizActive struct {
	Adventure  domain.AdventureTheme `json:"adventure"`
	Topics     []domain.MathTopic    `json:"topics"`
	Loading    bool                  `json:"loading"`
	Quiz       *quiz.State           `json:"quiz,omitempty"`
	LastAnswer *quiz.AnswerOutcome   `json:"last_answer,omitempty"`

	session *quiz.Session
	cancel  context.CancelFunc
}

// Result shows the outcome of a finished quiz.
type Result struct {
	Correct              int               `json:"correct"`
	Total                int               `json:"total"`
	Outcome              reward.Outcome    `json:"outcome"`
	Sticker              *domain.StickerID `json:"sticker,omitempty"`
	Encouragement        string            `json:"encouragement,omitempty"`
	EncouragementLoading bool              `json:"encouragement_loading"`
}

// StickerAlbum shows the collection. Edit is set while an image edit is
// being prepared or awaits confirmation.
type StickerAlbum struct {
	Edit *StickerEdit `json:"edit,omitempty"`
}

// StickerEdit is a pending custom artwork change.
type StickerEdit struct {
	StickerID   domain.StickerID `json:"sticker_id"`
	Instruction string           `json:"instruction"`
	Loading     bool             `json:"loading"`
	Preview     domain.ImageData `json:"preview,omitempty"`
	Failed      bool             `json:"failed"`

	seq uint64
}

// StatsView shows the progress figures.
type StatsView struct{}

func (ThemeSelect) Screen() Screen     { return ScreenThemeSelect }
func (Onboarding) Screen() Screen      { return ScreenOnboarding }
func (Dashboard) Screen() Screen       { return ScreenDashboard }
func (AdventureSelect) Screen() Screen { return ScreenAdventureSelect }
func (TopicSelect) Screen() Screen     { return ScreenTopicSelect }
func (QuizActive) Screen() Screen      { return ScreenQuizActive }
func (Result) Screen() Screen          { return ScreenResult }
func (StickerAlbum) Screen() Screen    { return ScreenStickerAlbum }
func (StatsView) Screen() Screen       { return ScreenStatsView }

func (s ThemeSelect) clone() State     { return s }
func (s Onboarding) clone() State      { return s }
func (s Dashboard) clone() State       { return s }
func (s AdventureSelect) clone() State { return s }
func (s TopicSelect) clone() State     { return s }
func (s StatsView) clone() State       { return s }

func (s QuizActive) clone() State {
	out := QuizActive{
		Adventure: s.Adventure,
		Topics:    append([]domain.MathTopic(nil), s.Topics...),
		Loading:   s.Loading,
	}
	if s.session != nil {
		st := s.session.State()
		out.Quiz = &st
	}
	if s.LastAnswer != nil {
		a := *s.LastAnswer
		out.LastAnswer = &a
	}
	return out
}

func (s Result) clone() State {
	if s.Sticker != nil {
		id := *s.Sticker
		s.Sticker = &id
	}
	return s
}

func (s StickerAlbum) clone() State {
	if s.Edit != nil {
		e := *s.Edit
		s.Edit = &e
	}
	return s
}
