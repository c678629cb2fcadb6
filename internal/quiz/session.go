package quiz

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/audio"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/google/uuid"
)

// AnswerOutcome is the immediate result of submitting an answer.
type AnswerOutcome struct {
	IsCorrect     bool    `json:"is_correct"`
	Selected      float64 `json:"selected"`
	CorrectAnswer float64 `json:"correct_answer"`
	Explanation   string  `json:"explanation,omitempty"`
}

// Completion is the final score of a finished session.
type Completion struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// State is a point-in-time copy of a session.
type State struct {
	ID           string                `json:"id"`
	Topics       []domain.MathTopic    `json:"topics"`
	Theme        domain.AdventureTheme `json:"theme"`
	Total        int                   `json:"total"`
	CurrentIndex int                   `json:"current_index"`
	Current      *domain.Question      `json:"current,omitempty"`
	Score        int                   `json:"score"`
	Selected     *float64              `json:"selected,omitempty"`
	Revealed     bool                  `json:"revealed"`
	Completed    bool                  `json:"completed"`
	Fallback     bool                  `json:"fallback"`
}

// Session is one quiz playthrough. It is safe for concurrent use.
type Session struct {
	id        string
	topics    []domain.MathTopic
	theme     domain.AdventureTheme
	questions []domain.Question
	fallback  bool

	cues      audio.Cues
	scheduler Scheduler
	delay     time.Duration

	mu        sync.Mutex
	index     int
	score     int
	selected  *float64
	revealed  bool
	completed bool
	abandoned bool
	timer     Timer
	onAdvance func(index int)
}

func newSession(e *Engine, topics []domain.MathTopic, theme domain.AdventureTheme, questions []domain.Question, fallback bool) *Session {
	return &Session{
		id:        uuid.NewString(),
		topics:    append([]domain.MathTopic(nil), topics...),
		theme:     theme,
		questions: questions,
		fallback:  fallback,
		cues:      e.cues,
		scheduler: e.scheduler,
		delay:     e.revealDelay,
		completed: len(questions) == 0,
	}
}

// ID identifies the session.
func (s *Session) ID() string { return s.id }

// Submit answers the current question. It returns false and changes nothing
// while an answer is pending reveal, after completion or abandonment, or
// when there is no current question. onComplete runs from the reveal timer
// after the last question, outside the session lock.
func (s *Session) Submit(option float64, onComplete func(Completion)) (AnswerOutcome, bool) {
	s.mu.Lock()
	if s.revealed || s.completed || s.abandoned || s.index >= len(s.questions) {
		s.mu.Unlock()
		return AnswerOutcome{}, false
	}

	q := s.questions[s.index]
	correct := option == q.CorrectAnswer
	if correct {
		s.score++
	}
	sel := option
	s.selected = &sel
	s.revealed = true

	index := s.index
	s.timer = s.scheduler.AfterFunc(s.delay, func() { s.advance(index, onComplete) })
	s.mu.Unlock()

	if correct {
		s.cues.Correct()
	} else {
		s.cues.Wrong()
	}

	return AnswerOutcome{
		IsCorrect:     correct,
		Selected:      option,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}, true
}

// advance runs when the reveal delay for question index elapses.
func (s *Session) advance(index int, onComplete func(Completion)) {
	s.mu.Lock()
	if s.abandoned || s.completed || s.index != index || !s.revealed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.selected = nil
	s.revealed = false
	s.index++
	if s.index < len(s.questions) {
		next, hook := s.index, s.onAdvance
		s.mu.Unlock()
		if hook != nil {
			hook(next)
		}
		return
	}
	s.completed = true
	result := Completion{Correct: s.score, Total: len(s.questions)}
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(result)
	}
}

// OnAdvance registers f to run, outside the session lock, whenever the
// reveal timer moves on to a question that is not the end of the session.
// f receives the new question index.
func (s *Session) OnAdvance(f func(index int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAdvance = f
}

// Abandon stops the reveal timer. A timer that already fired finds the
// session abandoned and does nothing.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandoned = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Completed reports whether every question has been answered and revealed.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Result returns the score so far; final once Completed is true.
func (s *Session) Result() Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Completion{Correct: s.score, Total: len(s.questions)}
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:           s.id,
		Topics:       append([]domain.MathTopic(nil), s.topics...),
		Theme:        s.theme,
		Total:        len(s.questions),
		CurrentIndex: s.index,
		Score:        s.score,
		Revealed:     s.revealed,
		Completed:    s.completed,
		Fallback:     s.fallback,
	}
	if s.index < len(s.questions) {
		q := s.questions[s.index]
		q.Options = append([]float64(nil), q.Options...)
		st.Current = &q
	}
	if s.selected != nil {
		v := *s.selected
		st.Selected = &v
	}
	return st
}
