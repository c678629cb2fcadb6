package domain

import "fmt"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// MathTopic is an arithmetic topic the player can practise.
type MathTopic string

const (
	TopicAddition       MathTopic = "addition"
	TopicSubtraction    MathTopic = "subtraction"
	TopicMultiplication MathTopic = "multiplication"
	TopicDivision       MathTopic = "division"
	TopicRounding10     MathTopic = "rounding_10"
	TopicRounding100    MathTopic = "rounding_100"
	TopicMixed          MathTopic = "mixed"
)

// Question is a single multiple-choice arithmetic question.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"questionText"`
	Options       []float64 `json:"options"`
	CorrectAnswer float64   `json:"correctAnswer"`
	Explanation   string    `json:"explanation,omitempty"`
}

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: %d options", ErrInvalidQuestion, len(q.Options))
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("%w: answer %v not among options", ErrInvalidQuestion, q.CorrectAnswer)
}
