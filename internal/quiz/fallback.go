package quiz

import "github.com/felixgeelhaar/matekkaland/internal/domain"

// fallbackQuestions is the bundled set used whenever generation fails. It
// spans addition, subtraction, multiplication and both rounding topics.
var fallbackQuestions = []domain.Question{
	{ID: "f1", Text: "Mennyi 5 + 3?", Options: []float64{7, 8, 9, 10}, CorrectAnswer: 8, Explanation: "Próbáld az ujjaidon kiszámolni!"},
	{ID: "f2", Text: "Ha van 10 almád és megeszel 2-t, mennyi marad?", Options: []float64{6, 7, 8, 9}, CorrectAnswer: 8},
	{ID: "f3", Text: "Mennyi 2 x 4?", Options: []float64{6, 8, 10, 12}, CorrectAnswer: 8},
	{ID: "f4", Text: "Kerekítsd a 12-t tízesre!", Options: []float64{10, 20, 15, 12}, CorrectAnswer: 10},
	{ID: "f5", Text: "Kerekítsd a 198-at százasra!", Options: []float64{100, 190, 200, 150}, CorrectAnswer: 200},
	{ID: "f6", Text: "Mennyi 15 - 5?", Options: []float64{5, 10, 15, 20}, CorrectAnswer: 10},
	{ID: "f7", Text: "Mennyi a duplája a 6-nak?", Options: []float64{10, 12, 14, 16}, CorrectAnswer: 12},
	{ID: "f8", Text: "Mennyi 3 x 3?", Options: []float64{6, 9, 12, 15}, CorrectAnswer: 9},
	{ID: "f9", Text: "Kerekítsd az 54-et tízesre!", Options: []float64{50, 60, 55, 40}, CorrectAnswer: 50},
	{ID: "f10", Text: "Hány lába van 2 kutyának?", Options: []float64{4, 6, 8, 10}, CorrectAnswer: 8},
}

// FallbackQuestions returns a copy of the bundled question set.
func FallbackQuestions() []domain.Question {
	out := make([]domain.Question, len(fallbackQuestions))
	for i, q := range fallbackQuestions {
		q.Options = append([]float64(nil), q.Options...)
		out[i] = q
	}
	return out
}
