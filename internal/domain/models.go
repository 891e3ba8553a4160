package domain

import (
	"fmt"
	"math"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// NewQuestion builds a question and rejects an out-of-range correct option.
func NewQuestion(id, text string, options []string, correct int) (Question, error) {
	q := Question{ID: id, Text: text, Options: options, CorrectOption: correct}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks the invariants every stored question must hold.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question %q: %w", q.ID, ErrEmptyText)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q: %w", q.ID, ErrTooFewOptions)
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("question %q: %w", q.ID, ErrCorrectOptionRange)
	}
	return nil
}

// Public strips the correct answer so the question can be shown to a player.
func (q Question) Public() PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: options}
}

// PublicQuestion is what clients see while a quiz is in progress.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// PublicSet strips every question in order.
func PublicSet(questions []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	return out
}

// Answers holds one selection per question position; nil means unanswered.
type Answers []*int

// Choice returns a selection pointer for option i.
func Choice(i int) *int {
	return &i
}

// At returns the selection at position i, treating missing positions as unanswered.
func (a Answers) At(i int) *int {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// ReviewRecord compares a player's answer with the correct one for a single question.
type ReviewRecord struct {
	QuestionID    string   `json:"questionId"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	UserAnswer    *int     `json:"userAnswer"`
	CorrectAnswer int      `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

// ScoreResult is the outcome of scoring one submission.
type ScoreResult struct {
	Score  int            `json:"score"`
	Total  int            `json:"total"`
	Review []ReviewRecord `json:"correctAnswers"`
}

// Percentage is the rounded share of correct answers, 0 when there are no questions.
func (r ScoreResult) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.Total) * 100))
}

// Verdict is a short message for the results summary.
func (r ScoreResult) Verdict() string {
	p := r.Percentage()
	switch {
	case p >= 90:
		return "Excellent! Outstanding performance!"
	case p >= 80:
		return "Great job! Well done!"
	case p >= 70:
		return "Good work! Keep it up!"
	case p >= 60:
		return "Not bad! Room for improvement."
	default:
		return "Keep studying! You can do better!"
	}
}
