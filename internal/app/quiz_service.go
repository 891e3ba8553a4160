package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"timed-quiz/internal/domain"
)

// QuestionRepository loads the authoritative question set (from cache/backing store).
// Implementations wrap connectivity failures with domain.ErrSourceUnavailable.
type QuestionRepository interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// QuizService contains the listing and scoring use cases.
type QuizService struct {
	questions QuestionRepository
	fallback  []domain.Question
	log       logrus.FieldLogger
}

// NewQuizService wires the service. A nil or empty fallback disables fallback substitution.
func NewQuizService(questions QuestionRepository, fallback []domain.Question, log logrus.FieldLogger) *QuizService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizService{questions: questions, fallback: fallback, log: log}
}

// ListQuestions returns the question set without correct answers. Store failures
// are recovered with the fallback set and never reach the caller.
func (s *QuizService) ListQuestions(ctx context.Context) []domain.PublicQuestion {
	questions, err := s.questions.Questions(ctx)
	if err != nil {
		s.log.WithError(err).Warn("question store failed, serving fallback")
		return domain.PublicSet(s.fallback)
	}
	if len(questions) == 0 {
		s.log.Info("question store empty, serving fallback")
		return domain.PublicSet(s.fallback)
	}
	return domain.PublicSet(questions)
}

// Submit scores answers against the authoritative set. A nil answers slice means
// the payload was absent and is rejected before any question lookup.
func (s *QuizService) Submit(ctx context.Context, answers domain.Answers) (domain.ScoreResult, error) {
	if answers == nil {
		return domain.ScoreResult{}, domain.ErrInvalidSubmission
	}

	questions, err := s.scoringSet(ctx)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	result := Score(questions, answers)
	s.log.WithFields(logrus.Fields{
		"score":     result.Score,
		"total":     result.Total,
		"submitted": len(answers),
	}).Info("quiz scored")
	return result, nil
}

// scoringSet must return questions in the same order ListQuestions served them.
func (s *QuizService) scoringSet(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.Questions(ctx)
	switch {
	case err == nil && len(questions) > 0:
		return questions, nil
	case err == nil:
		if len(s.fallback) == 0 {
			return nil, domain.ErrNoQuestions
		}
		s.log.Info("question store empty, scoring against fallback")
	case errors.Is(err, domain.ErrSourceUnavailable):
		if len(s.fallback) == 0 {
			return nil, err
		}
		s.log.WithError(err).Warn("question store unavailable, scoring against fallback")
	default:
		return nil, err
	}
	return s.fallback, nil
}
