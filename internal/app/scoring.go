package app

import "timed-quiz/internal/domain"

// Score compares answers to questions position by position. Positions missing
// from answers count as unanswered and are never correct.
func Score(questions []domain.Question, answers domain.Answers) domain.ScoreResult {
	result := domain.ScoreResult{
		Total:  len(questions),
		Review: make([]domain.ReviewRecord, 0, len(questions)),
	}
	for i, q := range questions {
		picked := answers.At(i)
		correct := picked != nil && *picked == q.CorrectOption
		if correct {
			result.Score++
		}

		var userAnswer *int
		if picked != nil {
			userAnswer = domain.Choice(*picked)
		}
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		result.Review = append(result.Review, domain.ReviewRecord{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			Options:       options,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectOption,
			IsCorrect:     correct,
		})
	}
	return result
}
