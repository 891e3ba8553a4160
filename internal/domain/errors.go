package domain

import "errors"

var (
	// ErrInvalidSubmission is returned when the answers payload is missing or not an array.
	ErrInvalidSubmission = errors.New("answers array is required")
	// ErrNoQuestions indicates there is nothing to score against.
	ErrNoQuestions = errors.New("no quiz questions found")
	// ErrSourceUnavailable marks failures to reach the authoritative question store.
	ErrSourceUnavailable = errors.New("question source unavailable")

	ErrEmptyText          = errors.New("question text is empty")
	ErrTooFewOptions      = errors.New("at least 2 options are required")
	ErrCorrectOptionRange = errors.New("correct option index must be within options bounds")
)
