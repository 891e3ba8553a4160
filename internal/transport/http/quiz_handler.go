package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

type QuizHandler struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewQuizHandler(service *app.QuizService, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{service: service, log: log}
}

type errorBody struct {
	Error string `json:"error"`
}

type submitBody struct {
	Answers json.RawMessage `json:"answers"`
}

// List serves the question set without correct answers. It always answers 200.
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListQuestions(r.Context()))
}

// Submit scores {"answers": [int|null, ...]}.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, domain.ErrInvalidSubmission)
		return
	}
	answers, err := parseAnswers(body.Answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Submit(r.Context(), answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz API is running!"})
}

// parseAnswers accepts a JSON array. Elements that are not integers count as unanswered.
func parseAnswers(raw json.RawMessage) (domain.Answers, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, domain.ErrInvalidSubmission
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, domain.ErrInvalidSubmission
	}

	answers := make(domain.Answers, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			answers[i] = domain.Choice(n)
		}
	}
	return answers, nil
}

func (h *QuizHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.log.WithField("request_id", middleware.GetReqID(r.Context()))
	switch {
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Answers array is required"})
	case errors.Is(err, domain.ErrNoQuestions):
		log.Warn("submission with no questions to score against")
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No quiz questions found"})
	default:
		log.WithError(err).Error("quiz submission failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to process quiz submission"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
