package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
)

type stubRepo struct {
	questions []domain.Question
	err       error
}

func (r stubRepo) Questions(context.Context) ([]domain.Question, error) {
	return r.questions, r.err
}

func newTestServer(t *testing.T, repo app.QuestionRepository, fallback []domain.Question) *httptest.Server {
	t.Helper()
	log := quietLogger()
	service := app.NewQuizService(repo, fallback, log)
	server := httptest.NewServer(NewRouter(RouterConfig{Service: service, Logger: log}))
	t.Cleanup(server.Close)
	return server
}

func TestListQuestionsStripsAnswers(t *testing.T) {
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleQuestions()), time.Minute)
	server := newTestServer(t, repo, nil)

	resp, err := http.Get(server.URL + "/api/quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 || body[0]["id"] != "q1" || body[1]["id"] != "q2" {
		t.Fatalf("unexpected body %v", body)
	}
	for _, q := range body {
		if _, ok := q["correctOption"]; ok {
			t.Fatalf("listing leaked the correct answer: %v", q)
		}
	}
}

func TestListQuestionsFallsBackOnStoreError(t *testing.T) {
	server := newTestServer(t, stubRepo{err: errors.New("database error")}, domain.FallbackQuestions())

	resp, err := http.Get(server.URL + "/api/quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body []domain.PublicQuestion
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != len(domain.FallbackPublic()) || body[0].ID != "f1" {
		t.Fatalf("expected fallback list, got %+v", body)
	}
}

func TestSubmit(t *testing.T) {
	repo := stubRepo{questions: sampleQuestions()}

	cases := []struct {
		name    string
		repo    app.QuestionRepository
		body    string
		status  int
		message string
		score   int
	}{
		{name: "scores", repo: repo, body: `{"answers":[1,0]}`, status: http.StatusOK, score: 1},
		{name: "perfect", repo: repo, body: `{"answers":[1,1]}`, status: http.StatusOK, score: 2},
		{name: "nulls and junk", repo: repo, body: `{"answers":[null,"1"]}`, status: http.StatusOK, score: 0},
		{name: "short", repo: repo, body: `{"answers":[1]}`, status: http.StatusOK, score: 1},
		{name: "missing answers", repo: repo, body: `{}`, status: http.StatusBadRequest, message: "Answers array is required"},
		{name: "null answers", repo: repo, body: `{"answers":null}`, status: http.StatusBadRequest, message: "Answers array is required"},
		{name: "not an array", repo: repo, body: `{"answers":"not an array"}`, status: http.StatusBadRequest, message: "Answers array is required"},
		{name: "malformed body", repo: repo, body: `{"answers":[1,`, status: http.StatusBadRequest, message: "Answers array is required"},
		{name: "empty store", repo: stubRepo{}, body: `{"answers":[1,2]}`, status: http.StatusNotFound, message: "No quiz questions found"},
		{name: "store failure", repo: stubRepo{err: errors.New("database error")}, body: `{"answers":[1,2]}`, status: http.StatusInternalServerError, message: "Failed to process quiz submission"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, tc.repo, nil)
			resp, err := http.Post(server.URL+"/api/quiz/submit", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}

			if tc.status != http.StatusOK {
				var body errorBody
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode error: %v", err)
				}
				if body.Error != tc.message {
					t.Fatalf("expected %q, got %q", tc.message, body.Error)
				}
				return
			}

			var result domain.ScoreResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			if result.Score != tc.score || result.Total != 2 || len(result.Review) != 2 {
				t.Fatalf("unexpected result %+v", result)
			}
		})
	}
}

func TestSubmitReviewShape(t *testing.T) {
	server := newTestServer(t, stubRepo{questions: sampleQuestions()}, nil)
	resp, err := http.Post(server.URL+"/api/quiz/submit", "application/json", strings.NewReader(`{"answers":[1,null]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Score          int              `json:"score"`
		Total          int              `json:"total"`
		CorrectAnswers []map[string]any `json:"correctAnswers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	first, second := body.CorrectAnswers[0], body.CorrectAnswers[1]
	if first["isCorrect"] != true || first["userAnswer"] != float64(1) || first["correctAnswer"] != float64(1) {
		t.Fatalf("unexpected first review %v", first)
	}
	if second["isCorrect"] != false || second["userAnswer"] != nil || second["questionText"] != "What is the capital of France?" {
		t.Fatalf("unexpected second review %v", second)
	}
}

func TestSubmitUnavailableStoreScoresFallback(t *testing.T) {
	unavailable := fmt.Errorf("connect: %w", domain.ErrSourceUnavailable)
	server := newTestServer(t, stubRepo{err: unavailable}, domain.FallbackQuestions())

	resp, err := http.Post(server.URL+"/api/quiz/submit", "application/json", strings.NewReader(`{"answers":[2,1,1,2,1]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var result domain.ScoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || result.Score != 5 || result.Total != 5 {
		t.Fatalf("expected 5/5 against fallback, got %d %+v", resp.StatusCode, result)
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t, stubRepo{}, nil)

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "Quiz API is running!" {
		t.Fatalf("unexpected health body %v", body)
	}

	resp2, err := http.Get(server.URL + "/nowhere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp2.StatusCode)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	service := app.NewQuizService(stubRepo{questions: sampleQuestions()}, nil, logger)
	server := httptest.NewServer(NewRouter(RouterConfig{Service: service, Logger: logger}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "http request" || entry.Data["status"] != http.StatusOK {
		t.Fatalf("expected request log entry, got %+v", entry)
	}
	if entry.Data["request_id"] == "" {
		t.Fatalf("expected request id on log entry")
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "What is 2+2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1},
		{ID: "q2", Text: "What is the capital of France?", Options: []string{"London", "Paris", "Berlin", "Madrid"}, CorrectOption: 1},
	}
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}
