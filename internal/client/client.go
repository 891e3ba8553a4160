// Package client talks to the quiz REST API on behalf of a session.Runner.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"timed-quiz/internal/domain"
)

// Client implements session.QuestionSource and session.Submitter over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// New builds a client for baseURL (e.g. http://localhost:8080/api) with a fixed request timeout.
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// APIError is a non-200 response from the quiz API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quiz api: %d %s", e.Status, e.Message)
}

// FetchQuestions lists questions. Any failure degrades to the local fallback set
// so a session can always start.
func (c *Client) FetchQuestions(ctx context.Context) ([]domain.PublicQuestion, error) {
	var questions []domain.PublicQuestion
	if err := c.do(ctx, http.MethodGet, "/quiz", nil, &questions); err != nil {
		c.log.WithError(err).Warn("fetch questions failed, using local fallback")
		return domain.FallbackPublic(), nil
	}
	if len(questions) == 0 {
		c.log.Warn("quiz api returned no questions, using local fallback")
		return domain.FallbackPublic(), nil
	}
	return questions, nil
}

type submitRequest struct {
	Answers domain.Answers `json:"answers"`
}

// Submit posts answers for scoring.
func (c *Client) Submit(ctx context.Context, answers domain.Answers) (domain.ScoreResult, error) {
	if answers == nil {
		answers = domain.Answers{}
	}
	var result domain.ScoreResult
	if err := c.do(ctx, http.MethodPost, "/quiz/submit", submitRequest{Answers: answers}, &result); err != nil {
		return domain.ScoreResult{}, err
	}
	return result, nil
}

// Health calls the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &body); err != nil {
		return fmt.Errorf("api is not available: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("quiz api request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
