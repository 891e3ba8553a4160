package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
	"timed-quiz/internal/session"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type serviceSource struct{ service *app.QuizService }

func (s serviceSource) FetchQuestions(ctx context.Context) ([]domain.PublicQuestion, error) {
	return s.service.ListQuestions(ctx), nil
}

func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("output never contained %q:\n%s", want, out.String())
}

func TestPlayFullQuiz(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleQuestions()[:2]), time.Minute)
	service := app.NewQuizService(repo, nil, logger)
	runner := session.NewRunner(service,
		session.WithLogger(logger),
		session.WithTicker(func() (<-chan time.Time, func()) { return nil, func() {} }),
	)

	in, input := io.Pipe()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- play(context.Background(), runner, serviceSource{service}, in, out, logger) }()

	waitForOutput(t, out, "Question 1 of 2")
	io.WriteString(input, "n\n")
	waitForOutput(t, out, "please select an answer to continue")

	// Sample question 1: Paris is option 3; question 2: Mars is option 2.
	io.WriteString(input, "3\n")
	waitForOutput(t, out, "[x] 3. Paris")
	io.WriteString(input, "s\n")
	waitForOutput(t, out, "submit is available on the last question")
	io.WriteString(input, "n\n")
	waitForOutput(t, out, "Question 2 of 2")
	io.WriteString(input, "1\n")
	io.WriteString(input, "s\n")

	waitForOutput(t, out, "Quiz Complete!")
	waitForOutput(t, out, "Correct: 1  Total: 2  Score: 50%")
	waitForOutput(t, out, "Venus ✗ (Your Answer)")

	io.WriteString(input, "q\n")
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("play: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("play did not exit")
	}
	input.Close()
}

func TestSampleQuestionsHaveStableIDs(t *testing.T) {
	qs := sampleQuestions()
	if qs[0].ID != "s1" || qs[len(qs)-1].ID != "s8" {
		t.Fatalf("unexpected ids %q..%q", qs[0].ID, qs[len(qs)-1].ID)
	}
}
