package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"timed-quiz/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.Questions(context.Background()); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	qs, err := repo.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(qs) != 2 || qs[0].ID != "q1" {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.Questions(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.Questions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}

	repo.Invalidate()
	_, _ = repo.Questions(context.Background())
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

func TestQuestionRepositoryDoesNotCacheFailures(t *testing.T) {
	boom := errors.New("down")
	loader := &countingLoader{QuestionLoader: failingLoader{err: boom}}
	repo := NewQuestionRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.Questions(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected loader error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("errors must not be cached, calls %d", loader.calls)
	}

	empty := &countingLoader{QuestionLoader: NewStaticQuestionLoader(nil)}
	repo = NewQuestionRepository(empty, time.Minute)
	_, _ = repo.Questions(context.Background())
	_, _ = repo.Questions(context.Background())
	if empty.calls != 2 {
		t.Fatalf("empty sets must not be cached, calls %d", empty.calls)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

type failingLoader struct{ err error }

func (l failingLoader) LoadQuestions(context.Context) ([]domain.Question, error) {
	return nil, l.err
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectOption: 1},
		{ID: "q2", Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars"}, CorrectOption: 1},
	}
}
