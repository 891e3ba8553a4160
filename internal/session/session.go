// Package session holds the client-side state of one quiz attempt: the loaded
// questions, the current position, the selections, the per-question countdown
// and, once scored, the result. Session is not safe for concurrent use; Runner
// owns one and serializes every transition.
package session

import (
	"errors"
	"fmt"

	"timed-quiz/internal/domain"
)

// DefaultQuestionSeconds is the countdown restarted on every question change.
const DefaultQuestionSeconds = 60

var (
	ErrNotLoaded          = errors.New("no questions loaded")
	ErrAlreadyLoaded      = errors.New("questions already loaded")
	ErrNoQuestions        = errors.New("no questions available")
	ErrCompleted          = errors.New("quiz already completed")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrNotSubmitting      = errors.New("no submission in progress")
	ErrInvalidOption      = errors.New("option out of range")
)

// Status is the lifecycle phase of a session.
type Status int

const (
	StatusEmpty Status = iota
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StatusEmpty
	case "in_progress":
		*s = StatusInProgress
	case "completed":
		*s = StatusCompleted
	default:
		return fmt.Errorf("unknown session status %q", text)
	}
	return nil
}

// TickOutcome reports what a timer tick did.
type TickOutcome int

const (
	// TickIgnored means the timer was not running.
	TickIgnored TickOutcome = iota
	// TickCounted means one second was taken off the countdown.
	TickCounted
	// TickExpired means the countdown hit zero and a submission must be sent.
	TickExpired
)

type Session struct {
	duration int

	questions     []domain.PublicQuestion
	current       int
	answers       domain.Answers
	timeRemaining int
	timerActive   bool
	submitting    bool
	completed     bool
	result        *domain.ScoreResult
	lastErr       string
}

// New returns an empty session whose countdown restarts at questionSeconds.
func New(questionSeconds int) *Session {
	if questionSeconds <= 0 {
		questionSeconds = DefaultQuestionSeconds
	}
	return &Session{duration: questionSeconds, timeRemaining: questionSeconds}
}

func (s *Session) Status() Status {
	switch {
	case len(s.questions) == 0:
		return StatusEmpty
	case s.completed:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Load starts the attempt: every answer unanswered, first question, timer running.
func (s *Session) Load(questions []domain.PublicQuestion) error {
	if s.Status() != StatusEmpty {
		return ErrAlreadyLoaded
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	s.questions = append([]domain.PublicQuestion(nil), questions...)
	s.restart()
	return nil
}

// Select records option for the current question, replacing any earlier choice.
func (s *Session) Select(option int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if option < 0 || option >= len(s.questions[s.current].Options) {
		return ErrInvalidOption
	}
	s.answers[s.current] = domain.Choice(option)
	return nil
}

// Advance moves to the next question and restarts the countdown. At the last
// question, outside InProgress or while submitting it does nothing.
func (s *Session) Advance() bool {
	if s.editable() != nil || s.current >= len(s.questions)-1 {
		return false
	}
	s.current++
	s.startTimer()
	return true
}

// Retreat moves to the previous question and restarts the countdown; no-op at index 0.
func (s *Session) Retreat() bool {
	if s.editable() != nil || s.current == 0 {
		return false
	}
	s.current--
	s.startTimer()
	return true
}

// Tick takes one second off a running countdown. When it reaches zero the timer
// stops, the session is marked as submitting and the answers to send are returned
// together with TickExpired. This happens at most once per countdown.
func (s *Session) Tick() (TickOutcome, domain.Answers) {
	if s.Status() != StatusInProgress || !s.timerActive || s.submitting || s.timeRemaining <= 0 {
		return TickIgnored, nil
	}
	s.timeRemaining--
	if s.timeRemaining > 0 {
		return TickCounted, nil
	}
	s.timerActive = false
	s.submitting = true
	return TickExpired, s.answersCopy()
}

// BeginSubmit is the manual submission path. It stops the timer and returns the
// answers to send; a second call before Complete or Fail is rejected.
func (s *Session) BeginSubmit() (domain.Answers, error) {
	if err := s.editable(); err != nil {
		return nil, err
	}
	s.timerActive = false
	s.submitting = true
	s.lastErr = ""
	return s.answersCopy(), nil
}

// Complete stores the scoring result and freezes the session.
func (s *Session) Complete(result domain.ScoreResult) error {
	if !s.submitting {
		return ErrNotSubmitting
	}
	s.submitting = false
	s.completed = true
	s.result = &result
	return nil
}

// Fail records a failed submission. The session stays in progress with its answers
// so the player can retry; the timer stays stopped.
func (s *Session) Fail(err error) error {
	if !s.submitting {
		return ErrNotSubmitting
	}
	s.submitting = false
	s.lastErr = "Error submitting quiz. Please try again."
	if err != nil {
		s.lastErr = fmt.Sprintf("Error submitting quiz: %v. Please try again.", err)
	}
	return nil
}

// Reset discards progress. With questions loaded it starts a fresh attempt on the
// same set; otherwise the session stays empty.
func (s *Session) Reset() {
	s.submitting = false
	s.completed = false
	s.result = nil
	s.lastErr = ""
	if len(s.questions) == 0 {
		s.current = 0
		s.answers = nil
		s.timerActive = false
		s.timeRemaining = s.duration
		return
	}
	s.restart()
}

// View is an immutable snapshot for rendering.
type View struct {
	Status        Status                  `json:"status"`
	Questions     []domain.PublicQuestion `json:"questions"`
	CurrentIndex  int                     `json:"currentIndex"`
	Answers       domain.Answers          `json:"answers"`
	TimeRemaining int                     `json:"timeRemaining"`
	TimerActive   bool                    `json:"timerActive"`
	Submitting    bool                    `json:"submitting"`
	Result        *domain.ScoreResult     `json:"result,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

// Current returns the question at CurrentIndex, if any.
func (v View) Current() (domain.PublicQuestion, bool) {
	if v.CurrentIndex < 0 || v.CurrentIndex >= len(v.Questions) {
		return domain.PublicQuestion{}, false
	}
	return v.Questions[v.CurrentIndex], true
}

// CurrentAnswered reports whether the current question has a selection.
func (v View) CurrentAnswered() bool {
	return v.Answers.At(v.CurrentIndex) != nil
}

func (s *Session) View() View {
	v := View{
		Status:        s.Status(),
		Questions:     append([]domain.PublicQuestion(nil), s.questions...),
		CurrentIndex:  s.current,
		Answers:       s.answersCopy(),
		TimeRemaining: s.timeRemaining,
		TimerActive:   s.timerActive,
		Submitting:    s.submitting,
		Error:         s.lastErr,
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}
	return v
}

func (s *Session) editable() error {
	switch s.Status() {
	case StatusEmpty:
		return ErrNotLoaded
	case StatusCompleted:
		return ErrCompleted
	}
	if s.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

func (s *Session) restart() {
	s.current = 0
	s.answers = make(domain.Answers, len(s.questions))
	s.startTimer()
}

func (s *Session) startTimer() {
	s.timeRemaining = s.duration
	s.timerActive = true
}

func (s *Session) answersCopy() domain.Answers {
	if s.answers == nil {
		return nil
	}
	out := make(domain.Answers, len(s.answers))
	for i, a := range s.answers {
		if a != nil {
			out[i] = domain.Choice(*a)
		}
	}
	return out
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
