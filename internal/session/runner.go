package session

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"timed-quiz/internal/domain"
)

// ErrStopped is returned by Runner methods once Run has exited.
var ErrStopped = errors.New("session runner stopped")

// DefaultSubmitTimeout bounds a single scoring request.
const DefaultSubmitTimeout = 10 * time.Second

// QuestionSource provides the questions for a new attempt.
type QuestionSource interface {
	FetchQuestions(ctx context.Context) ([]domain.PublicQuestion, error)
}

// Submitter sends answers to the scoring service.
type Submitter interface {
	Submit(ctx context.Context, answers domain.Answers) (domain.ScoreResult, error)
}

// Ticker returns a channel of timer ticks and a stop function.
type Ticker func() (<-chan time.Time, func())

type Option func(*Runner)

func WithQuestionSeconds(seconds int) Option {
	return func(r *Runner) { r.session = New(seconds) }
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

func WithTicker(t Ticker) Option {
	return func(r *Runner) { r.ticker = t }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Runner) { r.log = log }
}

type command struct {
	fn       func(ctx context.Context) error
	reply    chan error
	readOnly bool
}

type outcome struct {
	result domain.ScoreResult
	err    error
}

// Runner is the single owner of a Session. Commands, timer ticks and submission
// results are all applied on the goroutine running Run, so transitions never race.
// At most one submission is in flight: the session stops its timer and rejects
// further submits until the outcome is applied.
type Runner struct {
	session   *Session
	submitter Submitter
	timeout   time.Duration
	ticker    Ticker
	log       logrus.FieldLogger

	cmds     chan command
	outcomes chan outcome
	updates  chan View
	done     chan struct{}
}

func NewRunner(submitter Submitter, opts ...Option) *Runner {
	r := &Runner{
		session:   New(DefaultQuestionSeconds),
		submitter: submitter,
		timeout:   DefaultSubmitTimeout,
		ticker:    secondTicker,
		log:       logrus.StandardLogger(),
		cmds:      make(chan command),
		outcomes:  make(chan outcome, 1),
		updates:   make(chan View, 16),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func secondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// Updates delivers a snapshot after every state change. Slow readers only miss
// intermediate snapshots, never the latest one.
func (r *Runner) Updates() <-chan View {
	return r.updates
}

// Run owns the session until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticks, stop := r.ticker()
	defer stop()
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.cmds:
			err := cmd.fn(ctx)
			cmd.reply <- err
			if err == nil && !cmd.readOnly {
				r.publish()
			}
		case <-ticks:
			switch outcome, answers := r.session.Tick(); outcome {
			case TickCounted:
				r.publish()
			case TickExpired:
				r.log.Info("timer expired, submitting quiz")
				r.send(ctx, answers)
				r.publish()
			}
		case out := <-r.outcomes:
			if out.err != nil {
				r.log.WithError(out.err).Warn("quiz submission failed")
				_ = r.session.Fail(out.err)
			} else {
				_ = r.session.Complete(out.result)
			}
			r.publish()
		}
	}
}

// Start fetches questions from src and loads them. The fetch happens on the
// caller's goroutine so ticks are never blocked by I/O.
func (r *Runner) Start(ctx context.Context, src QuestionSource) error {
	questions, err := src.FetchQuestions(ctx)
	if err != nil {
		return err
	}
	return r.Load(ctx, questions)
}

func (r *Runner) Load(ctx context.Context, questions []domain.PublicQuestion) error {
	return r.do(ctx, func(context.Context) error {
		return r.session.Load(questions)
	})
}

func (r *Runner) Select(ctx context.Context, option int) error {
	return r.do(ctx, func(context.Context) error {
		return r.session.Select(option)
	})
}

// Next advances one question; moved is false at the last question.
func (r *Runner) Next(ctx context.Context) (moved bool, err error) {
	err = r.do(ctx, func(context.Context) error {
		moved = r.session.Advance()
		return nil
	})
	return moved, err
}

// Prev goes back one question; moved is false at the first question.
func (r *Runner) Prev(ctx context.Context) (moved bool, err error) {
	err = r.do(ctx, func(context.Context) error {
		moved = r.session.Retreat()
		return nil
	})
	return moved, err
}

// Submit starts the manual submission. It returns once the request is in flight;
// the outcome arrives through Updates.
func (r *Runner) Submit(ctx context.Context) error {
	return r.do(ctx, func(runCtx context.Context) error {
		answers, err := r.session.BeginSubmit()
		if err != nil {
			return err
		}
		r.send(runCtx, answers)
		return nil
	})
}

func (r *Runner) Reset(ctx context.Context) error {
	return r.do(ctx, func(context.Context) error {
		if r.session.submitting {
			return ErrSubmissionInFlight
		}
		r.session.Reset()
		return nil
	})
}

func (r *Runner) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := r.exec(ctx, command{readOnly: true, fn: func(context.Context) error {
		v = r.session.View()
		return nil
	}})
	return v, err
}

func (r *Runner) do(ctx context.Context, fn func(context.Context) error) error {
	return r.exec(ctx, command{fn: fn})
}

func (r *Runner) exec(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// Run always replies to an accepted command before doing anything else.
	return <-cmd.reply
}

func (r *Runner) send(ctx context.Context, answers domain.Answers) {
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		result, err := r.submitter.Submit(reqCtx, answers)
		select {
		case r.outcomes <- outcome{result: result, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (r *Runner) publish() {
	v := r.session.View()
	select {
	case r.updates <- v:
	default:
		select {
		case <-r.updates:
		default:
		}
		r.updates <- v
	}
}
