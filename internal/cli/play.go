package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"timed-quiz/internal/client"
	"timed-quiz/internal/config"
	"timed-quiz/internal/logging"
	"timed-quiz/internal/session"
)

// NewPlayCmd runs a quiz in the terminal against the REST API.
func NewPlayCmd(configPath *string) *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				cfg = config.Default()
			}
			if apiURL != "" {
				cfg.Client.BaseURL = apiURL
			}
			// Logs would interleave with the quiz on stdout.
			log := logging.NewWithOutput("warn", cfg.Log.Format, cmd.ErrOrStderr())
			c := client.New(cfg.Client.BaseURL, config.TTLDuration(cfg.Client.Timeout, session.DefaultSubmitTimeout), log)
			runner := session.NewRunner(c,
				session.WithQuestionSeconds(cfg.QuestionDuration()),
				session.WithSubmitTimeout(config.TTLDuration(cfg.Client.Timeout, session.DefaultSubmitTimeout)),
				session.WithLogger(log),
			)
			return play(cmd.Context(), runner, c, cmd.InOrStdin(), cmd.OutOrStdout(), log)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "quiz API base URL (overrides client.base_url)")
	return cmd
}

func play(ctx context.Context, runner *session.Runner, src session.QuestionSource, in io.Reader, out io.Writer, log logrus.FieldLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- runner.Run(ctx) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, "Quiz Challenge")
	fmt.Fprintln(out, "Answer with the option number, n/p to move, s to submit, q to quit.")
	if err := runner.Start(ctx, src); err != nil {
		return err
	}

	r := &screen{out: out}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runDone:
			return err
		case v := <-runner.Updates():
			r.render(v)
		case line, ok := <-lines:
			if !ok || line == "q" {
				fmt.Fprintln(out, "Bye!")
				return nil
			}
			if err := handleInput(ctx, runner, line); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
				log.WithError(err).Debug("input rejected")
			}
		}
	}
}

var (
	errSelectFirst    = errors.New("please select an answer to continue")
	errNotLastForSend = errors.New("submit is available on the last question")
	errUnknownInput   = errors.New("unknown input")
)

func handleInput(ctx context.Context, runner *session.Runner, line string) error {
	v, err := runner.Snapshot(ctx)
	if err != nil {
		return err
	}

	switch line {
	case "n":
		if !v.CurrentAnswered() {
			return errSelectFirst
		}
		_, err := runner.Next(ctx)
		return err
	case "p":
		_, err := runner.Prev(ctx)
		return err
	case "s":
		if v.CurrentIndex != len(v.Questions)-1 {
			return errNotLastForSend
		}
		if !v.CurrentAnswered() {
			return errSelectFirst
		}
		return runner.Submit(ctx)
	case "r":
		return runner.Reset(ctx)
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return errUnknownInput
	}
	return runner.Select(ctx, n-1)
}

// screen prints views, skipping ticks except for the last seconds.
type screen struct {
	out  io.Writer
	last string
}

func (s *screen) render(v session.View) {
	key := viewKey(v)
	if key == s.last {
		if v.TimerActive && (v.TimeRemaining == 30 || v.TimeRemaining <= 10) {
			fmt.Fprintf(s.out, "  %s left\n", session.FormatTime(v.TimeRemaining))
		}
		return
	}
	s.last = key

	switch {
	case v.Status == session.StatusCompleted && v.Result != nil:
		renderResults(s.out, v)
	case v.Submitting:
		fmt.Fprintln(s.out, "Submitting...")
	case v.Status == session.StatusInProgress:
		renderQuestion(s.out, v)
	}
}

func viewKey(v session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%t|%s|", v.Status, v.CurrentIndex, v.Submitting, v.Error)
	for _, a := range v.Answers {
		if a == nil {
			b.WriteString("-,")
			continue
		}
		fmt.Fprintf(&b, "%d,", *a)
	}
	return b.String()
}

func renderQuestion(out io.Writer, v session.View) {
	q, ok := v.Current()
	if !ok {
		return
	}
	fmt.Fprintf(out, "\nQuestion %d of %d  [%s]\n", v.CurrentIndex+1, len(v.Questions), session.FormatTime(v.TimeRemaining))
	fmt.Fprintln(out, q.Text)
	picked := v.Answers.At(v.CurrentIndex)
	for i, opt := range q.Options {
		mark := " "
		if picked != nil && *picked == i {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i+1, opt)
	}
	if v.Error != "" {
		fmt.Fprintf(out, "! %s\n", v.Error)
	}
}

func renderResults(out io.Writer, v session.View) {
	r := v.Result
	fmt.Fprintf(out, "\nQuiz Complete! %s\n", r.Verdict())
	fmt.Fprintf(out, "Correct: %d  Total: %d  Score: %d%%\n\n", r.Score, r.Total, r.Percentage())
	for i, rec := range r.Review {
		status := "Incorrect"
		if rec.IsCorrect {
			status = "Correct"
		}
		fmt.Fprintf(out, "Question %d (%s): %s\n", i+1, status, rec.QuestionText)
		for j, opt := range rec.Options {
			switch {
			case j == rec.CorrectAnswer:
				fmt.Fprintf(out, "  %s ✓ (Correct Answer)\n", opt)
			case rec.UserAnswer != nil && *rec.UserAnswer == j && !rec.IsCorrect:
				fmt.Fprintf(out, "  %s ✗ (Your Answer)\n", opt)
			default:
				fmt.Fprintf(out, "  %s\n", opt)
			}
		}
	}
	fmt.Fprintln(out, "\nr to take the quiz again, q to quit.")
}
