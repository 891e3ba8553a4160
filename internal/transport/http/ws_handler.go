package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/session"
)

// WSHandler hosts one session.Runner per websocket connection, for clients that
// want the server to own the countdown.
type WSHandler struct {
	service         *app.QuizService
	log             logrus.FieldLogger
	questionSeconds int
	ticker          session.Ticker
	upgrader        websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger, questionSeconds int) *WSHandler {
	return &WSHandler{
		service:         service,
		log:             log,
		questionSeconds: questionSeconds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// listedQuestions adapts the service listing to session.QuestionSource.
type listedQuestions struct {
	service *app.QuizService
}

func (l listedQuestions) FetchQuestions(ctx context.Context) ([]domain.PublicQuestion, error) {
	return l.service.ListQuestions(ctx), nil
}

// ServeWS upgrades the request and drives a live quiz session over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log := h.log.WithField("session", sessionID)

	opts := []session.Option{
		session.WithQuestionSeconds(h.questionSeconds),
		session.WithLogger(log),
	}
	if h.ticker != nil {
		opts = append(opts, session.WithTicker(h.ticker))
	}
	runner := session.NewRunner(h.service, opts...)

	ctx, cancel := context.WithCancel(r.Context())
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		_ = runner.Run(ctx)
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view := <-runner.Updates():
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	log.Info("live session opened")
	if view, err := runner.Snapshot(ctx); err == nil {
		send <- outboundMessage[any]{Type: "state", Payload: view}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, runner, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	cancel()
	<-runnerDone
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	log.Info("live session closed")
}

func (h *WSHandler) dispatch(ctx context.Context, runner *session.Runner, msg inboundMessage) error {
	switch msg.Type {
	case "start":
		return runner.Start(ctx, listedQuestions{service: h.service})
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Option == nil {
			return errInvalidPayload
		}
		return runner.Select(ctx, *payload.Option)
	case "next":
		_, err := runner.Next(ctx)
		return err
	case "prev":
		_, err := runner.Prev(ctx)
		return err
	case "submit":
		return runner.Submit(ctx)
	case "reset":
		return runner.Reset(ctx)
	default:
		return errUnsupportedMessage
	}
}
