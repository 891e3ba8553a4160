package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"timed-quiz/internal/app"
	"timed-quiz/internal/config"
	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/memory"
	"timed-quiz/internal/infra/postgres"
	rediscache "timed-quiz/internal/infra/redis"
	"timed-quiz/internal/logging"
	transport "timed-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		loader = postgres.NewQuestionLoader(pool)
	} else {
		log.Warn("postgres not configured, serving built-in sample questions")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		redisTTL := config.TTLDuration(cfg.Redis.TTL, quizTTL)
		questions = rediscache.NewQuestionRepository(client, loader, redisTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, quizTTL)
	}

	var fallback []domain.Question
	if cfg.FallbackEnabled() {
		fallback = domain.FallbackQuestions()
	}
	service := app.NewQuizService(questions, fallback, log)

	var origins []string
	if cfg.Server.FrontendURL != "" {
		origins = []string{cfg.Server.FrontendURL}
	}
	router := transport.NewRouter(transport.RouterConfig{
		Service:         service,
		Logger:          log,
		AllowedOrigins:  origins,
		QuestionSeconds: cfg.QuestionDuration(),
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /ws connections stay open for a whole quiz.
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions backs the service when no database is configured.
func sampleQuestions() []domain.Question {
	questions := postgres.SampleQuestions()
	for i := range questions {
		questions[i].ID = fmt.Sprintf("s%d", i+1)
	}
	return questions
}
