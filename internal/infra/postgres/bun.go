package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"timed-quiz/internal/domain"
	"timed-quiz/internal/infra/postgres/migrations"
)

// OpenBun opens a bun handle over pgdriver for migrations and seeding.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies all pending migrations and returns the applied group, if any.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string    `bun:"id,pk"`
	Position      int       `bun:"position,notnull"`
	Text          string    `bun:"text,notnull"`
	Options       []string  `bun:"options,type:jsonb,notnull"`
	CorrectOption int       `bun:"correct_option,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Seed replaces the stored question set with questions, keeping their order.
func Seed(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	rows := make([]questionRow, 0, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return 0, err
		}
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, questionRow{
			ID:            id,
			Position:      i,
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// SampleQuestions is the default seed set.
func SampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is the capital of France?", Options: []string{"London", "Berlin", "Paris", "Madrid"}, CorrectOption: 2},
		{Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, CorrectOption: 1},
		{Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1},
		{Text: "Who painted the Mona Lisa?", Options: []string{"Vincent van Gogh", "Pablo Picasso", "Leonardo da Vinci", "Michelangelo"}, CorrectOption: 2},
		{Text: "What is the largest mammal in the world?", Options: []string{"African Elephant", "Blue Whale", "Giraffe", "Hippopotamus"}, CorrectOption: 1},
		{Text: "Which programming language is known for its use in web development?", Options: []string{"Python", "Java", "JavaScript", "C++"}, CorrectOption: 2},
		{Text: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, CorrectOption: 2},
		{Text: "In which year did World War II end?", Options: []string{"1944", "1945", "1946", "1947"}, CorrectOption: 1},
	}
}
