package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Great2008/reads/internal/domain"
)

// AnswerKeyLoader reads answer keys straight from Postgres over pgx.
// Grading hits this on every cache miss, so it stays off the ORM and
// fetches only the two columns it needs.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id::text, correct_option FROM quiz_questions WHERE lesson_id = $1::uuid`,
		lessonID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()

	key := domain.AnswerKey{}
	for rows.Next() {
		var questionID, correct string
		if err := rows.Scan(&questionID, &correct); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		key[questionID] = correct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	if len(key) == 0 {
		return nil, domain.NotFound("no quiz for this lesson")
	}
	return key, nil
}
