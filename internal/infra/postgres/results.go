package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

func (s *Store) InsertResult(ctx context.Context, r *domain.QuizResult) error {
	if _, err := s.db.NewInsert().Model(r).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

func (s *Store) CountResultsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.db.NewSelect().
		Model((*domain.QuizResult)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quiz results: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteResultsByLesson(ctx context.Context, lessonID uuid.UUID) error {
	_, err := s.db.NewDelete().
		Model((*domain.QuizResult)(nil)).
		Where("lesson_id = ?", lessonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz results: %w", err)
	}
	return nil
}
