package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// UpsertProgress records the latest attempt. Completion is sticky: the
// OR keeps is_completed true once set, and COALESCE keeps the first
// completion time.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.LessonProgress) error {
	_, err := s.db.NewInsert().
		Model(p).
		On("CONFLICT (user_id, lesson_id) DO UPDATE").
		Set("is_completed = lp.is_completed OR EXCLUDED.is_completed").
		Set("last_score = EXCLUDED.last_score").
		Set("completed_at = COALESCE(lp.completed_at, EXCLUDED.completed_at)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *Store) ProgressByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error) {
	entries := make([]domain.ProgressEntry, 0)
	err := s.db.NewSelect().
		TableExpr("lesson_progress AS lp").
		ColumnExpr("lp.lesson_id AS lesson_id").
		ColumnExpr("l.title AS title").
		ColumnExpr("l.category AS category").
		ColumnExpr("lp.is_completed AS is_completed").
		ColumnExpr("lp.last_score AS last_score").
		ColumnExpr("lp.completed_at AS completed_at").
		ColumnExpr("lp.updated_at AS updated_at").
		Join("JOIN lessons AS l ON l.id = lp.lesson_id").
		Where("lp.user_id = ?", userID).
		OrderExpr("lp.updated_at DESC").
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	return entries, nil
}

func (s *Store) CountCompletedLessons(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.db.NewSelect().
		Model((*domain.LessonProgress)(nil)).
		Where("user_id = ?", userID).
		Where("is_completed").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteProgressByLesson(ctx context.Context, lessonID uuid.UUID) error {
	_, err := s.db.NewDelete().
		Model((*domain.LessonProgress)(nil)).
		Where("lesson_id = ?", lessonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
