package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

func (s *Store) QuestionsByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.QuizQuestion, error) {
	questions := make([]domain.QuizQuestion, 0)
	err := s.db.NewSelect().
		Model(&questions).
		Where("q.lesson_id = ?", lessonID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	return questions, nil
}

func (s *Store) InsertQuestions(ctx context.Context, qs []domain.QuizQuestion) error {
	if len(qs) == 0 {
		return nil
	}
	if _, err := s.db.NewInsert().Model(&qs).Exec(ctx); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

func (s *Store) DeleteQuestionsByLesson(ctx context.Context, lessonID uuid.UUID) (int, error) {
	res, err := s.db.NewDelete().
		Model((*domain.QuizQuestion)(nil)).
		Where("lesson_id = ?", lessonID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
