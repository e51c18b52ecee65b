package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

func (s *Store) CreateLesson(ctx context.Context, l *domain.Lesson) error {
	if _, err := s.db.NewInsert().Model(l).Exec(ctx); err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (s *Store) LessonByID(ctx context.Context, id uuid.UUID) (domain.Lesson, error) {
	var l domain.Lesson
	err := s.db.NewSelect().Model(&l).Where("l.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, domain.NotFound("lesson not found")
	}
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("select lesson: %w", err)
	}
	return l, nil
}

func (s *Store) Lessons(ctx context.Context) ([]domain.Lesson, error) {
	lessons := make([]domain.Lesson, 0)
	err := s.db.NewSelect().
		Model(&lessons).
		Order("category ASC", "order_index ASC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}
	return lessons, nil
}

func (s *Store) LessonsByCategory(ctx context.Context, category string) ([]domain.Lesson, error) {
	lessons := make([]domain.Lesson, 0)
	err := s.db.NewSelect().
		Model(&lessons).
		Where("l.category = ?", category).
		Order("order_index ASC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select lessons by category: %w", err)
	}
	return lessons, nil
}

func (s *Store) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	summaries := make([]domain.CategorySummary, 0)
	err := s.db.NewSelect().
		TableExpr("lessons AS l").
		ColumnExpr("l.category AS category").
		ColumnExpr("count(*) AS lesson_count").
		GroupExpr("l.category").
		OrderExpr("l.category ASC").
		Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return summaries, nil
}

func (s *Store) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*domain.Lesson)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("lesson not found")
	}
	return nil
}
