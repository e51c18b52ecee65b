package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// InsertReward appends to the ledger. Quiz rewards hit the partial
// unique index over (user_id, lesson_id), so under concurrent passing
// submissions exactly one insert lands and the rest report false.
// Manual grants (nil lesson) are outside the index and always land.
func (s *Store) InsertReward(ctx context.Context, rw *domain.Reward) (bool, error) {
	res, err := s.db.NewInsert().
		Model(rw).
		On("CONFLICT (user_id, lesson_id) WHERE lesson_id IS NOT NULL DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert reward: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) RewardHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEntry, error) {
	entries := make([]domain.RewardEntry, 0, limit)
	err := s.db.NewSelect().
		TableExpr("rewards AS rw").
		ColumnExpr("rw.id AS id").
		ColumnExpr("rw.lesson_id AS lesson_id").
		ColumnExpr("COALESCE(l.title, '') AS lesson_title").
		ColumnExpr("rw.tokens_earned AS tokens_earned").
		ColumnExpr("rw.reason AS reason").
		ColumnExpr("rw.created_at AS created_at").
		Join("LEFT JOIN lessons AS l ON l.id = rw.lesson_id").
		Where("rw.user_id = ?", userID).
		OrderExpr("rw.created_at DESC").
		Limit(limit).
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("select reward history: %w", err)
	}
	return entries, nil
}

func (s *Store) TotalTokensEarned(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.NewSelect().
		TableExpr("rewards AS rw").
		ColumnExpr("COALESCE(SUM(rw.tokens_earned), 0)").
		Where("rw.user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("sum rewards: %w", err)
	}
	return total, nil
}

func (s *Store) DeleteRewardsByLesson(ctx context.Context, lessonID uuid.UUID) error {
	_, err := s.db.NewDelete().
		Model((*domain.Reward)(nil)).
		Where("lesson_id = ?", lessonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete rewards: %w", err)
	}
	return nil
}
