package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

func (s *Store) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	if _, err := s.db.NewInsert().Model(w).Exec(ctx); err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (s *Store) WalletByUser(ctx context.Context, userID uuid.UUID) (domain.Wallet, error) {
	var w domain.Wallet
	err := s.db.NewSelect().Model(&w).Where("w.user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Wallet{}, domain.NotFound("wallet not found")
	}
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("select wallet: %w", err)
	}
	return w, nil
}

// CreditWallet applies delta atomically. The balance guard sits in the
// WHERE clause so two concurrent debits can never race past zero; the
// CHECK constraint on the table backs it up.
func (s *Store) CreditWallet(ctx context.Context, userID uuid.UUID, delta int64) error {
	res, err := s.db.NewUpdate().
		Model((*domain.Wallet)(nil)).
		Set("token_balance = token_balance + ?", delta).
		Set("updated_at = now()").
		Where("user_id = ?", userID).
		Where("token_balance + ? >= 0", delta).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.WalletByUser(ctx, userID); err != nil {
			return err
		}
		return domain.Conflict("insufficient token balance")
	}
	return nil
}

func (s *Store) TopWallets(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries := make([]domain.LeaderboardEntry, 0, limit)
	err := s.db.NewSelect().
		TableExpr("wallets AS w").
		ColumnExpr("w.user_id AS user_id").
		ColumnExpr("u.name AS name").
		ColumnExpr("w.token_balance AS token_balance").
		Join("JOIN users AS u ON u.id = w.user_id").
		OrderExpr("w.token_balance DESC, u.name ASC").
		Limit(limit).
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("select top wallets: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
