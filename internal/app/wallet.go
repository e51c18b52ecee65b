package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// WalletService serves balances and the reward ledger, and performs
// manual token grants for admins.
type WalletService struct {
	store Store
	board *LeaderboardService
}

func NewWalletService(store Store, board *LeaderboardService) *WalletService {
	return &WalletService{store: store, board: board}
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (domain.Wallet, error) {
	return s.store.WalletByUser(ctx, userID)
}

// History lists the user's most recent rewards, newest first.
func (s *WalletService) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.store.RewardHistory(ctx, userID, limit)
}

// Summary reports the lifetime total of earned tokens. After lesson
// deletions this can differ from the balance, since deleting a lesson
// removes its reward rows but never claws tokens back.
func (s *WalletService) Summary(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.TotalTokensEarned(ctx, userID)
}

// Grant moves tokens on a user's wallet outside of quiz grading and
// records the movement in the ledger with the admin's reason. Negative
// amounts are corrections; the balance still may not go below zero.
func (s *WalletService) Grant(ctx context.Context, targetID uuid.UUID, amount int64, reason string) (domain.Reward, error) {
	reason = strings.TrimSpace(reason)
	if amount == 0 {
		return domain.Reward{}, domain.BadRequest("amount must not be zero")
	}
	if reason == "" {
		return domain.Reward{}, domain.BadRequest("reason is required")
	}

	reward := domain.Reward{
		ID:           uuid.New(),
		UserID:       targetID,
		TokensEarned: amount,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}
	err := s.store.InTx(ctx, func(tx Store) error {
		if err := tx.CreditWallet(ctx, targetID, amount); err != nil {
			return err
		}
		if _, err := tx.InsertReward(ctx, &reward); err != nil {
			return fmt.Errorf("insert grant: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Reward{}, err
	}

	s.board.TokenBalanceChanged(ctx)
	return reward, nil
}
