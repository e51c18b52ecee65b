package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
	"github.com/Great2008/reads/internal/infra/memory"
)

func newWalletFixture(t *testing.T) (*app.WalletService, *memory.Store, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	board := app.NewLeaderboardService(memory.NewLeaderboardCache(store, 10, time.Minute), 10, zap.NewNop())

	userID := uuid.New()
	now := time.Now().UTC()
	if err := store.CreateUser(ctx, &domain.User{ID: userID, Name: "Alice", Email: "alice@example.com", CreatedAt: now}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateWallet(ctx, &domain.Wallet{UserID: userID, UpdatedAt: now}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return app.NewWalletService(store, board), store, userID
}

func TestGrantMovesTokensAndWritesLedger(t *testing.T) {
	ctx := context.Background()
	wallet, _, userID := newWalletFixture(t)

	reward, err := wallet.Grant(ctx, userID, 50, "launch promo")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if reward.TokensEarned != 50 || reward.LessonID != nil {
		t.Fatalf("expected lessonless grant of 50, got %+v", reward)
	}

	w, err := wallet.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if w.TokenBalance != 50 {
		t.Fatalf("expected balance 50, got %d", w.TokenBalance)
	}

	history, err := wallet.History(ctx, userID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Reason != "launch promo" {
		t.Fatalf("expected grant in the ledger, got %+v", history)
	}

	total, err := wallet.Summary(ctx, userID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if total != 50 {
		t.Fatalf("expected total 50, got %d", total)
	}

	// Negative grants are corrections.
	if _, err := wallet.Grant(ctx, userID, -20, "refund reversal"); err != nil {
		t.Fatalf("negative grant: %v", err)
	}
	w, _ = wallet.Balance(ctx, userID)
	if w.TokenBalance != 30 {
		t.Fatalf("expected balance 30, got %d", w.TokenBalance)
	}
	if total, _ := wallet.Summary(ctx, userID); total != 30 {
		t.Fatalf("expected lifetime total 30, got %d", total)
	}
}

func TestGrantValidation(t *testing.T) {
	ctx := context.Background()
	wallet, _, userID := newWalletFixture(t)

	if _, err := wallet.Grant(ctx, userID, 0, "nothing"); !domain.IsKind(err, domain.KindBadRequest) {
		t.Fatalf("expected bad request for zero amount, got %v", err)
	}
	if _, err := wallet.Grant(ctx, userID, 10, "   "); !domain.IsKind(err, domain.KindBadRequest) {
		t.Fatalf("expected bad request for blank reason, got %v", err)
	}
	if _, err := wallet.Grant(ctx, uuid.New(), 10, "promo"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestGrantCannotOverdraw(t *testing.T) {
	ctx := context.Background()
	wallet, store, userID := newWalletFixture(t)

	if _, err := wallet.Grant(ctx, userID, 20, "promo"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	_, err := wallet.Grant(ctx, userID, -30, "overdraw attempt")
	if !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The failed grant must leave neither a balance change nor a ledger row.
	w, _ := store.WalletByUser(ctx, userID)
	if w.TokenBalance != 20 {
		t.Fatalf("expected balance unchanged at 20, got %d", w.TokenBalance)
	}
	history, _ := wallet.History(ctx, userID, 0)
	if len(history) != 1 {
		t.Fatalf("expected rolled back ledger, got %+v", history)
	}
}

func TestHistoryLimits(t *testing.T) {
	ctx := context.Background()
	wallet, store, userID := newWalletFixture(t)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if _, err := store.InsertReward(ctx, &domain.Reward{
			ID:           uuid.New(),
			UserID:       userID,
			TokensEarned: int64(i + 1),
			Reason:       "grant",
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("insert reward: %v", err)
		}
	}

	history, err := wallet.History(ctx, userID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	// Newest first.
	if history[0].TokensEarned != 3 || history[1].TokensEarned != 2 {
		t.Fatalf("expected newest first, got %+v", history)
	}
}
