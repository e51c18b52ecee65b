package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// Store is the persistence boundary for all services. Implementations
// live in internal/infra; the postgres one backs production and the
// memory one backs tests.
type Store interface {
	// InTx runs fn against a transaction-bound Store. All writes made
	// through that store commit together or not at all. Calling InTx on
	// an already transaction-bound store joins the open transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
	CountUsers(ctx context.Context) (int, error)
	SetUserAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error

	CreateWallet(ctx context.Context, w *domain.Wallet) error
	WalletByUser(ctx context.Context, userID uuid.UUID) (domain.Wallet, error)
	// CreditWallet moves the balance by delta (negative allowed). It
	// fails with a conflict when the balance would go below zero and
	// with not-found when the wallet row is missing.
	CreditWallet(ctx context.Context, userID uuid.UUID, delta int64) error
	TopWallets(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

	CreateLesson(ctx context.Context, l *domain.Lesson) error
	LessonByID(ctx context.Context, id uuid.UUID) (domain.Lesson, error)
	Lessons(ctx context.Context) ([]domain.Lesson, error)
	LessonsByCategory(ctx context.Context, category string) ([]domain.Lesson, error)
	Categories(ctx context.Context) ([]domain.CategorySummary, error)
	DeleteLesson(ctx context.Context, id uuid.UUID) error

	QuestionsByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.QuizQuestion, error)
	InsertQuestions(ctx context.Context, qs []domain.QuizQuestion) error
	// DeleteQuestionsByLesson reports how many questions were removed.
	DeleteQuestionsByLesson(ctx context.Context, lessonID uuid.UUID) (int, error)

	// UpsertProgress inserts or updates a progress row. is_completed is
	// sticky: once true it stays true, and completed_at keeps its first
	// value. last_score and updated_at always take the new values.
	UpsertProgress(ctx context.Context, p *domain.LessonProgress) error
	ProgressByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error)
	CountCompletedLessons(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteProgressByLesson(ctx context.Context, lessonID uuid.UUID) error

	InsertResult(ctx context.Context, r *domain.QuizResult) error
	CountResultsByUser(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteResultsByLesson(ctx context.Context, lessonID uuid.UUID) error

	// InsertReward reports whether the row was actually inserted. A
	// quiz reward (non-nil lesson) loses to an existing reward for the
	// same (user, lesson) and reports false; manual grants always land.
	InsertReward(ctx context.Context, rw *domain.Reward) (bool, error)
	RewardHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEntry, error)
	TotalTokensEarned(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteRewardsByLesson(ctx context.Context, lessonID uuid.UUID) error
}

// AnswerKeyLoader fetches a lesson's answer key from the backing store.
// Lesson IDs travel as strings so cache keys and map keys line up.
type AnswerKeyLoader interface {
	AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error)
}

// AnswerKeyCache is a read-through AnswerKeyLoader that can drop a
// lesson's cached key after its quiz changes.
type AnswerKeyCache interface {
	AnswerKeyLoader
	Invalidate(ctx context.Context, lessonID string) error
}

// LeaderboardCache serves the ranked top wallets, rebuilding from its
// loader when empty. Invalidate forces the next Top to rebuild.
type LeaderboardCache interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Invalidate(ctx context.Context) error
}
