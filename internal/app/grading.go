package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// GradingService grades quiz submissions and settles their side
// effects: the attempt record, the once-per-lesson token reward and the
// progress upsert, all inside one transaction.
type GradingService struct {
	store        Store
	keys         AnswerKeyLoader
	board        *LeaderboardService
	passScore    int
	rewardTokens int64
}

func NewGradingService(store Store, keys AnswerKeyLoader, board *LeaderboardService, passScore int, rewardTokens int64) *GradingService {
	return &GradingService{
		store:        store,
		keys:         keys,
		board:        board,
		passScore:    passScore,
		rewardTokens: rewardTokens,
	}
}

// Grade scores answers against an answer key. Pairs for unknown
// question IDs are ignored, the last pair wins when a question is
// answered twice, and unanswered questions count as wrong. The score is
// correct*100/len(key) in integer arithmetic, so Correct+Wrong always
// equals len(key).
func Grade(key domain.AnswerKey, answers []domain.AnswerSubmission) domain.SubmissionResult {
	picked := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, ok := key[a.QuestionID]; ok {
			picked[a.QuestionID] = a.Selected
		}
	}

	correct := 0
	for questionID, selected := range picked {
		if key[questionID] == selected {
			correct++
		}
	}

	score := 0
	if len(key) > 0 {
		score = correct * 100 / len(key)
	}
	return domain.SubmissionResult{
		Score:   score,
		Correct: correct,
		Wrong:   len(key) - correct,
	}
}

// SubmitQuiz grades one submission for userID and persists the outcome.
// Every attempt appends a quiz result and refreshes progress; the first
// passing attempt per lesson additionally credits the reward, with the
// rewards table's unique index deciding who is first under concurrency.
func (s *GradingService) SubmitQuiz(ctx context.Context, userID, lessonID uuid.UUID, answers []domain.AnswerSubmission) (domain.SubmissionResult, error) {
	if len(answers) == 0 {
		return domain.SubmissionResult{}, domain.BadRequest("no answers submitted")
	}

	key, err := s.keys.AnswerKey(ctx, lessonID.String())
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	result := Grade(key, answers)
	passed := result.Score >= s.passScore
	now := time.Now().UTC()

	err = s.store.InTx(ctx, func(tx Store) error {
		if err := tx.InsertResult(ctx, &domain.QuizResult{
			ID:           uuid.New(),
			UserID:       userID,
			LessonID:     lessonID,
			Score:        result.Score,
			CorrectCount: result.Correct,
			WrongCount:   result.Wrong,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		if passed {
			inserted, err := tx.InsertReward(ctx, &domain.Reward{
				ID:           uuid.New(),
				UserID:       userID,
				LessonID:     &lessonID,
				TokensEarned: s.rewardTokens,
				CreatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("insert reward: %w", err)
			}
			if inserted {
				if err := tx.CreditWallet(ctx, userID, s.rewardTokens); err != nil {
					return fmt.Errorf("credit wallet: %w", err)
				}
				result.TokensAwarded = s.rewardTokens
			}
		}

		progress := &domain.LessonProgress{
			UserID:      userID,
			LessonID:    lessonID,
			IsCompleted: passed,
			LastScore:   result.Score,
			UpdatedAt:   now,
		}
		if passed {
			progress.CompletedAt = &now
		}
		if err := tx.UpsertProgress(ctx, progress); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}
		return nil
	})
	if err != nil {
		result.TokensAwarded = 0
		return domain.SubmissionResult{}, err
	}

	if result.TokensAwarded > 0 {
		s.board.TokenBalanceChanged(ctx)
	}
	return result, nil
}
