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

type countingKeyLoader struct {
	inner app.AnswerKeyLoader
	calls int
}

func (l *countingKeyLoader) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	l.calls++
	return l.inner.AnswerKey(ctx, lessonID)
}

func newContentService(store *memory.Store) (*app.ContentService, *countingKeyLoader) {
	loader := &countingKeyLoader{inner: memory.NewStoreAnswerKeyLoader(store)}
	keys := memory.NewAnswerKeyCache(loader, time.Minute)
	return app.NewContentService(store, keys, zap.NewNop()), loader
}

func draftQuestions() []app.QuestionDraft {
	return []app.QuestionDraft{
		{Question: "What is a budget?", Options: []string{"A plan", "A loan"}, CorrectOption: "A plan"},
		{Question: "What grows savings?", Options: []string{"Interest", "Fees"}, CorrectOption: "Interest"},
	}
}

func TestCreateLessonValidation(t *testing.T) {
	ctx := context.Background()
	content, _ := newContentService(memory.NewStore())

	lesson, err := content.CreateLesson(ctx, " saving ", " Budgeting basics ", "Spend less than you earn.", "", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lesson.Category != "saving" || lesson.Title != "Budgeting basics" {
		t.Fatalf("expected trimmed fields, got %+v", lesson)
	}

	if _, err := content.CreateLesson(ctx, "saving", "   ", "body", "", 0); !domain.IsKind(err, domain.KindBadRequest) {
		t.Fatalf("expected bad request for blank title, got %v", err)
	}
}

func TestReplaceQuizValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	content, _ := newContentService(store)

	lesson, err := content.CreateLesson(ctx, "saving", "Budgeting", "body", "", 0)
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	cases := []struct {
		name   string
		drafts []app.QuestionDraft
	}{
		{"no questions", nil},
		{"blank question", []app.QuestionDraft{{Question: " ", Options: []string{"a", "b"}, CorrectOption: "a"}}},
		{"single option", []app.QuestionDraft{{Question: "q", Options: []string{"a"}, CorrectOption: "a"}}},
		{"empty option", []app.QuestionDraft{{Question: "q", Options: []string{"a", " "}, CorrectOption: "a"}}},
		{"duplicate options", []app.QuestionDraft{{Question: "q", Options: []string{"a", "a"}, CorrectOption: "a"}}},
		{"correct option not offered", []app.QuestionDraft{{Question: "q", Options: []string{"a", "b"}, CorrectOption: "c"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := content.ReplaceQuiz(ctx, lesson.ID, tc.drafts); !domain.IsKind(err, domain.KindBadRequest) {
				t.Fatalf("expected bad request, got %v", err)
			}
		})
	}

	if _, err := content.ReplaceQuiz(ctx, uuid.New(), draftQuestions()); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found for unknown lesson, got %v", err)
	}
}

func TestReplaceQuizSwapsQuestionSet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	content, _ := newContentService(store)

	lesson, err := content.CreateLesson(ctx, "saving", "Budgeting", "body", "", 0)
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	first, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions())
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(first) != 2 || first[0].Position != 0 || first[1].Position != 1 {
		t.Fatalf("expected 2 positioned questions, got %+v", first)
	}

	second, err := content.ReplaceQuiz(ctx, lesson.ID, []app.QuestionDraft{
		{Question: "Replacement?", Options: []string{"yes", "no"}, CorrectOption: "yes"},
	})
	if err != nil {
		t.Fatalf("replace again: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 question, got %d", len(second))
	}

	current, err := content.QuizWithAnswers(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if len(current) != 1 || current[0].Question != "Replacement?" {
		t.Fatalf("expected only the replacement set, got %+v", current)
	}
}

func TestQuizHidesCorrectOptions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	content, _ := newContentService(store)

	lesson, _ := content.CreateLesson(ctx, "saving", "Budgeting", "body", "", 0)
	inserted, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions())
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	views, err := content.Quiz(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if len(views) != len(inserted) {
		t.Fatalf("expected %d views, got %d", len(inserted), len(views))
	}
	for i, v := range views {
		if v.ID != inserted[i].ID || v.Question != inserted[i].Question || len(v.Options) != len(inserted[i].Options) {
			t.Fatalf("view %d does not match question: %+v vs %+v", i, v, inserted[i])
		}
	}

	if _, err := content.Quiz(ctx, lesson.ID); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if _, err := content.Quiz(ctx, uuid.New()); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found for quizless lesson, got %v", err)
	}
}

func TestDeleteQuiz(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	content, _ := newContentService(store)

	lesson, _ := content.CreateLesson(ctx, "saving", "Budgeting", "body", "", 0)
	if err := content.DeleteQuiz(ctx, lesson.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found without questions, got %v", err)
	}

	if _, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := content.DeleteQuiz(ctx, lesson.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := content.Quiz(ctx, lesson.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}

	// The lesson itself stays.
	if _, err := content.Lesson(ctx, lesson.ID); err != nil {
		t.Fatalf("lesson should remain: %v", err)
	}
}

func TestDeleteLessonCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	content, _ := newContentService(store)

	userID := uuid.New()
	now := time.Now().UTC()
	if err := store.CreateUser(ctx, &domain.User{ID: userID, Name: "Alice", Email: "alice@example.com", CreatedAt: now}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateWallet(ctx, &domain.Wallet{UserID: userID, UpdatedAt: now}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	doomed, _ := content.CreateLesson(ctx, "saving", "Doomed", "body", "", 0)
	kept, _ := content.CreateLesson(ctx, "saving", "Kept", "body", "", 1)
	for _, lesson := range []domain.Lesson{doomed, kept} {
		if _, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions()); err != nil {
			t.Fatalf("replace: %v", err)
		}
		lessonID := lesson.ID
		if err := store.UpsertProgress(ctx, &domain.LessonProgress{UserID: userID, LessonID: lessonID, IsCompleted: true, LastScore: 100, CompletedAt: &now, UpdatedAt: now}); err != nil {
			t.Fatalf("progress: %v", err)
		}
		if err := store.InsertResult(ctx, &domain.QuizResult{ID: uuid.New(), UserID: userID, LessonID: lessonID, Score: 100, CorrectCount: 2, CreatedAt: now}); err != nil {
			t.Fatalf("result: %v", err)
		}
		if _, err := store.InsertReward(ctx, &domain.Reward{ID: uuid.New(), UserID: userID, LessonID: &lessonID, TokensEarned: 20, CreatedAt: now}); err != nil {
			t.Fatalf("reward: %v", err)
		}
	}

	if err := content.DeleteLesson(ctx, doomed.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}

	if _, err := content.Lesson(ctx, doomed.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected lesson gone, got %v", err)
	}
	if _, err := content.Quiz(ctx, doomed.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected questions gone, got %v", err)
	}

	progress, err := content.Progress(ctx, userID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 || progress[0].LessonID != kept.ID {
		t.Fatalf("expected only the kept lesson's progress, got %+v", progress)
	}

	completed, _ := store.CountCompletedLessons(ctx, userID)
	if completed != 1 {
		t.Fatalf("expected 1 completed lesson, got %d", completed)
	}
	attempts, _ := store.CountResultsByUser(ctx, userID)
	if attempts != 1 {
		t.Fatalf("expected 1 remaining attempt, got %d", attempts)
	}
	total, _ := store.TotalTokensEarned(ctx, userID)
	if total != 20 {
		t.Fatalf("expected the kept lesson's reward only, got %d", total)
	}

	if err := content.DeleteLesson(ctx, doomed.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}

func TestQuizWritesInvalidateAnswerKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	loader := &countingKeyLoader{inner: memory.NewStoreAnswerKeyLoader(store)}
	keys := memory.NewAnswerKeyCache(loader, time.Minute)
	content := app.NewContentService(store, keys, zap.NewNop())

	lesson, _ := content.CreateLesson(ctx, "saving", "Budgeting", "body", "", 0)
	if _, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, err := keys.AnswerKey(ctx, lesson.ID.String()); err != nil {
		t.Fatalf("warm key: %v", err)
	}
	if _, err := keys.AnswerKey(ctx, lesson.ID.String()); err != nil {
		t.Fatalf("cached key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected 1 load before invalidation, got %d", loader.calls)
	}

	if _, err := content.ReplaceQuiz(ctx, lesson.ID, draftQuestions()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := keys.AnswerKey(ctx, lesson.ID.String()); err != nil {
		t.Fatalf("reload key: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after quiz change, got %d loads", loader.calls)
	}
}
