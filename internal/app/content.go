package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Great2008/reads/internal/domain"
)

// QuestionDraft is the admin input for one question of a quiz replace.
type QuestionDraft struct {
	Question      string
	Options       []string
	CorrectOption string
}

// ContentService manages lessons and their question sets. Writes that
// touch a lesson's questions invalidate that lesson's cached answer key
// after commit.
type ContentService struct {
	store Store
	keys  AnswerKeyCache
	log   *zap.Logger
}

func NewContentService(store Store, keys AnswerKeyCache, log *zap.Logger) *ContentService {
	return &ContentService{store: store, keys: keys, log: log}
}

func (s *ContentService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	return s.store.Categories(ctx)
}

// LessonsByCategory lists a category's lessons in display order. An
// unknown category is an empty list, not an error.
func (s *ContentService) LessonsByCategory(ctx context.Context, category string) ([]domain.Lesson, error) {
	return s.store.LessonsByCategory(ctx, category)
}

func (s *ContentService) Lesson(ctx context.Context, id uuid.UUID) (domain.Lesson, error) {
	return s.store.LessonByID(ctx, id)
}

func (s *ContentService) AllLessons(ctx context.Context) ([]domain.Lesson, error) {
	return s.store.Lessons(ctx)
}

func (s *ContentService) CreateLesson(ctx context.Context, category, title, content, videoURL string, orderIndex int) (domain.Lesson, error) {
	lesson := domain.Lesson{
		ID:         uuid.New(),
		Category:   strings.TrimSpace(category),
		Title:      strings.TrimSpace(title),
		Content:    content,
		VideoURL:   strings.TrimSpace(videoURL),
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	}
	if lesson.Category == "" || lesson.Title == "" || lesson.Content == "" {
		return domain.Lesson{}, domain.BadRequest("category, title and content are required")
	}
	if err := s.store.CreateLesson(ctx, &lesson); err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}

// DeleteLesson removes the lesson and everything hanging off it in one
// transaction, children first, so a failure halfway leaves no orphans.
// Earned tokens stay on wallets; only the reward rows go.
func (s *ContentService) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.DeleteQuestionsByLesson(ctx, id); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := tx.DeleteProgressByLesson(ctx, id); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		if err := tx.DeleteRewardsByLesson(ctx, id); err != nil {
			return fmt.Errorf("delete rewards: %w", err)
		}
		if err := tx.DeleteResultsByLesson(ctx, id); err != nil {
			return fmt.Errorf("delete results: %w", err)
		}
		return tx.DeleteLesson(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateKey(ctx, id)
	return nil
}

// Progress lists the caller's per-lesson progress, most recent first.
func (s *ContentService) Progress(ctx context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error) {
	return s.store.ProgressByUser(ctx, userID)
}

// Quiz returns the lesson's questions for learners, without correct
// options. A lesson with no questions has no quiz.
func (s *ContentService) Quiz(ctx context.Context, lessonID uuid.UUID) ([]domain.QuizQuestionView, error) {
	questions, err := s.store.QuestionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.NotFound("no quiz for this lesson")
	}
	views := make([]domain.QuizQuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, domain.QuizQuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
			Position: q.Position,
		})
	}
	return views, nil
}

// QuizWithAnswers is the admin view, correct options included.
func (s *ContentService) QuizWithAnswers(ctx context.Context, lessonID uuid.UUID) ([]domain.QuizQuestion, error) {
	questions, err := s.store.QuestionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.NotFound("no quiz for this lesson")
	}
	return questions, nil
}

// ReplaceQuiz swaps the lesson's whole question set in one transaction.
// Readers see either the old set or the new one, never a mix.
func (s *ContentService) ReplaceQuiz(ctx context.Context, lessonID uuid.UUID, drafts []QuestionDraft) ([]domain.QuizQuestion, error) {
	if len(drafts) == 0 {
		return nil, domain.BadRequest("a quiz needs at least one question")
	}
	now := time.Now().UTC()
	questions := make([]domain.QuizQuestion, 0, len(drafts))
	for i, d := range drafts {
		if err := validateDraft(d); err != nil {
			return nil, err
		}
		questions = append(questions, domain.QuizQuestion{
			ID:            uuid.New(),
			LessonID:      lessonID,
			Question:      strings.TrimSpace(d.Question),
			Options:       d.Options,
			CorrectOption: d.CorrectOption,
			Position:      i,
			CreatedAt:     now,
		})
	}

	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.LessonByID(ctx, lessonID); err != nil {
			return err
		}
		if _, err := tx.DeleteQuestionsByLesson(ctx, lessonID); err != nil {
			return fmt.Errorf("delete old questions: %w", err)
		}
		return tx.InsertQuestions(ctx, questions)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateKey(ctx, lessonID)
	return questions, nil
}

// DeleteQuiz removes the lesson's question set; the lesson itself and
// any earned rewards stay.
func (s *ContentService) DeleteQuiz(ctx context.Context, lessonID uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		n, err := tx.DeleteQuestionsByLesson(ctx, lessonID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound("no quiz for this lesson")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateKey(ctx, lessonID)
	return nil
}

// invalidateKey drops the cached answer key after a committed write.
// A failed invalidation only delays freshness until the TTL expires, so
// it is logged rather than failing the request.
func (s *ContentService) invalidateKey(ctx context.Context, lessonID uuid.UUID) {
	if err := s.keys.Invalidate(ctx, lessonID.String()); err != nil {
		s.log.Warn("answer key invalidation failed",
			zap.String("lesson_id", lessonID.String()),
			zap.Error(err))
	}
}

func validateDraft(d QuestionDraft) error {
	if strings.TrimSpace(d.Question) == "" {
		return domain.BadRequest("question text is required")
	}
	if len(d.Options) < 2 {
		return domain.BadRequest("a question needs at least two options")
	}
	seen := make(map[string]struct{}, len(d.Options))
	for _, opt := range d.Options {
		if strings.TrimSpace(opt) == "" {
			return domain.BadRequest("options must not be empty")
		}
		if _, dup := seen[opt]; dup {
			return domain.BadRequest("options must be distinct")
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[d.CorrectOption]; !ok {
		return domain.BadRequest("correct_option must be one of the options")
	}
	return nil
}
