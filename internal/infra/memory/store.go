package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

// Store is an in-memory app.Store for tests and local development. One
// mutex serializes everything; InTx snapshots the state and restores it
// when fn fails, which matches the all-or-nothing behavior of the
// Postgres store.
type Store struct {
	mu *sync.Mutex // nil when transaction-bound
	st *state
}

type state struct {
	users     map[uuid.UUID]domain.User
	wallets   map[uuid.UUID]domain.Wallet
	lessons   map[uuid.UUID]domain.Lesson
	questions map[uuid.UUID]domain.QuizQuestion
	progress  map[progressKey]domain.LessonProgress
	results   []domain.QuizResult
	rewards   []domain.Reward
}

type progressKey struct {
	userID   uuid.UUID
	lessonID uuid.UUID
}

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			users:     make(map[uuid.UUID]domain.User),
			wallets:   make(map[uuid.UUID]domain.Wallet),
			lessons:   make(map[uuid.UUID]domain.Lesson),
			questions: make(map[uuid.UUID]domain.QuizQuestion),
			progress:  make(map[progressKey]domain.LessonProgress),
		},
	}
}

// lock acquires the store mutex unless the store is transaction-bound,
// in which case InTx already holds it.
func (s *Store) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) InTx(_ context.Context, fn func(app.Store) error) error {
	if s.mu == nil {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&Store{st: s.st}); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (st *state) clone() *state {
	c := &state{
		users:     make(map[uuid.UUID]domain.User, len(st.users)),
		wallets:   make(map[uuid.UUID]domain.Wallet, len(st.wallets)),
		lessons:   make(map[uuid.UUID]domain.Lesson, len(st.lessons)),
		questions: make(map[uuid.UUID]domain.QuizQuestion, len(st.questions)),
		progress:  make(map[progressKey]domain.LessonProgress, len(st.progress)),
		results:   make([]domain.QuizResult, len(st.results)),
		rewards:   make([]domain.Reward, len(st.rewards)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.wallets {
		c.wallets[k] = v
	}
	for k, v := range st.lessons {
		c.lessons[k] = v
	}
	for k, v := range st.questions {
		c.questions[k] = v
	}
	for k, v := range st.progress {
		c.progress[k] = v
	}
	copy(c.results, st.results)
	copy(c.rewards, st.rewards)
	return c
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	defer s.lock()()
	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return domain.Conflict("email already registered")
		}
	}
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return domain.User{}, domain.NotFound("user not found")
	}
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (domain.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFound("user not found")
}

func (s *Store) Users(_ context.Context) ([]domain.User, error) {
	defer s.lock()()
	users := make([]domain.User, 0, len(s.st.users))
	for _, u := range s.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	defer s.lock()()
	return len(s.st.users), nil
}

func (s *Store) SetUserAdmin(_ context.Context, id uuid.UUID, isAdmin bool) error {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return domain.NotFound("user not found")
	}
	u.IsAdmin = isAdmin
	s.st.users[id] = u
	return nil
}

func (s *Store) CreateWallet(_ context.Context, w *domain.Wallet) error {
	defer s.lock()()
	s.st.wallets[w.UserID] = *w
	return nil
}

func (s *Store) WalletByUser(_ context.Context, userID uuid.UUID) (domain.Wallet, error) {
	defer s.lock()()
	w, ok := s.st.wallets[userID]
	if !ok {
		return domain.Wallet{}, domain.NotFound("wallet not found")
	}
	return w, nil
}

func (s *Store) CreditWallet(_ context.Context, userID uuid.UUID, delta int64) error {
	defer s.lock()()
	w, ok := s.st.wallets[userID]
	if !ok {
		return domain.NotFound("wallet not found")
	}
	if w.TokenBalance+delta < 0 {
		return domain.Conflict("insufficient token balance")
	}
	w.TokenBalance += delta
	w.UpdatedAt = time.Now().UTC()
	s.st.wallets[userID] = w
	return nil
}

func (s *Store) TopWallets(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	defer s.lock()()
	entries := make([]domain.LeaderboardEntry, 0, len(s.st.wallets))
	for _, w := range s.st.wallets {
		u, ok := s.st.users[w.UserID]
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:       w.UserID,
			Name:         u.Name,
			TokenBalance: w.TokenBalance,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TokenBalance != entries[j].TokenBalance {
			return entries[i].TokenBalance > entries[j].TokenBalance
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Store) CreateLesson(_ context.Context, l *domain.Lesson) error {
	defer s.lock()()
	s.st.lessons[l.ID] = *l
	return nil
}

func (s *Store) LessonByID(_ context.Context, id uuid.UUID) (domain.Lesson, error) {
	defer s.lock()()
	l, ok := s.st.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.NotFound("lesson not found")
	}
	return l, nil
}

func (s *Store) Lessons(_ context.Context) ([]domain.Lesson, error) {
	defer s.lock()()
	lessons := make([]domain.Lesson, 0, len(s.st.lessons))
	for _, l := range s.st.lessons {
		lessons = append(lessons, l)
	}
	sortLessons(lessons, true)
	return lessons, nil
}

func (s *Store) LessonsByCategory(_ context.Context, category string) ([]domain.Lesson, error) {
	defer s.lock()()
	lessons := make([]domain.Lesson, 0)
	for _, l := range s.st.lessons {
		if l.Category == category {
			lessons = append(lessons, l)
		}
	}
	sortLessons(lessons, false)
	return lessons, nil
}

func (s *Store) Categories(_ context.Context) ([]domain.CategorySummary, error) {
	defer s.lock()()
	counts := make(map[string]int)
	for _, l := range s.st.lessons {
		counts[l.Category]++
	}
	summaries := make([]domain.CategorySummary, 0, len(counts))
	for category, n := range counts {
		summaries = append(summaries, domain.CategorySummary{Category: category, LessonCount: n})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Category < summaries[j].Category
	})
	return summaries, nil
}

func (s *Store) DeleteLesson(_ context.Context, id uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.st.lessons[id]; !ok {
		return domain.NotFound("lesson not found")
	}
	delete(s.st.lessons, id)
	return nil
}

func (s *Store) QuestionsByLesson(_ context.Context, lessonID uuid.UUID) ([]domain.QuizQuestion, error) {
	defer s.lock()()
	questions := make([]domain.QuizQuestion, 0)
	for _, q := range s.st.questions {
		if q.LessonID == lessonID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
	return questions, nil
}

func (s *Store) InsertQuestions(_ context.Context, qs []domain.QuizQuestion) error {
	defer s.lock()()
	for _, q := range qs {
		s.st.questions[q.ID] = q
	}
	return nil
}

func (s *Store) DeleteQuestionsByLesson(_ context.Context, lessonID uuid.UUID) (int, error) {
	defer s.lock()()
	n := 0
	for id, q := range s.st.questions {
		if q.LessonID == lessonID {
			delete(s.st.questions, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) UpsertProgress(_ context.Context, p *domain.LessonProgress) error {
	defer s.lock()()
	key := progressKey{userID: p.UserID, lessonID: p.LessonID}
	next := *p
	if existing, ok := s.st.progress[key]; ok {
		next.IsCompleted = existing.IsCompleted || p.IsCompleted
		if existing.CompletedAt != nil {
			next.CompletedAt = existing.CompletedAt
		}
	}
	s.st.progress[key] = next
	return nil
}

func (s *Store) ProgressByUser(_ context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error) {
	defer s.lock()()
	entries := make([]domain.ProgressEntry, 0)
	for key, p := range s.st.progress {
		if key.userID != userID {
			continue
		}
		lesson, ok := s.st.lessons[key.lessonID]
		if !ok {
			continue
		}
		entries = append(entries, domain.ProgressEntry{
			LessonID:    p.LessonID,
			Title:       lesson.Title,
			Category:    lesson.Category,
			IsCompleted: p.IsCompleted,
			LastScore:   p.LastScore,
			CompletedAt: p.CompletedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].Title < entries[j].Title
	})
	return entries, nil
}

func (s *Store) CountCompletedLessons(_ context.Context, userID uuid.UUID) (int, error) {
	defer s.lock()()
	n := 0
	for key, p := range s.st.progress {
		if key.userID == userID && p.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteProgressByLesson(_ context.Context, lessonID uuid.UUID) error {
	defer s.lock()()
	for key := range s.st.progress {
		if key.lessonID == lessonID {
			delete(s.st.progress, key)
		}
	}
	return nil
}

func (s *Store) InsertResult(_ context.Context, r *domain.QuizResult) error {
	defer s.lock()()
	s.st.results = append(s.st.results, *r)
	return nil
}

func (s *Store) CountResultsByUser(_ context.Context, userID uuid.UUID) (int, error) {
	defer s.lock()()
	n := 0
	for _, r := range s.st.results {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteResultsByLesson(_ context.Context, lessonID uuid.UUID) error {
	defer s.lock()()
	kept := s.st.results[:0]
	for _, r := range s.st.results {
		if r.LessonID != lessonID {
			kept = append(kept, r)
		}
	}
	s.st.results = kept
	return nil
}

func (s *Store) InsertReward(_ context.Context, rw *domain.Reward) (bool, error) {
	defer s.lock()()
	if rw.LessonID != nil {
		for _, existing := range s.st.rewards {
			if existing.UserID == rw.UserID && existing.LessonID != nil && *existing.LessonID == *rw.LessonID {
				return false, nil
			}
		}
	}
	s.st.rewards = append(s.st.rewards, *rw)
	return true, nil
}

func (s *Store) RewardHistory(_ context.Context, userID uuid.UUID, limit int) ([]domain.RewardEntry, error) {
	defer s.lock()()
	entries := make([]domain.RewardEntry, 0)
	for _, rw := range s.st.rewards {
		if rw.UserID != userID {
			continue
		}
		entry := domain.RewardEntry{
			ID:           rw.ID,
			LessonID:     rw.LessonID,
			TokensEarned: rw.TokensEarned,
			Reason:       rw.Reason,
			CreatedAt:    rw.CreatedAt,
		}
		if rw.LessonID != nil {
			if lesson, ok := s.st.lessons[*rw.LessonID]; ok {
				entry.LessonTitle = lesson.Title
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) TotalTokensEarned(_ context.Context, userID uuid.UUID) (int64, error) {
	defer s.lock()()
	var total int64
	for _, rw := range s.st.rewards {
		if rw.UserID == userID {
			total += rw.TokensEarned
		}
	}
	return total, nil
}

func (s *Store) DeleteRewardsByLesson(_ context.Context, lessonID uuid.UUID) error {
	defer s.lock()()
	kept := s.st.rewards[:0]
	for _, rw := range s.st.rewards {
		if rw.LessonID == nil || *rw.LessonID != lessonID {
			kept = append(kept, rw)
		}
	}
	s.st.rewards = kept
	return nil
}

func sortLessons(lessons []domain.Lesson, byCategory bool) {
	sort.Slice(lessons, func(i, j int) bool {
		if byCategory && lessons[i].Category != lessons[j].Category {
			return lessons[i].Category < lessons[j].Category
		}
		if lessons[i].OrderIndex != lessons[j].OrderIndex {
			return lessons[i].OrderIndex < lessons[j].OrderIndex
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
}
