package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a registered account. The first account ever created is
// promoted to admin so a fresh deployment can bootstrap its content.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	IsAdmin      bool      `bun:"is_admin,notnull" json:"is_admin"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Wallet holds a user's token balance. One row per user, created at
// signup; the balance is only ever moved through guarded updates so it
// can never go negative.
type Wallet struct {
	bun.BaseModel `bun:"table:wallets,alias:w"`

	UserID       uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	TokenBalance int64     `bun:"token_balance,notnull" json:"token_balance"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Lesson is a unit of learning content grouped under a category.
type Lesson struct {
	bun.BaseModel `bun:"table:lessons,alias:l"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Category   string    `bun:"category,notnull" json:"category"`
	Title      string    `bun:"title,notnull" json:"title"`
	Content    string    `bun:"content,notnull" json:"content"`
	VideoURL   string    `bun:"video_url,nullzero" json:"video_url,omitempty"`
	OrderIndex int       `bun:"order_index,notnull" json:"order_index"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

// QuizQuestion is a multiple-choice question attached to a lesson.
// CorrectOption must be one of Options; Position fixes display order.
type QuizQuestion struct {
	bun.BaseModel `bun:"table:quiz_questions,alias:q"`

	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	LessonID      uuid.UUID `bun:"lesson_id,notnull,type:uuid" json:"lesson_id"`
	Question      string    `bun:"question,notnull" json:"question"`
	Options       []string  `bun:"options,notnull,type:jsonb" json:"options"`
	CorrectOption string    `bun:"correct_option,notnull" json:"correct_option"`
	Position      int       `bun:"position,notnull" json:"position"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// LessonProgress tracks one user's latest state for one lesson. It is
// upserted on every graded submission; IsCompleted never reverts to
// false and CompletedAt keeps the first passing time.
type LessonProgress struct {
	bun.BaseModel `bun:"table:lesson_progress,alias:lp"`

	UserID      uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id"`
	LessonID    uuid.UUID  `bun:"lesson_id,pk,type:uuid" json:"lesson_id"`
	IsCompleted bool       `bun:"is_completed,notnull" json:"is_completed"`
	LastScore   int        `bun:"last_score,notnull" json:"last_score"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// QuizResult is an append-only record of one graded submission.
type QuizResult struct {
	bun.BaseModel `bun:"table:quiz_results,alias:r"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	LessonID     uuid.UUID `bun:"lesson_id,notnull,type:uuid" json:"lesson_id"`
	Score        int       `bun:"score,notnull" json:"score"`
	CorrectCount int       `bun:"correct_count,notnull" json:"correct_count"`
	WrongCount   int       `bun:"wrong_count,notnull" json:"wrong_count"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Reward is the ledger of token movements. Quiz rewards carry the
// lesson they were earned for; manual admin grants leave LessonID nil
// and explain themselves in Reason. A partial unique index over
// (user_id, lesson_id) guarantees at most one quiz reward per lesson
// per user regardless of concurrent submissions.
type Reward struct {
	bun.BaseModel `bun:"table:rewards,alias:rw"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID       uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	LessonID     *uuid.UUID `bun:"lesson_id,type:uuid" json:"lesson_id,omitempty"`
	TokensEarned int64      `bun:"tokens_earned,notnull" json:"tokens_earned"`
	Reason       string     `bun:"reason,notnull" json:"reason,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull" json:"created_at"`
}

// AnswerKey maps question IDs (as strings) to their correct option for
// one lesson. Its length is the grading denominator.
type AnswerKey map[string]string

// AnswerSubmission is one (question, selected option) pair from a quiz
// submission. Question IDs that are not in the lesson's answer key are
// ignored during grading.
type AnswerSubmission struct {
	QuestionID string `json:"question_id"`
	Selected   string `json:"selected"`
}

// SubmissionResult is the outcome of grading one submission.
// Correct+Wrong always equals the answer-key size, and TokensAwarded is
// non-zero only on the first passing submission for the lesson.
type SubmissionResult struct {
	Score         int   `json:"score"`
	Correct       int   `json:"correct"`
	Wrong         int   `json:"wrong"`
	TokensAwarded int64 `json:"tokens_awarded"`
}

// CategorySummary is one row of the category listing.
type CategorySummary struct {
	Category    string `json:"category"`
	LessonCount int    `json:"lesson_count"`
}

// QuizQuestionView is a question as served to learners, without the
// correct option.
type QuizQuestionView struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Options  []string  `json:"options"`
	Position int       `json:"position"`
}

// ProgressEntry joins a progress row with its lesson for display.
type ProgressEntry struct {
	LessonID    uuid.UUID  `json:"lesson_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	IsCompleted bool       `json:"is_completed"`
	LastScore   int        `json:"last_score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RewardEntry joins a reward row with its lesson title for display.
// Manual grants have no lesson and carry the admin's reason instead.
type RewardEntry struct {
	ID           uuid.UUID  `json:"id"`
	LessonID     *uuid.UUID `json:"lesson_id,omitempty"`
	LessonTitle  string     `json:"lesson_title,omitempty"`
	TokensEarned int64      `json:"tokens_earned"`
	Reason       string     `json:"reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ProfileStats summarizes a user's learning activity.
type ProfileStats struct {
	LessonsCompleted int `json:"lessons_completed"`
	QuizzesTaken     int `json:"quizzes_taken"`
}

// LeaderboardEntry is one ranked row of the token leaderboard.
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	TokenBalance int64     `json:"token_balance"`
}

// Leaderboard is the ordered top-N snapshot pushed to websocket
// subscribers and served over REST.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}
