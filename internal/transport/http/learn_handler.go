package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

type LearnHandler struct {
	content *app.ContentService
	grading *app.GradingService
	board   *app.LeaderboardService
}

func NewLearnHandler(content *app.ContentService, grading *app.GradingService, board *app.LeaderboardService) *LearnHandler {
	return &LearnHandler{content: content, grading: grading, board: board}
}

func (h *LearnHandler) Categories(c *gin.Context) {
	categories, err := h.content.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *LearnHandler) LessonsByCategory(c *gin.Context) {
	lessons, err := h.content.LessonsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

func (h *LearnHandler) Lesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid lesson id"))
		return
	}
	lesson, err := h.content.Lesson(c.Request.Context(), lessonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *LearnHandler) Quiz(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid lesson id"))
		return
	}
	questions, err := h.content.Quiz(c.Request.Context(), lessonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

type submitQuizRequest struct {
	LessonID uuid.UUID         `json:"lesson_id" binding:"required"`
	Answers  []submittedAnswer `json:"answers"`
}

type submittedAnswer struct {
	QuestionID string `json:"question_id"`
	Selected   string `json:"selected"`
}

func (h *LearnHandler) SubmitQuiz(c *gin.Context) {
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.BadRequest(err.Error()))
		return
	}

	answers := make([]domain.AnswerSubmission, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.AnswerSubmission{
			QuestionID: a.QuestionID,
			Selected:   a.Selected,
		})
	}

	result, err := h.grading.SubmitQuiz(c.Request.Context(), currentUser(c).ID, req.LessonID, answers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LearnHandler) Progress(c *gin.Context) {
	entries, err := h.content.Progress(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *LearnHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.board.Top(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
