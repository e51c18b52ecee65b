package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

type AdminHandler struct {
	users   *app.UserService
	content *app.ContentService
	wallet  *app.WalletService
}

func NewAdminHandler(users *app.UserService, content *app.ContentService, wallet *app.WalletService) *AdminHandler {
	return &AdminHandler{users: users, content: content, wallet: wallet}
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type promoteRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

func (h *AdminHandler) Promote(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid user id"))
		return
	}

	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.BadRequest(err.Error()))
		return
	}

	if err := h.users.SetAdmin(c.Request.Context(), currentUser(c).ID, targetID, *req.IsAdmin); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "is_admin": *req.IsAdmin})
}

func (h *AdminHandler) Lessons(c *gin.Context) {
	lessons, err := h.content.AllLessons(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

type lessonRequest struct {
	Category   string `json:"category" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	VideoURL   string `json:"video_url"`
	OrderIndex int    `json:"order_index"`
}

func (h *AdminHandler) CreateLesson(c *gin.Context) {
	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.BadRequest(err.Error()))
		return
	}

	lesson, err := h.content.CreateLesson(c.Request.Context(), req.Category, req.Title, req.Content, req.VideoURL, req.OrderIndex)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *AdminHandler) DeleteLesson(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid lesson id"))
		return
	}
	if err := h.content.DeleteLesson(c.Request.Context(), lessonID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Quiz(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid lesson id"))
		return
	}
	questions, err := h.content.QuizWithAnswers(c.Request.Context(), lessonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

type quizRequest struct {
	LessonID  uuid.UUID         `json:"lesson_id" binding:"required"`
	Questions []questionRequest `json:"questions" binding:"required,min=1,dive"`
}

type questionRequest struct {
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectOption string   `json:"correct_option" binding:"required"`
}

func (h *AdminHandler) ReplaceQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.BadRequest(err.Error()))
		return
	}

	drafts := make([]app.QuestionDraft, 0, len(req.Questions))
	for _, q := range req.Questions {
		drafts = append(drafts, app.QuestionDraft{
			Question:      q.Question,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}

	questions, err := h.content.ReplaceQuiz(c.Request.Context(), req.LessonID, drafts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, questions)
}

func (h *AdminHandler) DeleteQuiz(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lesson_id"))
	if err != nil {
		writeError(c, domain.BadRequest("invalid lesson id"))
		return
	}
	if err := h.content.DeleteQuiz(c.Request.Context(), lessonID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type grantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Amount int64     `json:"amount" binding:"required"`
	Reason string    `json:"reason" binding:"required"`
}

func (h *AdminHandler) GrantTokens(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.BadRequest(err.Error()))
		return
	}

	reward, err := h.wallet.Grant(c.Request.Context(), req.UserID, req.Amount, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}
