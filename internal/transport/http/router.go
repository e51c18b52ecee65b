package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Great2008/reads/internal/app"
)

// Deps carries everything the router wires together.
type Deps struct {
	Auth    *app.AuthService
	Users   *app.UserService
	Content *app.ContentService
	Grading *app.GradingService
	Wallet  *app.WalletService
	Board   *app.LeaderboardService

	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with all routes. Everything except
// health and auth sits behind the bearer middleware; /admin additionally
// requires the admin flag.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(d.Logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authHandler := NewAuthHandler(d.Auth)
	profileHandler := NewProfileHandler(d.Users)
	learnHandler := NewLearnHandler(d.Content, d.Grading, d.Board)
	walletHandler := NewWalletHandler(d.Wallet)
	adminHandler := NewAdminHandler(d.Users, d.Content, d.Wallet)
	feedHandler := NewFeedHandler(d.Board, d.Logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", authHandler.LogIn)
	}

	authed := r.Group("", requireAuth(d.Auth))
	{
		authed.GET("/profile", profileHandler.Profile)
		authed.GET("/profile/stats", profileHandler.Stats)

		learn := authed.Group("/learn")
		{
			learn.GET("/categories", learnHandler.Categories)
			learn.GET("/lessons/:category", learnHandler.LessonsByCategory)
			learn.GET("/lesson/:lesson_id", learnHandler.Lesson)
			learn.GET("/quiz/:lesson_id", learnHandler.Quiz)
			learn.POST("/quiz/submit", learnHandler.SubmitQuiz)
			learn.GET("/progress", learnHandler.Progress)
			learn.GET("/leaderboard", learnHandler.Leaderboard)
		}

		wallet := authed.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.Balance)
			wallet.GET("/history", walletHandler.History)
			wallet.GET("/summary", walletHandler.Summary)
		}

		authed.GET("/ws/leaderboard", feedHandler.Serve)

		admin := authed.Group("/admin", requireAdmin())
		{
			admin.GET("/users", adminHandler.Users)
			admin.PATCH("/users/:user_id/promote", adminHandler.Promote)
			admin.GET("/lessons", adminHandler.Lessons)
			admin.POST("/lessons", adminHandler.CreateLesson)
			admin.DELETE("/lessons/:lesson_id", adminHandler.DeleteLesson)
			admin.GET("/quiz/:lesson_id", adminHandler.Quiz)
			admin.POST("/quiz", adminHandler.ReplaceQuiz)
			admin.DELETE("/quiz/:lesson_id", adminHandler.DeleteQuiz)
			admin.POST("/tokens", adminHandler.GrantTokens)
		}
	}

	return r
}
