package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/config"
	"github.com/Great2008/reads/internal/infra/memory"
	"github.com/Great2008/reads/internal/infra/postgres"
	rediscache "github.com/Great2008/reads/internal/infra/redis"
	transport "github.com/Great2008/reads/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	store := postgres.NewStore(db)
	keyLoader := postgres.NewAnswerKeyLoader(pool)

	keyTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	boardTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Minute)

	var (
		keyCache   app.AnswerKeyCache
		boardCache app.LeaderboardCache
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		keyCache = rediscache.NewAnswerKeyCache(client, keyLoader, keyTTL)
		boardCache = rediscache.NewLeaderboardCache(client, store, cfg.Leaderboard.Size, boardTTL)
	} else {
		keyCache = memory.NewAnswerKeyCache(keyLoader, keyTTL)
		boardCache = memory.NewLeaderboardCache(store, cfg.Leaderboard.Size, boardTTL)
	}

	board := app.NewLeaderboardService(boardCache, cfg.Leaderboard.Size, logger)
	auth := app.NewAuthService(store, cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	users := app.NewUserService(store)
	content := app.NewContentService(store, keyCache, logger)
	grading := app.NewGradingService(store, keyCache, board, cfg.Quiz.PassScore, cfg.Quiz.RewardTokens)
	wallet := app.NewWalletService(store, board)

	router := transport.NewRouter(transport.Deps{
		Auth:        auth,
		Users:       users,
		Content:     content,
		Grading:     grading,
		Wallet:      wallet,
		Board:       board,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", finalPort), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
