package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/api/routes"
	"github.com/HeemPlayz/arabs-giveaways/internal/config"
	"github.com/HeemPlayz/arabs-giveaways/internal/handlers"
	"github.com/HeemPlayz/arabs-giveaways/internal/platform/discord"
	"github.com/HeemPlayz/arabs-giveaways/internal/repositories"
	mongorepo "github.com/HeemPlayz/arabs-giveaways/internal/repositories/mongodb"
	"github.com/HeemPlayz/arabs-giveaways/internal/scheduler"
	"github.com/HeemPlayz/arabs-giveaways/internal/services"
	"github.com/HeemPlayz/arabs-giveaways/pkg/mongodb"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT secret is not configured")
		os.Exit(1)
	}
	if cfg.Discord.Token == "" {
		slog.Error("Discord token is not configured")
		os.Exit(1)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	discordClient, err := discord.New(cfg.Discord.Token)
	if err != nil {
		slog.Error("Failed to create Discord client", "error", err)
		os.Exit(1)
	}
	if err := discordClient.Open(); err != nil {
		slog.Error("Failed to open Discord session", "error", err)
		os.Exit(1)
	}
	defer discordClient.Close()

	var giveawayRepo repositories.GiveawayRepository = mongorepo.NewGiveawayRepository(db)
	var adminUserRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	sched := scheduler.New(slog.Default())
	defer sched.Stop()

	giveawayService := services.NewGiveawayService(giveawayRepo, sched, discordClient)
	authService := services.NewAuthService(adminUserRepo, cfg)

	// Re-arm completion timers for giveaways that outlived the last process
	rehydrateCtx, cancelRehydrate := context.WithTimeout(context.Background(), 30*time.Second)
	count, err := giveawayService.Rehydrate(rehydrateCtx)
	cancelRehydrate()
	if err != nil {
		slog.Error("Failed to rehydrate giveaways", "error", err)
		os.Exit(1)
	}
	slog.Info("Giveaway engine ready", "rehydrated", count)

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		GiveawayHandler: handlers.NewGiveawayHandler(giveawayService),
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
