package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sewa-attendance/bot"
	"sewa-attendance/config"
	"sewa-attendance/internal/handlers"
	"sewa-attendance/internal/logger"
	"sewa-attendance/internal/repository"
	"sewa-attendance/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("config loaded", zap.String("backend", cfg.StoreBackend))

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zlog.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
	}()

	// Initialize application dependencies
	app, err := initApplication(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}
	defer app.close()

	if app.bot != nil {
		app.bot.StartPolling(ctx)
		zlog.Info("telegram bot polling")
	}

	// Setup HTTP server
	mux := http.NewServeMux()
	for _, h := range app.handlers {
		h.Register(mux)
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // summary generation waits on the model
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}

	zlog.Info("server stopped gracefully")
}

type routeRegistrar interface {
	Register(mux *http.ServeMux)
}

type application struct {
	handlers []routeRegistrar
	bot      *bot.Bot
	close    func()
}

// initApplication initializes all application dependencies
func initApplication(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*application, error) {
	repos, err := openRepositories(ctx, cfg, zlog)
	if err != nil {
		return nil, err
	}

	gateway := services.NewGateway(repos, zlog.Named("gateway"))
	store := services.NewRecordStore(gateway, zlog.Named("store"))

	// A nil generator reports the summary as unavailable
	var generator services.TextGenerator
	gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zlog.Warn("gemini client unavailable, AI summaries disabled", zap.Error(err))
	} else if gemini != nil {
		generator = gemini
	}
	summarizer := services.NewSummaryGenerator(generator, zlog.Named("summary"))

	// The bot is optional; without it notifications are dropped
	api := initBotAPI(cfg, zlog)
	notifier := bot.NewNotifier(api, cfg.AuthorizedChatID, zlog.Named("notifier"))

	desk := services.NewAttendanceService(store, notifier, zlog.Named("attendance"))

	app := &application{
		handlers: []routeRegistrar{
			handlers.NewAttendanceHandler(desk, store, zlog.Named("http")),
			handlers.NewTeamHandler(store),
			handlers.NewReportHandler(desk, summarizer, zlog.Named("http")),
		},
		close: repos.Close,
	}
	if api != nil {
		app.bot = bot.New(api, cfg.AuthorizedChatID, desk, store, summarizer, zlog.Named("bot"))
	}
	return app, nil
}

// openRepositories selects the storage backend
func openRepositories(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*repository.Repositories, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := repository.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		zlog.Info("using postgres backend")
		return repository.NewPostgresRepositories(pool), nil
	case config.BackendPocketBase:
		zlog.Info("using pocketbase backend", zap.String("url", cfg.PocketBaseURL))
		return repository.NewPocketBaseRepositories(cfg.PocketBaseURL, cfg.PocketBaseToken, zlog.Named("pocketbase")), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// initBotAPI connects the Telegram bot, returning nil when it is not configured
func initBotAPI(cfg *config.Config, zlog *zap.Logger) *tgbotapi.BotAPI {
	if cfg.TelegramBotToken == "" {
		zlog.Info("TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
		return nil
	}
	api, err := bot.Connect(cfg.TelegramBotToken, zlog)
	if err != nil {
		zlog.Warn("failed to init telegram bot", zap.Error(err))
		return nil
	}
	return api
}
