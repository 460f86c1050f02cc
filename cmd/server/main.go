package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code_practice/internal/api"
	"code_practice/internal/app/realtime"
	"code_practice/internal/app/service"
	"code_practice/internal/app/worker"
	"code_practice/internal/common/security"
	"code_practice/internal/domain/repository"
	"code_practice/internal/platform/config"
	"code_practice/internal/platform/database"
	"code_practice/internal/platform/logging"
	"code_practice/internal/platform/queue"
	"code_practice/internal/platform/storage"

	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to a dotenv file")
	migrateOnly := pflag.Bool("migrate-only", false, "apply the database schema and exit")
	pflag.Parse()

	// 1. Configuration and logging
	config.Load(*envFile)
	logging.Setup(os.Stdout, config.AppConfig.LogLevel, config.AppConfig.LogFormat)
	slog.Info("configuration loaded", "port", config.AppConfig.APIPort, "queue", config.AppConfig.QueueEnabled())

	security.InitJWT()

	// 2. Database
	if err := database.Connect(); err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if config.AppConfig.DBAutoMigrate || *migrateOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, database.DB)
		cancel()
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}
	if *migrateOnly {
		return
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	patternRepo := repository.NewPgPatternRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)

	// 4. Blob store
	if config.AppConfig.SupabaseURL == "" || config.AppConfig.SupabaseKey == "" {
		slog.Warn("SUPABASE_URL or SUPABASE_KEY not set, screenshot uploads will fail")
	}
	blobs := storage.NewSupabaseStore(config.AppConfig.SupabaseURL, config.AppConfig.SupabaseKey, config.AppConfig.SupabaseBucket)

	// 5. Notifications: redis queue + worker when configured, inline otherwise
	hub := realtime.NewHub()
	var notifyQueue *queue.NotificationQueue
	if config.AppConfig.QueueEnabled() {
		if err := queue.ConnectRedis(rootCtx); err != nil {
			slog.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer queue.CloseRedis()
		notifyQueue = queue.NewNotificationQueue(queue.RDB, config.AppConfig.NotificationQueueName)
	}

	var notificationService *service.NotificationService
	if notifyQueue != nil {
		notificationService = service.NewNotificationService(notificationRepo, userRepo, notifyQueue, hub)
	} else {
		notificationService = service.NewNotificationService(notificationRepo, userRepo, nil, hub)
	}

	workerCtx, workerCancel := context.WithCancel(rootCtx)
	defer workerCancel()
	workerDone := make(chan struct{})
	if notifyQueue != nil {
		go func() {
			defer close(workerDone)
			worker.NewNotificationWorker(notifyQueue, notificationService).Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// 6. Services
	services := api.Services{
		Auth:         service.NewAuthService(userRepo),
		Pattern:      service.NewPatternService(patternRepo, notificationService),
		Problem:      service.NewProblemService(problemRepo, notificationService),
		Submission:   service.NewSubmissionService(submissionRepo, problemRepo, blobs, notificationService, config.AppConfig.SubmissionEditPendingOnly),
		Stats:        service.NewStatsService(problemRepo, submissionRepo, userRepo),
		Notification: notificationService,
	}

	// 7. Router & HTTP server
	router := api.NewRouter(services, api.Options{
		Hub:            hub,
		ClientOrigins:  config.AppConfig.ClientOrigins,
		UploadMaxBytes: config.AppConfig.UploadMaxBytes,
		HealthCheck:    database.Ping,
	})

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("could not listen", "addr", server.Addr, "error", err)
			stop()
		}
	}()

	// 8. Graceful shutdown
	<-rootCtx.Done()
	slog.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		slog.Warn("notification worker did not stop in time")
	}
	slog.Info("server and worker stopped gracefully")
}
