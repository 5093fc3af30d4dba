package main

import (
	"FormIntake/internal/config"
	"FormIntake/internal/handlers"
	"FormIntake/internal/middleware"
	"FormIntake/internal/repo"
	"FormIntake/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, users, err := openStorage(cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize storage", "storage", cfg.Storage, "error", err)
	}
	attachments, err := repo.NewFSAttachmentStore(cfg.UploadDir)
	if err != nil {
		sugar.Fatalw("failed to initialize uploads directory", "dir", cfg.UploadDir, "error", err)
	}

	userService := service.NewUserService(users)
	created, err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		sugar.Fatalw("failed to seed admin account", "error", err)
	}
	if created {
		sugar.Infow("Seeded admin account", "username", cfg.AdminUsername)
	}
	recordService := service.NewRecordService(records, attachments, sugar)

	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.EnableHTTPS)
	h, err := handlers.NewHandler(userService, recordService, attachments, sessions, sugar, cfg)
	if err != nil {
		sugar.Fatalw("failed to build handlers", "error", err)
	}

	sugar.Infow("Config",
		"Address", cfg.Address,
		"Storage", cfg.Storage,
		"DataDir", cfg.DataDir,
		"UploadDir", cfg.UploadDir,
		"SessionTTL", cfg.SessionTTL,
	)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", "http://"+cfg.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

// openStorage готовит каталог данных и выбранный бэкенд записей и пользователей.
func openStorage(cfg *config.Config) (repo.RecordRepository, repo.UserRepository, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, err
	}

	if cfg.Storage != repo.StorageJSON {
		db, err := repo.InitDB(cfg.Storage, cfg.DatabaseDSN, cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewGormRecordRepository(db), repo.NewGormUserRepository(db), nil
	}

	dataFile := filepath.Join(cfg.DataDir, "data.json")
	if err := repo.EnsureJSONFile(dataFile); err != nil {
		return nil, nil, err
	}
	return repo.NewJSONRecordRepository(dataFile),
		repo.NewJSONUserRepository(filepath.Join(cfg.DataDir, "users.json")),
		nil
}
