package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/platform/postgres"
	"github.com/taskwire/taskwire/internal/realtime"
	"github.com/taskwire/taskwire/internal/service"
	"github.com/taskwire/taskwire/internal/service/auth"
	"github.com/taskwire/taskwire/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService     auth.JWTService
	passwordHasher *auth.BcryptHasher

	hub         *realtime.Hub
	taskService *service.TaskService
}

// newApplication wires the full dependency graph: config, logging,
// database, stores, auth, the realtime hub and the task service.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)

	hub := realtime.NewHub(log)
	taskService := service.NewTaskService(taskStore, hub, log)

	return &application{
		config:         cfg,
		logger:         log,
		db:             db,
		userStore:      userStore,
		taskStore:      taskStore,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(0),
		hub:            hub,
		taskService:    taskService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	closeQuietly(app.db, app.logger)
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error("failed to close database connection", "error", err)
	}
}
