// Package moodtracker собирает приложение: хранилище, кеш, сервисы,
// маршруты и HTTP-сервер с корректным завершением работы.
package moodtracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/mood-tracker/internal/cache"
	"github.com/magabrotheeeer/mood-tracker/internal/config"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/mood-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/mood-tracker/internal/services/auth"
	trackerservice "github.com/magabrotheeeer/mood-tracker/internal/services/tracker"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует приложение: подключается к PostgreSQL и Redis,
// применяет миграции, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)
	trackerService := trackerservice.NewTrackerService(db, db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, trackerService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и ждёт либо его остановки, либо отмены контекста.
// При отмене контекста сервер завершается корректно с таймаутом 15 секунд.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeConnections()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeConnections()
		return err
	}
}

func (a *App) closeConnections() {
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database connection", sl.Err(err))
	}
	if err := a.cache.Db.Close(); err != nil {
		a.logger.Error("failed to close redis connection", sl.Err(err))
	}
}
