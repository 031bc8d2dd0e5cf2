// @title        Task Management API
// @version      1.0
// @description  Personal task manager with cookie-based JWT sessions.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/nadscarim/task-management/docs"
	"github.com/nadscarim/task-management/internal/api"
	"github.com/nadscarim/task-management/internal/api/handler"
	"github.com/nadscarim/task-management/internal/api/metrics"
	"github.com/nadscarim/task-management/internal/core/ports"
	"github.com/nadscarim/task-management/internal/core/service"
	"github.com/nadscarim/task-management/internal/infrastructure/config"
	"github.com/nadscarim/task-management/internal/infrastructure/db"
	redisstore "github.com/nadscarim/task-management/internal/infrastructure/db/redis"
	"github.com/nadscarim/task-management/internal/infrastructure/http/handlers"
	"github.com/nadscarim/task-management/internal/infrastructure/scheduler"
	"github.com/nadscarim/task-management/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "task-management",
		Env:     cfg.Env,
	})
	if cfg.DevSecrets {
		log.Warn().Msg("JWT secrets not set, using insecure development defaults")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	store, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	checks := map[string]handlers.Pinger{"database": store}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		idem = redisstore.NewIdempotencyStore(rdb)
		checks["redis"] = handlers.PingFunc(redisstore.Ping(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	} else {
		log.Info().Msg("REDIS_ADDR not set, idempotency keys disabled")
	}

	// --- Services ---
	tokens, err := service.NewTokenService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(store.Users, store.Tokens, tokens, service.AuthOptions{
		BcryptCost:         cfg.Auth.BcryptCost,
		MaxSessionsPerUser: cfg.Auth.MaxSessionsPerUser,
	}, log)
	taskService := service.NewTaskService(store.Tasks, idem, log)

	// --- Background jobs ---
	sched := scheduler.New(log)
	if cfg.Scheduler.SessionSweepInterval > 0 {
		sweeper := service.NewSessionSweeper(store.Tokens, log)
		_, err := sched.ScheduleInterval("session-sweep", cfg.Scheduler.SessionSweepInterval, func(ctx context.Context) {
			n, err := sweeper.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("session sweep failed")
				return
			}
			metrics.RefreshTokensPrunedTotal.Add(float64(n))
		})
		if err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Tasks:    taskService,
		Verifier: tokens,
		Cookies: handler.CookieConfig{
			Secure:     cfg.IsProduction(),
			AccessTTL:  tokens.AccessTTL(),
			RefreshTTL: tokens.RefreshTTL(),
		},
		Checks: checks,
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", store.Backend).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
