// Package db opens the persistence backend selected by DATABASE_URL and
// exposes its repositories behind the core ports.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/core/ports"
	"github.com/nadscarim/task-management/internal/infrastructure/config"
	mongostore "github.com/nadscarim/task-management/internal/infrastructure/db/mongo"
	pgstore "github.com/nadscarim/task-management/internal/infrastructure/db/postgres"
)

// Store bundles the repositories of one backend together with its lifecycle.
type Store struct {
	Backend string
	Users   ports.UserRepository
	Tokens  ports.RefreshTokenRepository
	Tasks   ports.TaskRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	backend, err := config.BackendFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, log)
	case config.BackendMongo:
		return openMongo(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unsupported backend %q", backend)
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	pool, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.URL, MaxConns: cfg.MaxConns})
	if err != nil {
		return nil, err
	}
	if err := pgstore.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Int32("max_conns", cfg.MaxConns).Msg("connected to postgres")

	return &Store{
		Backend: config.BackendPostgres,
		Users:   pgstore.NewUserRepository(pool),
		Tokens:  pgstore.NewRefreshTokenRepository(pool),
		Tasks:   pgstore.NewTaskRepository(pool),
		ping:    pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	client, database, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.URL,
		Database:    cfg.MongoDB,
		MaxPoolSize: uint64(cfg.MaxConns),
	})
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.MongoDB).Msg("connected to mongodb")

	return &Store{
		Backend: config.BackendMongo,
		Users:   mongostore.NewUserRepository(database),
		Tokens:  mongostore.NewRefreshTokenRepository(database),
		Tasks:   mongostore.NewTaskRepository(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}
