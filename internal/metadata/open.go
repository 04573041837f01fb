package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/resilience"
)

// Open builds the store selected by cfg.Metadata.Backend. Network backends
// are dialled with retry and guarded by a circuit breaker.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}
	breakerCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.Metadata.Breaker.FailureThreshold,
		ResetTimeout:     cfg.Metadata.Breaker.ResetTimeout,
	}
	logger := slog.Default().With("component", "metadata", "backend", cfg.Metadata.Backend)

	switch cfg.Metadata.Backend {
	case "dir":
		store := NewDirStore(cfg.Metadata.Dir)
		if err := store.Ping(ctx); err != nil {
			logger.Warn("metadata directory not accessible, every lookup will miss", "error", err)
		}
		return store, nil

	case "sqlite":
		store, err := OpenSQLite(ctx, cfg.Metadata.SQLitePath, cfg.Metadata.Table)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("metadata store opened", "path", cfg.Metadata.SQLitePath)
		return store, nil

	case "redis":
		var client *redis.Client
		err := resilience.Retry(ctx, "redis-connect", retryCfg, func() error {
			var err error
			client, err = redis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			return nil, err
		}
		logger.Info("metadata store opened", "addr", cfg.Redis.Addr)
		store := NewRedisStore(client, cfg.Metadata.RedisKeyPrefix, redis.IsNilError)
		return Guard(store, resilience.NewCircuitBreaker("metadata-redis", breakerCfg)), nil

	case "postgres":
		var store *SQLStore
		err := resilience.Retry(ctx, "postgres-connect", retryCfg, func() error {
			client, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			s, err := NewSQLStore(client.DB, Postgres, cfg.Metadata.Table)
			if err != nil {
				client.Close()
				return resilience.Permanent(err)
			}
			s.closeDB = true
			if err := s.EnsureSchema(ctx); err != nil {
				s.Close()
				return err
			}
			store = s
			return nil
		})
		if err != nil {
			return nil, err
		}
		logger.Info("metadata store opened", "host", cfg.Postgres.Host, "table", cfg.Metadata.Table)
		return Guard(store, resilience.NewCircuitBreaker("metadata-postgres", breakerCfg)), nil
	}
	return nil, fmt.Errorf("unknown metadata backend %q", cfg.Metadata.Backend)
}

// Import copies every URL in src into dst and returns the number copied.
func Import(ctx context.Context, src *DirStore, dst Writer) (int, error) {
	ids, err := src.DocIDs()
	if err != nil {
		return 0, err
	}
	copied := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		url, found, err := src.Lookup(ctx, id)
		if err != nil {
			return copied, err
		}
		if !found {
			continue
		}
		if err := dst.Put(ctx, id, url); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
