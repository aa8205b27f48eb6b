package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

var (
	connectBackoff  = 500 * time.Millisecond
	connectAttempts = uint64(5)
)

// withRetry calls fn with exponential backoff until it succeeds, the attempts
// are exhausted or ctx is done.
func withRetry(ctx context.Context, logger logging.Logger, what string, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			logger.Warn(ctx, "connection attempt failed", "target", what, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func openDB(ctx context.Context, dsn string, logger logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := withRetry(ctx, logger, "postgres", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db connect error: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, addr, password string, logger logging.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := withRetry(ctx, logger, "redis", ping); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}
	return rdb, nil
}
