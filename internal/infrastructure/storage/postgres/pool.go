// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paybatch/pkg/logger"
)

// PoolConfig holds connection pool configuration.
type PoolConfig struct {
	DSN      string
	MaxConns int32
	MinConns int32

	// StatementTimeout bounds every statement, including range row locks
	// held by a concurrent finalize.
	StatementTimeout time.Duration

	// ConnectTimeout is how long NewPool keeps retrying an unreachable server.
	ConnectTimeout time.Duration

	ApplicationName string
}

// DefaultPoolConfig returns defaults sized for a single back-office instance.
func DefaultPoolConfig(dsn string) PoolConfig {
	return PoolConfig{
		DSN:              dsn,
		MaxConns:         10,
		MinConns:         1,
		StatementTimeout: 30 * time.Second,
		ConnectTimeout:   30 * time.Second,
		ApplicationName:  "paybatch",
	}
}

// Pool wraps pgxpool.Pool.
type Pool struct {
	*pgxpool.Pool
}

// Close closes all connections in the pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// NewPool creates a connection pool and waits until the server answers a ping.
// Every session runs in UTC so check dates round-trip unchanged.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	params := poolConfig.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	params["application_name"] = cfg.ApplicationName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		logger.Debug(ctx, "database connection opened", "pid", conn.PgConn().PID())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.ConnectTimeout
	attempt := 0
	ping := func() error {
		attempt++
		err := pool.Ping(ctx)
		if err != nil {
			logger.Warn(ctx, "database not reachable yet", "attempt", attempt, "error", err)
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database after %d attempts: %w", attempt, err)
	}

	return &Pool{Pool: pool}, nil
}

// LogStats logs pool statistics.
func (p *Pool) LogStats(ctx context.Context) {
	stat := p.Stat()
	logger.Info(ctx, "database pool stats",
		"total", stat.TotalConns(),
		"acquired", stat.AcquiredConns(),
		"idle", stat.IdleConns(),
		"max", stat.MaxConns(),
		"empty_acquire_count", stat.EmptyAcquireCount(),
	)
}
