// Package platform owns the process-wide shared resources the supervisor
// boots once and threads through to every tenant builder: the Postgres pool
// and the catalogue-key memoization cache.
package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOptions configures pool sizing and per-connection session
// settings, mirroring Config's PG_* fields.
type PostgresOptions struct {
	Host               string
	Port               int
	Database           string
	User               string
	Password           string
	PoolMin            int32
	PoolMax            int32
	ConnectTimeout     time.Duration
	StatementTimeoutMs int
}

// NewPostgresPool builds the shared pgxpool.Pool. Every acquired connection
// has its session statement_timeout set via AfterConnect, matching the
// "init=_init_conn" hook of the source's asyncpg pool.
func NewPostgresPool(ctx context.Context, opts PostgresOptions) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		opts.User, opts.Password, opts.Host, opts.Port, opts.Database)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	poolCfg.MinConns = opts.PoolMin
	poolCfg.MaxConns = opts.PoolMax
	poolCfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout

	statementTimeoutMs := opts.StatementTimeoutMs
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET statement_timeout = %d", statementTimeoutMs))
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	return pool, nil
}

// CheckAlive runs the liveness probe ("SELECT 1") the supervisor requires
// before launching any tenant task.
func CheckAlive(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var one int
	row := pool.QueryRow(ctx, "SELECT 1")
	if err := row.Scan(&one); err != nil {
		return fmt.Errorf("postgres liveness probe failed: %w", err)
	}
	return nil
}
