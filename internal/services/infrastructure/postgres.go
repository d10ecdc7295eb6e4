package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
)

const uniqueViolation = "23505"

// PostgresStorage is the credential store and file registry. It owns the
// *sql.DB pool; every method borrows a connection for one statement or one
// transaction and returns it on all paths.
type PostgresStorage struct {
	Db     *sql.DB
	logger *slog.Logger
}

type PoolConfig struct {
	MinConns int
	MaxConns int
}

// Connect opens the pool, pings it and creates the schema.
func Connect(ctx context.Context, connectionString string, pool PoolConfig, l *slog.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if pool.MaxConns > 0 {
		db.SetMaxOpenConns(pool.MaxConns)
	}
	db.SetMaxIdleConns(pool.MinConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := New(db, l)
	if err := p.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	p.logger.Info("connected to PostgreSQL", "max_conns", pool.MaxConns, "min_conns", pool.MinConns)
	return p, nil
}

// New wraps an existing pool without touching the schema.
func New(db *sql.DB, l *slog.Logger) *PostgresStorage {
	return &PostgresStorage{Db: db, logger: logger.Component(l, "db")}
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.Db.PingContext(ctx)
}

func (p *PostgresStorage) Close() error {
	return p.Db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func closeRows(l *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		l.Warn("error closing rows", "error", err)
	}
}

func rollback(l *slog.Logger, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		l.Warn("rollback failed", "error", err)
	}
}
