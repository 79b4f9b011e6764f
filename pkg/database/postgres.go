package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundlens/pkg/config"
)

// DB is a read-only pool on the provider mirror (DATA_SOURCE=postgres)
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New connects and pings the mirror. Every session is read-only.
func New(cfg *config.Config) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	pc, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pc.MaxConns = int32(cfg.Database.MaxConns)
	pc.MinConns = int32(cfg.Database.MinConns)
	pc.MaxConnLifetime = cfg.Database.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.Database.MaxConnIdleTime
	// 미러는 읽기 전용
	pc.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	pc.ConnConfig.RuntimeParams["application_name"] = "fundlens"

	return pc, nil
}

// CheckMirror fails when any of the schema-qualified tables is absent
func (db *DB) CheckMirror(ctx context.Context, tables ...string) error {
	var missing []string
	for _, table := range tables {
		var found bool
		if err := db.Pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&found); err != nil {
			return fmt.Errorf("check %s: %w", table, err)
		}
		if !found {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("mirror is missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Close closes the pool; safe to call twice
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// PoolStats is the subset of pgxpool statistics shown by data-check
type PoolStats struct {
	AcquiredConns int32 `json:"acquired_conns"`
	IdleConns     int32 `json:"idle_conns"`
	TotalConns    int32 `json:"total_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Stats returns the current pool statistics
func (db *DB) Stats() PoolStats {
	s := db.Pool.Stat()
	return PoolStats{
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		TotalConns:    s.TotalConns(),
		MaxConns:      s.MaxConns(),
	}
}
