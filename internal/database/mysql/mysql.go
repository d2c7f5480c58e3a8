package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/kozaktomas/emoji-mirror/internal/database"
)

// Pool manages a MySQL connection pool.
type Pool struct {
	db *sql.DB
}

var (
	globalPool *Pool
	poolMu     sync.RWMutex
)

// normalizeDSN parses the DSN and forces parseTime on. The driver scans
// TIMESTAMP columns as []byte otherwise, which breaks created_at scans
// into time.Time.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewPool creates a new MySQL connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MySQL DSN is required")
	}

	dsn, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// SetGlobalPool sets the global pool instance.
func SetGlobalPool(p *Pool) {
	poolMu.Lock()
	defer poolMu.Unlock()
	globalPool = p
}

// GetGlobalPool returns the global pool instance.
func GetGlobalPool() *Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return globalPool
}

// Migrate creates the profiles table if it does not exist. MySQL has no
// vector type, so the baseline is stored as JSON.
func (p *Pool) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			uid VARCHAR(64) NOT NULL UNIQUE,
			name TEXT NOT NULL,
			normalized_name VARCHAR(255) NOT NULL UNIQUE,
			channels JSON NOT NULL,
			baseline JSON NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}

// Initialize sets up the MySQL backend and registers it as the active
// storage backend.
func Initialize(dsn string) error {
	pool, err := NewPool(dsn)
	if err != nil {
		return fmt.Errorf("failed to create MySQL pool: %w", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	SetGlobalPool(pool)

	repo := NewProfileRepository(pool)
	database.RegisterBackend("mysql",
		func() database.ProfileWriter { return repo },
		func() database.ProfileMatcher { return repo },
	)

	return nil
}
