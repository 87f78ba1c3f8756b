package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Client holds the database handle
type Client struct {
	DB *sql.DB
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxOpenConns    int           // Maximum number of open connections
	MaxIdleConns    int           // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// DefaultPoolConfig returns sensible defaults for connection pooling
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// NewClient opens a PostgreSQL connection with the given pool configuration
// and verifies connectivity.
func NewClient(databaseURL string, pool PoolConfig) (*Client, error) {
	return Open("postgres", databaseURL, pool)
}

// Open opens a database connection for the given driver. Tests use this with
// the sqlite3 driver; production code goes through NewClient.
func Open(driver, dsn string, pool PoolConfig) (*Client, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{DB: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.DB.Close()
}

// Stats returns connection pool statistics
func (c *Client) Stats() sql.DBStats {
	return c.DB.Stats()
}

// schema uses only types and defaults shared by PostgreSQL and SQLite so the
// same statements run under both drivers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS call_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		lead_id TEXT,
		provider TEXT NOT NULL DEFAULT '',
		provider_call_id TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		direction TEXT NOT NULL DEFAULT 'outbound',
		status TEXT NOT NULL DEFAULT 'initiated',
		duration INTEGER NOT NULL DEFAULT 0,
		transcript TEXT,
		ai_analysis TEXT,
		lead_score INTEGER,
		qualification_status TEXT,
		analyzer_used TEXT,
		started_at TIMESTAMP,
		ended_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_user_id ON call_records (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_lead_id ON call_records (lead_id)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_provider_call_id ON call_records (provider_call_id)`,
	`CREATE INDEX IF NOT EXISTS idx_call_records_status ON call_records (status)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new',
		lead_score INTEGER,
		qualification_status TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads (user_id)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT NOT NULL,
		setting_key TEXT NOT NULL,
		setting_value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, setting_key)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (c *Client) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
