package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Client wraps an embedded SQLite database.
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens (creating if needed) the database at path in WAL mode.
// MemoryPath gives a throwaway database bound to a single connection.
func NewClient(path string) (*Client, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	memory := path == MemoryPath
	if memory {
		dsn = MemoryPath
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if memory {
		// every new connection would otherwise see an empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(4)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	return &Client{db: db, path: path}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Path is the file the database lives in.
func (c *Client) Path() string {
	return c.path
}

// Health pings the database.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database.
func (c *Client) Close() error {
	return c.db.Close()
}

// InitSchema runs DDL statements in order inside one transaction.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema (stmt %d): %w", i, err)
		}
	}
	return tx.Commit()
}
