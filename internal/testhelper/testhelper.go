package testhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// DatabaseURL returns the PostgreSQL connection string for integration tests.
// The test is skipped in short mode or when DATABASE_URL is not set.
func DatabaseURL(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL is not set")
	}
	return connString
}

// OpenSQLite returns a file-backed SQLite database in a temporary directory
// allowing up to maxConns open connections. It is closed when the test ends.
func OpenSQLite(t *testing.T, maxConns int) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err, "failed to open sqlite database")
	db.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// ErrOpen is returned by Factory.Open for the configured failing attempt.
var ErrOpen = errors.New("cannot open connection")

// Conn is a fake connection created by Factory.
type Conn struct {
	Seq    int
	closed bool
}

// Closed reports whether the factory closed this connection.
func (c *Conn) Closed() bool {
	return c.closed
}

// Factory is an in-memory connection factory that records every open and close.
type Factory struct {
	// FailAt makes the n-th call to Open (1-based) fail. Zero never fails.
	FailAt int

	mu     sync.Mutex
	opened int
	closed int
}

func (f *Factory) Open(ctx context.Context) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	if f.FailAt > 0 && f.opened == f.FailAt {
		f.opened--
		return nil, fmt.Errorf("attempt %d: %w", f.FailAt, ErrOpen)
	}
	return &Conn{Seq: f.opened}, nil
}

func (f *Factory) Close(_ context.Context, c *Conn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.closed {
		return fmt.Errorf("connection %d closed twice", c.Seq)
	}
	c.closed = true
	f.closed++
	return nil
}

// Opened returns the number of successfully opened connections.
func (f *Factory) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Closed returns the number of closed connections.
func (f *Factory) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
