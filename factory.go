package sharedpool

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Factory opens and closes the connections owned by a Pool.
type Factory[C any] interface {
	// Open creates a new connection.
	Open(ctx context.Context) (C, error)
	// Close destroys a connection created by Open.
	Close(ctx context.Context, conn C) error
}

type funcFactory[C any] struct {
	open  func(ctx context.Context) (C, error)
	close func(ctx context.Context, conn C) error
}

// NewFactory builds a Factory from a pair of functions. close may be nil when
// the connection needs no teardown.
func NewFactory[C any](open func(ctx context.Context) (C, error), close func(ctx context.Context, conn C) error) Factory[C] {
	return &funcFactory[C]{open: open, close: close}
}

func (f *funcFactory[C]) Open(ctx context.Context) (C, error) {
	return f.open(ctx)
}

func (f *funcFactory[C]) Close(ctx context.Context, conn C) error {
	if f.close == nil {
		return nil
	}
	return f.close(ctx, conn)
}

// SQLFactory opens dedicated connections from a database/sql handle.
// Any registered driver works; DB should allow at least as many open
// connections as the pool capacity.
type SQLFactory struct {
	DB *sql.DB
}

// Open reserves a single connection from DB.
func (f *SQLFactory) Open(ctx context.Context) (*sql.Conn, error) {
	if f.DB == nil {
		return nil, fmt.Errorf("DB is required")
	}
	conn, err := f.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}
	return conn, nil
}

// Close returns the connection to DB's own pool.
func (f *SQLFactory) Close(_ context.Context, conn *sql.Conn) error {
	return conn.Close()
}

// PgxFactory opens native pgx connections to PostgreSQL.
type PgxFactory struct {
	Config *pgx.ConnConfig
}

// NewPgxFactory parses connString into a PgxFactory.
func NewPgxFactory(connString string) (*PgxFactory, error) {
	config, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	return &PgxFactory{Config: config}, nil
}

// Open connects to the configured database.
func (f *PgxFactory) Open(ctx context.Context) (*pgx.Conn, error) {
	if f.Config == nil {
		return nil, fmt.Errorf("Config is required")
	}
	conn, err := pgx.ConnectConfig(ctx, f.Config.Copy())
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}

// Close closes the connection.
func (f *PgxFactory) Close(ctx context.Context, conn *pgx.Conn) error {
	return conn.Close(ctx)
}
