// Package app owns the process-wide resources of the demo: the connection
// pool, the cache and the application log. A Container is created once at
// startup and passed to the services that need it; each resource is
// initialized on first use and lives until Close.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/yuku/sharedpool"
	"github.com/yuku/sharedpool/applog"
	"github.com/yuku/sharedpool/cache"
	"github.com/yuku/sharedpool/internal/config"
	"github.com/yuku/sharedpool/lazy"
)

// ConnPool is the connection pool type held by a Container.
type ConnPool = sharedpool.Pool[*sql.Conn]

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the diagnostic logger. Defaults to a logrus logger writing
// to stderr at the configured level; once the application log is opened with
// console mirroring, the default logger stops writing to stderr so that each
// entry reaches the terminal once.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Container) {
		c.log = l
	}
}

// WithConsole sets the writer application log lines are mirrored to when
// console mirroring is enabled. Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(c *Container) {
		c.console = w
	}
}

// Container holds the shared resources of the process.
type Container struct {
	cfg     config.Config
	log     *logrus.Logger
	ownLog  bool
	console io.Writer

	db     *lazy.Value[*sql.DB]
	pool   *lazy.Value[*ConnPool]
	logger *lazy.Value[*applog.Logger]
	cache  *cache.Cache
}

// New creates a Container. No resource is opened until it is first used.
func New(cfg config.Config, opts ...Option) *Container {
	c := &Container{
		cfg:     cfg,
		console: os.Stdout,
		cache:   cache.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.ownLog = true
		c.log = logrus.New()
		if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			c.log.SetLevel(level)
		}
	}

	c.db = lazy.New(c.openDB)
	c.pool = lazy.New(c.openPool)
	c.logger = lazy.New(c.openLogger)
	return c
}

// Config returns the configuration the container was created with.
func (c *Container) Config() config.Config {
	return c.cfg
}

// Diagnostics returns the logger used for diagnostic messages.
func (c *Container) Diagnostics() logrus.FieldLogger {
	return c.log
}

// Cache returns the shared cache.
func (c *Container) Cache() *cache.Cache {
	return c.cache
}

// Pool returns the shared connection pool, creating it on first use.
// Failing to open any connection is returned as an error and is not retried.
func (c *Container) Pool(ctx context.Context) (*ConnPool, error) {
	return c.pool.Get(ctx)
}

// Logger returns the shared application log, opening it on first use.
func (c *Container) Logger(ctx context.Context) (*applog.Logger, error) {
	return c.logger.Get(ctx)
}

func (c *Container) openDB(context.Context) (*sql.DB, error) {
	db, err := sql.Open(c.cfg.Pool.Driver, c.cfg.Pool.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", c.cfg.Pool.Driver, err)
	}
	// The pool reserves every connection it owns.
	db.SetMaxOpenConns(c.cfg.Pool.Capacity)
	db.SetMaxIdleConns(c.cfg.Pool.Capacity)
	return db, nil
}

func (c *Container) openPool(ctx context.Context) (*ConnPool, error) {
	db, err := c.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	pool, err := sharedpool.New(ctx, &sharedpool.Config[*sql.Conn]{
		Capacity: c.cfg.Pool.Capacity,
		Factory:  &sharedpool.SQLFactory{DB: db},
		Logger:   c.log.WithField("component", "pool"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

func (c *Container) openLogger(context.Context) (*applog.Logger, error) {
	console := c.console
	if !c.cfg.Log.Console {
		console = nil
	}

	logger, err := applog.Open(c.cfg.Log.File, applog.WithConsole(console))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.log.AddHook(logger.Hook())
	if c.ownLog && console != nil {
		c.log.SetOutput(io.Discard)
	}
	return logger, nil
}

// Close releases every resource that was opened, pool first and log last.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if pool, ok := c.pool.Peek(); ok {
		if err := pool.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection pool: %w", err))
		}
	}
	if db, ok := c.db.Peek(); ok {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if logger, ok := c.logger.Peek(); ok {
		if err := logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
