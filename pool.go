package sharedpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAcquireCancelled is returned by Acquire when its context ends before a
	// connection becomes available. The context error is wrapped alongside it.
	ErrAcquireCancelled = errors.New("acquisition cancelled")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrNilHandle is returned by Release when given a nil handle.
	ErrNilHandle = errors.New("handle is nil")

	// ErrForeignHandle is returned by Release when the handle was created by another pool.
	ErrForeignHandle = errors.New("handle belongs to another pool")

	// ErrNotLent is returned by Release when the handle was already released.
	ErrNotLent = errors.New("handle is not lent out")
)

// Pool lends a fixed number of connections to concurrent callers.
//
// The idle channel doubles as a counting semaphore and a free list: Acquire
// blocks on it while every connection is lent out, Release puts one back
// without ever blocking.
type Pool[C any] struct {
	config *Config[C]
	log    logrus.FieldLogger
	idle   chan *entry[C]
	done   chan struct{}

	mu     sync.Mutex // protects closed, lent and Handle.lent
	closed bool
	lent   int
}

// New creates a connection pool and opens every connection up front.
// If any connection cannot be opened, the ones already opened are closed and
// no pool is returned.
func New[C any](ctx context.Context, config *Config[C]) (*Pool[C], error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Pool[C]{
		config: config,
		log:    config.logger(),
		idle:   make(chan *entry[C], config.Capacity),
		done:   make(chan struct{}),
	}

	entries := make([]*entry[C], 0, config.Capacity)
	for i := 0; i < config.Capacity; i++ {
		conn, err := config.Factory.Open(ctx)
		if err != nil {
			for _, e := range entries {
				if cerr := p.closeEntry(ctx, e); cerr != nil {
					p.log.WithError(cerr).WithField("handle", e.id).Warn("failed to close connection")
				}
			}
			return nil, fmt.Errorf("failed to open connection %d: %w", i, err)
		}
		entries = append(entries, &entry[C]{id: i, conn: conn})
	}
	for _, e := range entries {
		p.idle <- e
	}

	p.log.WithField("capacity", config.Capacity).Info("connection pool created")
	return p, nil
}

// Acquire obtains a connection from the pool, blocking until one is idle.
// When ctx ends first no connection is granted and the returned error
// matches both ErrAcquireCancelled and the context error.
func (p *Pool[C]) Acquire(ctx context.Context) (*Handle[C], error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquireCancelled, err)
	}

	select {
	case e := <-p.idle:
		return p.lend(ctx, e)
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrAcquireCancelled, ctx.Err())
	}
}

func (p *Pool[C]) lend(ctx context.Context, e *entry[C]) (*Handle[C], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		// Lost the race with Close, which only drains what is left in idle.
		if err := p.closeEntry(ctx, e); err != nil {
			p.log.WithError(err).WithField("handle", e.id).Warn("failed to close connection")
		}
		return nil, ErrPoolClosed
	}
	p.lent++
	p.mu.Unlock()
	return &Handle[C]{entry: e, pool: p, lent: true}, nil
}

// Release returns a connection previously obtained with Acquire.
// Releasing nil, a handle of another pool or a handle that was already
// released reports an error and leaves the pool untouched, even when the
// connection has since been lent to another caller. Release never blocks.
func (p *Pool[C]) Release(h *Handle[C]) error {
	if h == nil {
		return ErrNilHandle
	}
	if h.pool != p {
		return ErrForeignHandle
	}

	p.mu.Lock()
	if !h.lent {
		p.mu.Unlock()
		return ErrNotLent
	}
	h.lent = false
	p.lent--

	if p.closed {
		p.mu.Unlock()
		return p.closeEntry(context.Background(), h.entry)
	}

	select {
	case p.idle <- h.entry:
		p.mu.Unlock()
		return nil
	default:
		// Not reached while each connection has at most one live handle.
		// Guard only: dropping keeps Release from ever blocking.
		p.mu.Unlock()
		p.log.WithField("handle", h.entry.id).Warn("pool is full, dropping connection")
		return p.closeEntry(context.Background(), h.entry)
	}
}

// Close closes all idle connections. Connections still lent out are closed
// when they are released. Acquire fails with ErrPoolClosed afterwards.
func (p *Pool[C]) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)

	var idle []*entry[C]
drain:
	for {
		select {
		case e := <-p.idle:
			idle = append(idle, e)
		default:
			break drain
		}
	}
	lent := p.lent
	p.mu.Unlock()

	var errs []error
	for _, e := range idle {
		if err := p.closeEntry(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	p.log.WithFields(logrus.Fields{
		"closed": len(idle),
		"lent":   lent,
	}).Info("connection pool closed")

	return errors.Join(errs...)
}

// Cap returns the fixed number of connections owned by the pool.
func (p *Pool[C]) Cap() int {
	return p.config.Capacity
}

// Len returns the number of idle connections. A connection being handed out
// by a concurrent Acquire is counted by neither Len nor InUse.
func (p *Pool[C]) Len() int {
	return len(p.idle)
}

// InUse returns the number of connections currently lent out.
func (p *Pool[C]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lent
}

func (p *Pool[C]) closeEntry(ctx context.Context, e *entry[C]) error {
	if err := p.config.Factory.Close(ctx, e.conn); err != nil {
		return fmt.Errorf("failed to close connection %d: %w", e.id, err)
	}
	return nil
}
