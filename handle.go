package sharedpool

// entry is a connection owned by a Pool. It outlives the handles that lend it.
type entry[C any] struct {
	// id is the position of the connection in the pool, stable for its lifetime.
	id int

	// conn is the underlying connection opened by the pool's Factory.
	conn C
}

// Handle is a single loan of a connection from a Pool.
// Every Acquire returns a new Handle; once released it stays released even if
// the same connection is lent again.
type Handle[C any] struct {
	entry *entry[C]

	// pool is the Pool that created this Handle.
	pool *Pool[C]

	// lent reports whether this loan is still outstanding.
	// Guarded by pool.mu.
	lent bool
}

// ID returns the index of the connection within its pool.
func (h *Handle[C]) ID() int {
	return h.entry.id
}

// Conn returns the underlying connection.
func (h *Handle[C]) Conn() C {
	return h.entry.conn
}

// Release returns the handle to the pool it was acquired from.
func (h *Handle[C]) Release() error {
	if h == nil {
		return ErrNilHandle
	}
	return h.pool.Release(h)
}
