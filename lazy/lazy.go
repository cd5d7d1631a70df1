// Package lazy provides a value that is initialized at most once, on first use.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanicked is returned by Get after the init function panicked.
var ErrPanicked = errors.New("initialization panicked")

// Value holds the result of a one-time initialization.
// The zero Value is not usable; create one with New.
type Value[T any] struct {
	init func(ctx context.Context) (T, error)

	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// New returns a Value that calls init on the first Get.
func New[T any](init func(ctx context.Context) (T, error)) *Value[T] {
	return &Value[T]{
		init: init,
		done: make(chan struct{}),
	}
}

// Get returns the initialized value, running init if no caller has yet.
// Concurrent callers wait for the first one to finish and all observe the
// same value and error. The context of the first caller is passed to init.
// If init panics the panic reaches the first caller and every later Get
// returns ErrPanicked.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.once.Do(func() {
		defer close(v.done)
		defer func() {
			if r := recover(); r != nil {
				v.err = fmt.Errorf("%w: %v", ErrPanicked, r)
				panic(r)
			}
		}()
		v.val, v.err = v.init(ctx)
	})
	return v.val, v.err
}

// Peek returns the value if it was initialized successfully, without
// triggering initialization.
func (v *Value[T]) Peek() (T, bool) {
	select {
	case <-v.done:
		if v.err == nil {
			return v.val, true
		}
	default:
	}
	var zero T
	return zero, false
}
