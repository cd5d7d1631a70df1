package sharedpool

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Config holds the configuration for creating a connection pool.
type Config[C any] struct {
	// Capacity is the fixed number of connections owned by the pool.
	// Every connection is opened eagerly by New.
	// Must be at least 1.
	Capacity int

	// Factory opens and closes the underlying connections.
	Factory Factory[C]

	// Logger receives pool lifecycle diagnostics. Optional.
	Logger logrus.FieldLogger
}

// Validate checks if the configuration is valid.
func (c *Config[C]) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("Capacity must be at least 1, got %d", c.Capacity)
	}

	if c.Factory == nil {
		return fmt.Errorf("Factory is required")
	}

	return nil
}

func (c *Config[C]) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
