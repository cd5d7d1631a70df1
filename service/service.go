// Package service contains the business services of the demo. Each service
// receives the shared resources it uses when it is constructed.
package service

import (
	"context"

	"github.com/yuku/sharedpool"
)

// Logger is the log sink used by services.
type Logger interface {
	Log(msg string) error
}

// Acquirer lends pooled connections.
type Acquirer[C any] interface {
	Acquire(ctx context.Context) (*sharedpool.Handle[C], error)
}
