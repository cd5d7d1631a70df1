package service

import (
	"context"
	"errors"
	"fmt"
)

// OrderService processes orders using a pooled database connection.
type OrderService[C any] struct {
	logger Logger
	pool   Acquirer[C]
}

// NewOrderService creates an OrderService.
func NewOrderService[C any](logger Logger, pool Acquirer[C]) *OrderService[C] {
	return &OrderService[C]{logger: logger, pool: pool}
}

// ProcessOrder borrows a connection for the duration of the order.
// It blocks while every connection is in use and gives up when ctx ends.
func (s *OrderService[C]) ProcessOrder(ctx context.Context) (err error) {
	if err := s.logger.Log("Order processing started."); err != nil {
		return err
	}

	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release connection: %w", rerr))
		}
	}()

	if err := s.logger.Log(fmt.Sprintf("Executing order query on connection %d...", h.ID())); err != nil {
		return err
	}

	return s.logger.Log("Order processed.")
}
