package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yuku/sharedpool/app"
	"github.com/yuku/sharedpool/internal/config"
	"github.com/yuku/sharedpool/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := config.Load(os.Getenv("SHAREDPOOL_CONFIG"))
	if err != nil {
		return err
	}

	c := app.New(cfg)
	defer func() {
		if cerr := c.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()

	logger, err := c.Logger(ctx)
	if err != nil {
		return err
	}
	pool, err := c.Pool(ctx)
	if err != nil {
		return err
	}

	orders := service.NewOrderService[*sql.Conn](logger, pool)
	payments := service.NewPaymentService(logger)
	products := service.NewProductService(c.Cache(), os.Stdout)

	if err := processOrder(ctx, orders, cfg); err != nil {
		return err
	}
	if err := payments.ProcessPayment(); err != nil {
		return err
	}
	products.LoadProducts()
	products.GetProduct("Product 1")

	// More workers than connections: the extra ones wait for a release.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Demo.Workers; i++ {
		g.Go(func() error {
			return processOrder(gctx, orders, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.Diagnostics().WithField("workers", cfg.Demo.Workers).Info("demo finished")
	return nil
}

func processOrder(ctx context.Context, orders *service.OrderService[*sql.Conn], cfg config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Pool.AcquireTimeout)
	defer cancel()
	return orders.ProcessOrder(ctx)
}
