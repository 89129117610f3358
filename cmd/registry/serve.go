package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"catchup-registry/internal/config"
	"catchup-registry/internal/event"
	"catchup-registry/internal/infra/health"
)

// serve runs the company_created subscriber and the health server until ctx is
// canceled or the subscriber terminates.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close registry", slog.Any("error", err))
		}
	}()

	sub := event.NewSubscriber(a.transport, event.LogHandler(logger), logger)
	handle, err := sub.Start(ctx)
	if err != nil {
		return err
	}

	srv := health.NewServer(fmt.Sprintf(":%d", cfg.MetricsPort), nil, logger)
	srv.AddCheck("database", a.pingDatabase)
	srv.AddCheck("transport", a.pingTransport)
	srv.AddCheck("subscriber", func(context.Context) error {
		if handle.State() != event.StateListening {
			return errors.New("subscriber terminated")
		}
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-handle.Done():
		}
		handle.Stop()
		if err := handle.Wait(); err != nil {
			return fmt.Errorf("subscriber: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	logger.Info("registry serving", slog.Int("metrics_port", cfg.MetricsPort))
	err = g.Wait()
	logger.Info("registry stopped", slog.Any("error", err))
	return err
}
