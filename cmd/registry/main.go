// Package main runs the catchup registry.
//
// Usage:
//
//	registry [serve]
//	registry register-company -name NAME -url URL [-ticker T] [-sector S] [-industry I]
//	registry register-source -name NAME -url URL [-type TYPE]
//	registry register-feed -source ID -url URL [-title T]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"catchup-registry/internal/config"
	"catchup-registry/internal/observability/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(stderr, cfg.LogLevel, false)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}

	switch cmd {
	case "serve":
		return serve(ctx, cfg, logger)
	case "register-company":
		return registerCompany(ctx, cfg, logger, args, stdout)
	case "register-source":
		return registerSource(ctx, cfg, logger, args, stdout)
	case "register-feed":
		return registerFeed(ctx, cfg, logger, args, stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve, register-company, register-source or register-feed)", cmd)
	}
}
