package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"catchup-registry/internal/config"
	"catchup-registry/internal/usecase/registry"
)

// registerOutput is printed as one JSON line by the register-* commands.
type registerOutput struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

func registerCompany(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("register-company", flag.ContinueOnError)
	var in registry.RegisterCompanyInput
	var ticker, sector, industry string
	fs.StringVar(&in.Name, "name", "", "Company name")
	fs.StringVar(&in.URL, "url", "", "Company URL")
	fs.StringVar(&ticker, "ticker", "", "Stock ticker")
	fs.StringVar(&sector, "sector", "", "Sector")
	fs.StringVar(&industry, "industry", "", "Industry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in.Ticker, in.Sector, in.Industry = optional(ticker), optional(sector), optional(industry)

	return withApp(ctx, cfg, logger, func(a *app) error {
		company, created, err := a.service.RegisterCompanyWith(ctx, in)
		if err != nil {
			return err
		}
		return printResult(stdout, "company", company.ID.String(), created)
	})
}

func registerSource(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("register-source", flag.ContinueOnError)
	var in registry.RegisterSourceInput
	fs.StringVar(&in.Name, "name", "", "Source name")
	fs.StringVar(&in.URL, "url", "", "Source URL")
	fs.StringVar(&in.TypeName, "type", "newspaper", "Source type name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(ctx, cfg, logger, func(a *app) error {
		source, created, err := a.service.RegisterSource(ctx, in)
		if err != nil {
			return err
		}
		return printResult(stdout, "source", source.ID.String(), created)
	})
}

func registerFeed(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("register-feed", flag.ContinueOnError)
	var sourceID, title string
	var in registry.RegisterFeedInput
	fs.StringVar(&sourceID, "source", "", "Source ID")
	fs.StringVar(&in.URL, "url", "", "Feed URL")
	fs.StringVar(&title, "title", "", "Feed title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.Parse(sourceID)
	if err != nil {
		return fmt.Errorf("invalid -source %q: %w", sourceID, err)
	}
	in.SourceID, in.Title = id, optional(title)

	return withApp(ctx, cfg, logger, func(a *app) error {
		feed, created, err := a.service.RegisterFeed(ctx, in)
		if err != nil {
			return err
		}
		return printResult(stdout, "feed", feed.ID.String(), created)
	})
}

func withApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, fn func(*app) error) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close registry", slog.Any("error", err))
		}
	}()
	return fn(a)
}

func printResult(w io.Writer, kind, id string, created bool) error {
	return json.NewEncoder(w).Encode(registerOutput{Kind: kind, ID: id, Created: created})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
