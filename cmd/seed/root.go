package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	appctx "datasets/internal/core/context"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	Verbose     bool
	Format      string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the seed tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Prepare a datasets database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// connect opens the pool named by --database-url with a logger in ctx.
func (o *RootOptions) connect(ctx context.Context) (context.Context, *postgres.Pool, error) {
	if o.DatabaseURL == "" {
		return ctx, nil, errors.New("--database-url or DATABASE_URL is required")
	}

	level := "info"
	if o.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Development: true, OutputPaths: []string{"stderr"}})
	if err != nil {
		return ctx, nil, fmt.Errorf("create logger: %w", err)
	}
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	ctx = logger.WithLogger(ctx, log.WithComponent("seed"))

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(o.DatabaseURL))
	if err != nil {
		return ctx, nil, err
	}
	return ctx, pool, nil
}

// print writes v as JSON, or text via the text function.
func (o *RootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
