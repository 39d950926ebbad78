package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"datasets/internal/app"
	"datasets/internal/fixture"
	"datasets/internal/infrastructure/storage/postgres"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>...",
		Short: "Load fixture files into the database",
		Long: `Load datasets, categories, organisations and seed records from YAML
fixture files. Each file is applied in its own transaction.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, pool, err := rootOpts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := postgres.Migrate(ctx, pool); err != nil {
					return err
				}
			}

			stores, err := app.Postgres(pool, app.PostgresOptions{})
			if err != nil {
				return err
			}
			svc := stores.RecordService()

			results := make(map[string]fixture.Summary, len(args))
			for _, path := range args {
				sum, err := stores.LoadFixture(ctx, path, svc)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[path] = sum
			}

			return rootOpts.print(cmd.OutOrStdout(), results, func(w io.Writer) {
				for _, path := range args {
					printSummary(w, path, results[path])
				}
			})
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before loading")
	return cmd
}

// NewValidateCommand creates the validate command. It needs no database.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <fixture.yaml>...",
		Short: "Check fixture files without loading them",
		Long: `Check fixture files for unknown keys, duplicate datasets and fields,
and inverted entity ranges. Seed record values are checked on load.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make(map[string]fixture.Summary, len(args))
			for _, path := range args {
				f, err := fixture.LoadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[path] = fixture.Count(f)
			}

			return rootOpts.print(cmd.OutOrStdout(), results, func(w io.Writer) {
				for _, path := range args {
					printSummary(w, path, results[path])
				}
			})
		},
	}
}

func printSummary(w io.Writer, path string, sum fixture.Summary) {
	fmt.Fprintf(w, "%s: %d datasets, %d categories (%d values), %d organisations, %d records\n",
		path, sum.Datasets, sum.Categories, sum.CategoryValues, sum.Organisations, sum.Records)
}
