package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"datasets/internal/infrastructure/storage/postgres"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the database tables",
		Long:  "Create every table the server needs. Safe to run against an existing database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, pool, err := rootOpts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]bool{"migrated": true}, func(w io.Writer) {
				fmt.Fprintln(w, "schema is up to date")
			})
		},
	}
}
