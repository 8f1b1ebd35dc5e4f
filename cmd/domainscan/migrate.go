package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Migrate applies the embedded schema migrations to the configured backend.
It is safe to run repeatedly. The SQLite backend is migrated automatically
whenever it is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %d\n", v)
			return nil
		},
	}
}
