package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/toggle-task/internal/common/bootstrap"
	"github.com/AlibekovAA/toggle-task/internal/common/config"
)

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply pending schema migrations to the configured store.

Examples:
  STORAGE_DRIVER=postgres DATABASE_URL=postgres://... tasktracker migrate
  STORAGE_DRIVER=postgres DATABASE_URL=postgres://... tasktracker migrate --dry-run
  STORAGE_DRIVER=sqlite SQLITE_PATH=tasks.db tasktracker migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := bootstrap.NewLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			cfg, err := config.LoadStorageConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			versions, err := bootstrap.Migrate(cmd.Context(), cfg, log, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case len(versions) == 0:
				fmt.Fprintln(out, "schema is up to date")
			case dryRun:
				fmt.Fprintf(out, "%d pending migration(s):\n", len(versions))
			default:
				fmt.Fprintf(out, "applied %d migration(s):\n", len(versions))
			}
			for _, v := range versions {
				fmt.Fprintf(out, "  %s\n", v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")

	return cmd
}
