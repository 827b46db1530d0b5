package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/storefront/cmd/storefront/output"
	"github.com/marshallshelly/storefront/cmd/storefront/tui"
	"github.com/marshallshelly/storefront/pkg/migration"
)

var (
	// Migrate flags
	dryRun      bool
	all         bool
	steps       int
	interactive bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to keep the schema in sync with the binary.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback migrations
  status  - Show migration status`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations to update the database schema.

Examples:
  storefront migrate up --all              # Apply all pending migrations
  storefront migrate up --steps 1          # Apply next migration
  storefront migrate up --dry-run --all    # Preview without applying`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long: `Rollback applied migrations to revert schema changes.

Examples:
  storefront migrate down --steps 1        # Rollback last migration
  storefront migrate down --dry-run        # Preview without executing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateUpCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview migrations without applying")
	migrateUpCmd.Flags().BoolVar(&all, "all", false, "Apply all pending migrations")
	migrateUpCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply")

	migrateDownCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview rollback without executing")
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to rollback")
}

// withExecutor connects, initializes migration tracking, takes the
// advisory lock, and hands the executor plus the embedded set to fn.
func withExecutor(ctx context.Context, lock bool, fn func(*migration.Executor, []migration.Migration) error) error {
	if dbURL == "" {
		return fmt.Errorf("--db flag or DATABASE_URL is required")
	}

	migrations, err := migration.Embedded()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	executor := migration.NewExecutor(pool)
	if err := executor.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if lock {
		if err := executor.Lock(ctx); err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		defer func() { _ = executor.Unlock(ctx) }()
	}

	return fn(executor, migrations)
}

func runMigrateUp(ctx context.Context) error {
	if interactive {
		return tui.RunMigrate(tui.DirectionUp, dbURL)
	}

	return withExecutor(ctx, !dryRun, func(executor *migration.Executor, migrations []migration.Migration) error {
		pending, err := executor.Pending(ctx, migrations)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			output.Success("Schema is up to date")
			return nil
		}
		if !all && steps <= 0 {
			output.Warning("%d migration(s) pending; pass --all or --steps N", len(pending))
			return nil
		}
		if !all && steps < len(pending) {
			pending = pending[:steps]
		}

		for _, mig := range pending {
			if dryRun {
				output.Info("Would apply %s_%s", mig.Version, mig.Name)
				continue
			}
			if err := executor.Apply(ctx, mig, false); err != nil {
				output.Error("Failed to apply %s_%s", mig.Version, mig.Name)
				return err
			}
			output.Success("Applied %s_%s", mig.Version, mig.Name)
		}
		return nil
	})
}

func runMigrateDown(ctx context.Context) error {
	if interactive {
		return tui.RunMigrate(tui.DirectionDown, dbURL)
	}

	return withExecutor(ctx, !dryRun, func(executor *migration.Executor, migrations []migration.Migration) error {
		applied, err := executor.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			output.Warning("No applied migrations to roll back")
			return nil
		}

		byVersion := make(map[string]migration.Migration, len(migrations))
		for _, mig := range migrations {
			byVersion[mig.Version] = mig
		}

		count := steps
		if count <= 0 || count > len(applied) {
			count = len(applied)
		}
		for i := 0; i < count; i++ {
			record := applied[len(applied)-1-i]
			mig, exists := byVersion[record.Version]
			if !exists {
				return fmt.Errorf("no migration file for applied version %s", record.Version)
			}
			if dryRun {
				output.Info("Would roll back %s_%s", mig.Version, mig.Name)
				continue
			}
			if err := executor.Rollback(ctx, mig, false); err != nil {
				output.Error("Failed to roll back %s_%s", mig.Version, mig.Name)
				return err
			}
			output.Success("Rolled back %s_%s", mig.Version, mig.Name)
		}
		return nil
	})
}

func runMigrateStatus(ctx context.Context) error {
	return withExecutor(ctx, false, func(executor *migration.Executor, migrations []migration.Migration) error {
		records, err := executor.GetStatus(ctx, migrations)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(records)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  VERSION\tNAME\tSTATUS\tAPPLIED AT")
		for _, record := range records {
			appliedAt := ""
			if record.AppliedAt != nil {
				appliedAt = record.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n",
				output.StatusIcon(string(record.Status)),
				record.Version, record.Name, record.Status, appliedAt)
		}
		return w.Flush()
	})
}
