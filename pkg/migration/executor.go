package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Advisory lock ID guarding concurrent migration runs.
const migrationLockID = 727274537

// Executor executes and tracks database migrations.
type Executor struct {
	pool   *pgxpool.Pool
	lockID int64
}

// NewExecutor creates a new migration executor.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{pool: pool, lockID: migrationLockID}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMP,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`
	if _, err := e.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Lock acquires an advisory lock to prevent concurrent migrations.
func (e *Executor) Lock(ctx context.Context) error {
	if _, err := e.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", e.lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	return nil
}

// Unlock releases the advisory lock.
func (e *Executor) Unlock(ctx context.Context) error {
	var released bool
	err := e.pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", e.lockID).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release migration lock: %w", err)
	}
	if !released {
		return fmt.Errorf("lock was not held")
	}
	return nil
}

// IsMigrationApplied checks if a specific migration has been applied.
func (e *Executor) IsMigrationApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := e.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = $1 AND status = 'applied'",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// GetAppliedMigrations returns all migrations that have been applied,
// oldest first.
func (e *Executor) GetAppliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := e.pool.Query(ctx, `
		SELECT version, name, status, applied_at, error
		FROM schema_migrations
		WHERE status = 'applied'
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var record MigrationRecord
		var status string
		if err := rows.Scan(&record.Version, &record.Name, &status, &record.AppliedAt, &record.Error); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		record.Status = MigrationStatus(status)
		records = append(records, record)
	}
	return records, rows.Err()
}

// Apply executes a migration's up SQL inside a transaction and records
// the outcome. In dry-run mode nothing is executed.
func (e *Executor) Apply(ctx context.Context, mig Migration, dryRun bool) error {
	applied, err := e.IsMigrationApplied(ctx, mig.Version)
	if err != nil {
		return err
	}
	if applied {
		return fmt.Errorf("migration %s is already applied", mig.Version)
	}
	if dryRun {
		return nil
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, name, status) VALUES ($1, $2, 'pending') ON CONFLICT (version) DO UPDATE SET status = 'pending'",
		mig.Version, mig.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	for i, stmt := range splitSQL(mig.UpSQL) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %s failed at statement %d: %w", mig.Version, i+1, err)
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE schema_migrations SET status = 'applied', applied_at = $1, error = NULL WHERE version = $2",
		time.Now(), mig.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update migration status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

// Rollback executes a migration's down SQL and removes its record.
func (e *Executor) Rollback(ctx context.Context, mig Migration, dryRun bool) error {
	applied, err := e.IsMigrationApplied(ctx, mig.Version)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("migration %s is not applied", mig.Version)
	}
	if dryRun {
		return nil
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range splitSQL(mig.DownSQL) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("rollback of %s failed at statement %d: %w", mig.Version, i+1, err)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", mig.Version); err != nil {
		return fmt.Errorf("failed to delete migration record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}
	return nil
}

// Pending returns the subset of migrations not yet applied, in order.
func (e *Executor) Pending(ctx context.Context, migrations []Migration) ([]Migration, error) {
	applied, err := e.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	appliedMap := make(map[string]bool, len(applied))
	for _, record := range applied {
		appliedMap[record.Version] = true
	}

	var pending []Migration
	for _, mig := range migrations {
		if !appliedMap[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// ApplyAll applies all pending migrations in order.
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration, dryRun bool) error {
	pending, err := e.Pending(ctx, migrations)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		if err := e.Apply(ctx, mig, dryRun); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", mig.Version, err)
		}
	}
	return nil
}

// GetStatus returns a record per known migration, pending or applied.
func (e *Executor) GetStatus(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	applied, err := e.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	appliedMap := make(map[string]MigrationRecord, len(applied))
	for _, record := range applied {
		appliedMap[record.Version] = record
	}

	records := make([]MigrationRecord, 0, len(migrations))
	for _, mig := range migrations {
		if record, exists := appliedMap[mig.Version]; exists {
			records = append(records, record)
		} else {
			records = append(records, MigrationRecord{
				Version: mig.Version,
				Name:    mig.Name,
				Status:  StatusPending,
			})
		}
	}
	return records, nil
}

// splitSQL splits a migration file into individual statements. Statements
// are separated by semicolons; line comments are stripped first.
func splitSQL(sql string) []string {
	var cleaned []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
