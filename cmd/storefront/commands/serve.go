package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/storefront/cmd/storefront/output"
	"github.com/marshallshelly/storefront/pkg/api"
	"github.com/marshallshelly/storefront/pkg/config"
	"github.com/marshallshelly/storefront/pkg/migration"
	"github.com/marshallshelly/storefront/pkg/storage"
)

// serveCmd runs the HTTP API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Configuration comes from the environment (DATABASE_URL, HTTP_ADDR, ...).
The server refuses to start while schema migrations are pending; run
"storefront migrate up --all" first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.ConnectWithURL(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := requireMigrated(ctx, db); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	server := api.New(
		storage.NewUserStore(db),
		storage.NewProductStore(db),
		storage.NewOrderStore(db),
		db,
		logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// requireMigrated fails fast when the schema is behind the binary.
func requireMigrated(ctx context.Context, db *storage.DB) error {
	migrations, err := migration.Embedded()
	if err != nil {
		return err
	}
	executor := migration.NewExecutor(db.Pool())
	if err := executor.Initialize(ctx); err != nil {
		return err
	}
	pending, err := executor.Pending(ctx, migrations)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		output.Error("%d migration(s) pending; run 'storefront migrate up --all'", len(pending))
		return fmt.Errorf("schema is not up to date")
	}
	return nil
}
