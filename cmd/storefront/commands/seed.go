package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/storefront/cmd/storefront/output"
	"github.com/marshallshelly/storefront/pkg/models"
	"github.com/marshallshelly/storefront/pkg/storage"
)

// seedCmd loads demo data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into the database",
	Long: `Insert a small set of demo users, products, and orders.

Intended for local development against a freshly migrated database; the
command is additive and does not check for existing rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context) error {
	if dbURL == "" {
		return fmt.Errorf("--db flag or DATABASE_URL is required")
	}

	db, err := storage.ConnectWithURL(ctx, dbURL, 0, 0)
	if err != nil {
		return err
	}
	defer db.Close()

	users := storage.NewUserStore(db)
	products := storage.NewProductStore(db)
	orders := storage.NewOrderStore(db)

	demoUsers := []models.User{
		{Name: "Ann", Address: "1 Main St", Email: "ann@example.com"},
		{Name: "Bert", Address: "4 Elm Ave", Email: "bert@example.com"},
	}
	demoProducts := []models.Product{
		{ProductName: "Widget", Price: 9.99},
		{ProductName: "Gadget", Price: 24.50},
		{ProductName: "Gizmo", Price: 3.75},
	}

	for i, u := range demoUsers {
		created, err := users.Create(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Name, err)
		}
		demoUsers[i] = created
	}
	for i, p := range demoProducts {
		created, err := products.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.ProductName, err)
		}
		demoProducts[i] = created
	}

	order, err := orders.Create(ctx, models.Order{UserID: demoUsers[0].ID})
	if err != nil {
		return fmt.Errorf("seed order: %w", err)
	}
	for _, p := range demoProducts[:2] {
		if err := orders.AddProduct(ctx, order.ID, p.ID); err != nil {
			return fmt.Errorf("seed order products: %w", err)
		}
	}

	output.Success("Seeded %d users, %d products, 1 order", len(demoUsers), len(demoProducts))
	return nil
}
