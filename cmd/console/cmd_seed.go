package main

import (
	"fmt"

	"brandconsole/internal/config"
	"brandconsole/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedCategories int
	seedProducts   int
	seedValue      int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the local store with demo catalog data",
	Long: `Creates demo categories and products in the SQLite store, plus one campaign
to open with "console edit".`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCategories, "categories", 4, "Number of categories")
	seedCmd.Flags().IntVar(&seedProducts, "products", 15, "Products per category")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "Random seed for names and prices")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if cfg.Backend.Kind != config.BackendSQLite {
		return fmt.Errorf("seed needs the %s backend, configured backend is %s", config.BackendSQLite, cfg.Backend.Kind)
	}
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	res, err := be.store.Seed(cmd.Context(), store.SeedOptions{
		Categories:          seedCategories,
		ProductsPerCategory: seedProducts,
		Seed:                seedValue,
	})
	if err != nil {
		return err
	}
	logger.Info("store seeded",
		zap.String("path", be.store.Path()),
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %d categories and %d products into %s\n", res.Categories, res.Products, be.store.Path())
	fmt.Fprintf(out, "Demo campaign: %s\n", res.CampaignID)
	return nil
}
