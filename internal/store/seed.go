package store

import (
	"context"
	"fmt"
	"math/rand"

	"brandconsole/internal/catalog"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var seedCategories = []string{
	"Eletrônicos", "Casa e Cozinha", "Moda", "Esporte e Lazer",
	"Beleza", "Livros", "Brinquedos", "Pet Shop",
}

var seedAdjectives = []string{"Premium", "Compacto", "Clássico", "Pro", "Essencial", "Max"}

// SeedOptions controls the demo catalog generated by Seed.
type SeedOptions struct {
	Categories          int
	ProductsPerCategory int
	Seed                int64
}

// SeedResult reports what Seed created.
type SeedResult struct {
	Categories int
	Products   int
	CampaignID string
}

// Seed fills the catalog with generated categories and products and creates
// an empty demo campaign. Products names and prices are deterministic for a
// given opts.Seed; ids are random.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	if opts.Categories <= 0 {
		opts.Categories = 4
	}
	if opts.Categories > len(seedCategories) {
		opts.Categories = len(seedCategories)
	}
	if opts.ProductsPerCategory <= 0 {
		opts.ProductsPerCategory = 10
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (id, name, commission, image_url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return SeedResult{}, fmt.Errorf("prepare category insert: %w", err)
	}
	defer catStmt.Close()
	prodStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, name, sku, category_id, price_cents, commission, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SeedResult{}, fmt.Errorf("prepare product insert: %w", err)
	}
	defer prodStmt.Close()

	var res SeedResult
	for i := 0; i < opts.Categories; i++ {
		catID := uuid.NewString()
		name := seedCategories[i]
		commission := float64(5 + rng.Intn(16))
		if _, err := catStmt.ExecContext(ctx, catID, name, commission, "https://img.example.com/categories/"+catID+".png"); err != nil {
			return SeedResult{}, fmt.Errorf("insert category %s: %w", name, err)
		}
		res.Categories++

		for j := 0; j < opts.ProductsPerCategory; j++ {
			id := uuid.NewString()
			n := res.Products + 1
			pname := fmt.Sprintf("%s %s %03d", name, seedAdjectives[rng.Intn(len(seedAdjectives))], n)
			price := int64(990 + rng.Intn(250000))
			pcommission := float64(rng.Intn(4000)) / 100
			if _, err := prodStmt.ExecContext(ctx, id, pname, fmt.Sprintf("SKU-%05d", n), catID, price, pcommission,
				"https://img.example.com/products/"+id+".png"); err != nil {
				return SeedResult{}, fmt.Errorf("insert product %s: %w", pname, err)
			}
			res.Products++
		}
	}
	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}

	c, err := s.CreateCampaign(ctx, catalog.Campaign{
		Name:           "Campanha de demonstração",
		Description:    "Criada pelo seed do catálogo",
		CommissionType: catalog.CommissionPercentage,
		Commission:     10,
	})
	if err != nil {
		return SeedResult{}, err
	}
	res.CampaignID = c.ID

	s.logger.Info("catalog seeded",
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products),
		zap.String("campaign", res.CampaignID))
	return res, nil
}
