package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/config"
	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// SeedCatalog upserts every plan and crypto of the catalog.
func SeedCatalog(ctx context.Context, repo *repository.Repository, catalog *config.Catalog) error {
	for _, p := range catalog.Plans {
		bounds, err := p.Bounds()
		if err != nil {
			return err
		}
		rate, err := decimal.NewFromString(p.DailyReturnPercentage)
		if err != nil {
			return fmt.Errorf("plan %s: %w", p.Name, err)
		}
		plan := &models.InvestmentPlan{
			Name:                  p.Name,
			MinAmount:             bounds[0],
			MaxAmount:             bounds[1],
			DailyReturnPercentage: rate,
			Duration:              p.Duration,
			IsActive:              p.IsActive(),
		}
		if err := repo.UpsertPlan(ctx, plan); err != nil {
			return err
		}
	}

	for _, c := range catalog.Cryptos {
		crypto := &models.Crypto{
			Symbol:   c.Symbol,
			Name:     c.Name,
			IsActive: c.IsActive(),
		}
		if err := repo.UpsertCrypto(ctx, crypto); err != nil {
			return err
		}
	}

	zap.L().Info("Catalog seeded",
		zap.Int("plans", len(catalog.Plans)),
		zap.Int("cryptos", len(catalog.Cryptos)))
	return nil
}
