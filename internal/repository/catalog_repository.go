package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"yield-ledger/internal/models"
)

// GetPlan returns the plan or ErrNotFound.
func (r *Repository) GetPlan(ctx context.Context, id uint) (*models.InvestmentPlan, error) {
	var plan models.InvestmentPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

// ListActivePlans returns the plans open for subscription.
func (r *Repository) ListActivePlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	var plans []models.InvestmentPlan
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("duration ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// UpsertPlan inserts the plan or updates it by name.
func (r *Repository) UpsertPlan(ctx context.Context, plan *models.InvestmentPlan) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_amount", "max_amount", "daily_return_percentage", "duration", "is_active", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plan %s: %w", plan.Name, err)
	}
	// gorm leaves a false bool out of the insert and the column default wins.
	if !plan.IsActive {
		err = r.db.WithContext(ctx).Model(&models.InvestmentPlan{}).
			Where("name = ?", plan.Name).
			Update("is_active", false).Error
		if err != nil {
			return fmt.Errorf("failed to deactivate plan %s: %w", plan.Name, err)
		}
	}
	return nil
}

// GetCrypto returns the asset or ErrNotFound.
func (r *Repository) GetCrypto(ctx context.Context, id uint) (*models.Crypto, error) {
	var crypto models.Crypto
	if err := r.db.WithContext(ctx).First(&crypto, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &crypto, nil
}

// ListActiveCryptos returns the listed assets.
func (r *Repository) ListActiveCryptos(ctx context.Context) ([]models.Crypto, error) {
	var cryptos []models.Crypto
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("symbol ASC").Find(&cryptos).Error; err != nil {
		return nil, fmt.Errorf("failed to list cryptos: %w", err)
	}
	return cryptos, nil
}

// UpsertCrypto inserts the asset or updates it by symbol.
func (r *Repository) UpsertCrypto(ctx context.Context, crypto *models.Crypto) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_active"}),
	}).Create(crypto).Error
	if err != nil {
		return fmt.Errorf("failed to upsert crypto %s: %w", crypto.Symbol, err)
	}
	if !crypto.IsActive {
		err = r.db.WithContext(ctx).Model(&models.Crypto{}).
			Where("symbol = ?", crypto.Symbol).
			Update("is_active", false).Error
		if err != nil {
			return fmt.Errorf("failed to deactivate crypto %s: %w", crypto.Symbol, err)
		}
	}
	return nil
}
