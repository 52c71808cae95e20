package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yield-ledger/internal/models"
)

// GetOrCreateWallet returns the user's wallet, inserting a zero wallet on first access.
func (r *Repository) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	wallet = models.Wallet{
		UserID:             userID,
		Balance:            decimal.Zero,
		PendingWithdrawals: decimal.Zero,
		TotalDeposited:     decimal.Zero,
		TotalWithdrawn:     decimal.Zero,
		Version:            1,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&wallet)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return &wallet, nil
	}

	// Lost the insert race; read the winner's row.
	wallet = models.Wallet{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// GetWallet returns the user's wallet or ErrNotFound.
func (r *Repository) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFound(err)
	}
	return &wallet, nil
}

// UpdateWalletBalances writes all wallet figures if the stored version still
// matches wallet.Version. On success wallet.Version is advanced.
func (r *Repository) UpdateWalletBalances(ctx context.Context, wallet *models.Wallet, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"balance":             wallet.Balance,
			"pending_withdrawals": wallet.PendingWithdrawals,
			"total_deposited":     wallet.TotalDeposited,
			"total_withdrawn":     wallet.TotalWithdrawn,
			"version":             wallet.Version + 1,
			"updated_at":          at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("wallet %d version %d: %w", wallet.ID, wallet.Version, ErrConcurrentModification)
	}
	wallet.Version++
	wallet.UpdatedAt = at
	return nil
}

// ListWallets returns every wallet ordered by user.
func (r *Repository) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := r.db.WithContext(ctx).Order("user_id ASC").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}
