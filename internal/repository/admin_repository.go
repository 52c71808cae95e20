package repository

import (
	"context"
	"fmt"

	"yield-ledger/internal/models"
)

// GetAdminByUserID returns the admin record for the user or ErrNotFound.
func (r *Repository) GetAdminByUserID(ctx context.Context, userID uint) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return nil, notFound(err)
	}
	return &admin, nil
}

// CreateAdmin grants admin access.
func (r *Repository) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// InsertAdminLog appends an audit record.
func (r *Repository) InsertAdminLog(ctx context.Context, entry *models.AdminLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write admin log: %w", err)
	}
	return nil
}

// ListAdminLogs returns the latest audit records.
func (r *Repository) ListAdminLogs(ctx context.Context, limit int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}
	return logs, nil
}

// CountWithdrawalsByStatus counts withdrawal requests across all users.
func (r *Repository) CountWithdrawalsByStatus(ctx context.Context, status models.WithdrawalStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}
	return count, nil
}
