package repository

import (
	"context"
	"fmt"

	"yield-ledger/internal/models"
)

// GetUserByID returns the user or ErrNotFound.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByReferralCode returns the owner of code or ErrNotFound.
func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetReferralCode assigns code to the user if they have none yet. It returns
// false when a code was already set.
func (r *Repository) SetReferralCode(ctx context.Context, userID uint, code string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND referral_code IS NULL", userID).
		Update("referral_code", code)
	if result.Error != nil {
		return false, fmt.Errorf("failed to set referral code: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ReferralCodeTaken reports whether any user already owns code.
func (r *Repository) ReferralCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check referral code: %w", err)
	}
	return count > 0, nil
}

// CreateUser is used by seeding and tests; users are normally provisioned by
// the auth service.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CountUsers counts every registered user.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
