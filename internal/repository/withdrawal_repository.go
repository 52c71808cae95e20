package repository

import (
	"context"
	"fmt"
	"time"

	"yield-ledger/internal/models"
)

// CreateWithdrawalRequest persists a new request.
func (r *Repository) CreateWithdrawalRequest(ctx context.Context, req *models.WithdrawalRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return nil
}

// GetWithdrawalRequest returns the request or ErrNotFound.
func (r *Repository) GetWithdrawalRequest(ctx context.Context, id uint) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// TransitionWithdrawal moves a request from one status to the next. It returns
// false when the stored status is no longer from.
func (r *Repository) TransitionWithdrawal(
	ctx context.Context,
	id uint,
	from, to models.WithdrawalStatus,
	adminID uint,
	notes string,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"processed_at": at,
			"processed_by": adminID,
			"admin_notes":  notes,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update withdrawal request: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListUserWithdrawals returns the user's requests newest first.
func (r *Repository) ListUserWithdrawals(ctx context.Context, userID uint) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("requested_at DESC").Order("id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	return reqs, nil
}
