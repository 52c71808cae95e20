package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"yield-ledger/internal/models"
)

// InsertReferral stores a referral unless the referee already has one, in
// which case it returns false.
func (r *Repository) InsertReferral(ctx context.Context, ref *models.Referral) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "referee_id"}}, DoNothing: true}).
		Create(ref)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create referral: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// GetReferralByReferee returns the referee's referral or ErrNotFound.
func (r *Repository) GetReferralByReferee(ctx context.Context, refereeID uint) (*models.Referral, error) {
	var ref models.Referral
	if err := r.db.WithContext(ctx).Where("referee_id = ?", refereeID).First(&ref).Error; err != nil {
		return nil, notFound(err)
	}
	return &ref, nil
}

// ListReferralsByReferrer returns everyone the user referred.
func (r *Repository) ListReferralsByReferrer(ctx context.Context, referrerID uint) ([]models.Referral, error) {
	var refs []models.Referral
	if err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Order("referred_at DESC").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return refs, nil
}

// InsertCommission stores a commission. It returns false when one already
// exists for the investment or the referee.
func (r *Repository) InsertCommission(ctx context.Context, c *models.Commission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(c)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create commission: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkCommissionPaid flips a pending commission to paid.
func (r *Repository) MarkCommissionPaid(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("id = ? AND status = ?", id, models.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":  models.CommissionStatusPaid,
			"paid_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark commission paid: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListCommissionsByReferrer returns the referrer's commissions newest first.
func (r *Repository) ListCommissionsByReferrer(ctx context.Context, referrerID uint) ([]models.Commission, error) {
	var cs []models.Commission
	if err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	return cs, nil
}

// ReferralTotals aggregates a referrer's referral and commission figures.
func (r *Repository) ReferralTotals(ctx context.Context, referrerID uint) (*models.ReferralStats, error) {
	stats := &models.ReferralStats{UserID: referrerID}

	if err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referrer_id = ?", referrerID).Count(&stats.TotalReferrals).Error; err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("referrer_id = ?", referrerID).Count(&stats.TotalCommissions).Error; err != nil {
		return nil, fmt.Errorf("failed to count commissions: %w", err)
	}

	earned, err := sumAmounts(r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("referrer_id = ?", referrerID))
	if err != nil {
		return nil, fmt.Errorf("failed to sum commissions: %w", err)
	}
	paid, err := sumAmounts(r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("referrer_id = ? AND status = ?", referrerID, models.CommissionStatusPaid))
	if err != nil {
		return nil, fmt.Errorf("failed to sum commissions: %w", err)
	}
	stats.TotalCommissionEarned = earned
	stats.TotalCommissionPaid = paid
	return stats, nil
}
