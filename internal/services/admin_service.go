package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// AdminService holds operator-only operations: investment overrides, the
// audit log and platform aggregates.
type AdminService struct {
	repo *repository.Repository
	opts Options
}

// IsAdmin reports whether the user has an admin record.
func (s *AdminService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	_, err := s.repo.GetAdminByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AdjustInvestment applies a percentage override. The percentage is turned
// into a flat amount of the principal and stored as the manual adjustment,
// which is the only override accrual applies. Disabling clears the manual
// adjustment only while it still holds the converted percentage.
func (s *AdminService) AdjustInvestment(
	ctx context.Context,
	adminID, investmentID uint,
	enabled bool,
	percentage decimal.Decimal,
) (*models.Investment, error) {
	return s.adjust(ctx, adminID, investmentID, "adjust_investment", func(inv *models.Investment) error {
		if !enabled {
			if inv.AdminAdjustment.Enabled {
				inv.ManualAdjustment = models.ManualAdjustment{Amount: decimal.Zero}
			}
			inv.AdminAdjustment = models.AdminAdjustment{Percentage: decimal.Zero}
			return nil
		}
		inv.AdminAdjustment = models.AdminAdjustment{Enabled: true, Percentage: percentage}
		amount := inv.Amount.Mul(percentage).Div(hundred).Round(moneyPlaces)
		if inv.Amount.Add(amount).IsNegative() {
			return fmt.Errorf("%w: adjustment would take the value below zero", ErrInvalidAmount)
		}
		inv.ManualAdjustment = models.ManualAdjustment{
			Amount:   amount,
			Reason:   fmt.Sprintf("admin adjustment of %s%%", percentage.String()),
			IsActive: true,
		}
		return nil
	})
}

// ManualAdjust sets the flat earnings offset of an investment.
func (s *AdminService) ManualAdjust(
	ctx context.Context,
	adminID, investmentID uint,
	amount decimal.Decimal,
	reason string,
	active bool,
) (*models.Investment, error) {
	return s.adjust(ctx, adminID, investmentID, "manual_adjust_investment", func(inv *models.Investment) error {
		if active && inv.Amount.Add(amount).IsNegative() {
			return fmt.Errorf("%w: adjustment would take the value below zero", ErrInvalidAmount)
		}
		inv.ManualAdjustment = models.ManualAdjustment{Amount: amount, Reason: reason, IsActive: active}
		// A flat amount replaces any percentage override.
		inv.AdminAdjustment = models.AdminAdjustment{Percentage: decimal.Zero}
		return nil
	})
}

func (s *AdminService) adjust(
	ctx context.Context,
	adminID, investmentID uint,
	action string,
	apply func(inv *models.Investment) error,
) (*models.Investment, error) {
	var inv *models.Investment
	err := inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		var err error
		inv, err = tx.repo.GetInvestmentByID(ctx, investmentID)
		if err != nil {
			return err
		}
		if inv.MaturityProcessed || inv.Status == models.InvestmentStatusSold || inv.Status == models.InvestmentStatusCancelled {
			return fmt.Errorf("investment %d: %w", investmentID, ErrAlreadyProcessed)
		}
		if err := apply(inv); err != nil {
			return err
		}
		if err := tx.repo.SaveAdjustments(ctx, inv, s.opts.Now()); err != nil {
			return err
		}
		if err := refreshAccrual(ctx, tx.repo, inv, s.opts.Now()); err != nil {
			return err
		}
		return tx.Admin.LogAdminAction(ctx, adminID, action, "investment", &investmentID, models.JSONB{
			"admin_adjustment_enabled":    inv.AdminAdjustment.Enabled,
			"admin_adjustment_percentage": inv.AdminAdjustment.Percentage.String(),
			"manual_adjustment_amount":    inv.ManualAdjustment.Amount.String(),
			"manual_adjustment_active":    inv.ManualAdjustment.IsActive,
			"manual_adjustment_reason":    inv.ManualAdjustment.Reason,
		})
	})
	if err != nil {
		logDecisionError("investment", investmentID, action, err)
		return nil, err
	}

	zap.L().Info("Investment adjusted",
		zap.Uint("investment_id", investmentID),
		zap.Uint("admin_id", adminID),
		zap.String("action", action),
		zap.String("current_value", inv.CurrentValue.String()))
	return inv, nil
}

// LogAdminAction appends an audit record.
func (s *AdminService) LogAdminAction(
	ctx context.Context,
	adminID uint,
	action, resourceType string,
	resourceID *uint,
	details models.JSONB,
) error {
	return s.repo.InsertAdminLog(ctx, &models.AdminLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    s.opts.Now(),
	})
}

// PlatformStats aggregates the platform from the journal and the investment table.
func (s *AdminService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var (
		stats = &models.PlatformStats{}
		err   error
	)
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveInvestments, err = s.repo.CountInvestmentsByStatus(ctx, models.InvestmentStatusActive); err != nil {
		return nil, err
	}
	if stats.PendingWithdrawals, err = s.repo.CountWithdrawalsByStatus(ctx, models.WithdrawalStatusPending); err != nil {
		return nil, err
	}
	if stats.PendingDeposits, err = s.repo.CountTransactions(ctx, models.TransactionTypeDeposit, models.TransactionStatusPending); err != nil {
		return nil, err
	}
	if stats.TotalDeposited, err = s.repo.SumTransactions(ctx, 0, models.TransactionTypeDeposit, models.TransactionStatusCompleted); err != nil {
		return nil, err
	}
	if stats.TotalWithdrawn, err = s.repo.SumTransactions(ctx, 0, models.TransactionTypeWithdrawal, models.TransactionStatusCompleted); err != nil {
		return nil, err
	}
	if stats.TotalInvested, err = s.repo.SumInvestedPrincipal(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMaturityPayout, err = s.repo.SumTransactionsByReferencePrefix(ctx, "MATURE:"); err != nil {
		return nil, err
	}
	return stats, nil
}
