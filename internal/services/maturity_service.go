package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// MaturityReference is the journal reference of an investment's maturity payout.
func MaturityReference(investmentID uint) string {
	return "MATURE:" + strconv.FormatUint(uint64(investmentID), 10)
}

// MaturityProcessor pays out completed investments exactly once.
type MaturityProcessor struct {
	repo *repository.Repository
	opts Options
}

// Process claims a completed investment and credits principal plus earnings.
// Claim, credit and journal entry commit together, so a failed credit leaves
// the investment unclaimed for the next evaluation. It returns false when
// there was nothing to pay or another evaluator won the claim.
func (p *MaturityProcessor) Process(ctx context.Context, investmentID uint) (bool, error) {
	paid := false
	err := inTx(ctx, p.repo, p.opts, func(tx *Services) error {
		var err error
		paid, err = tx.Maturity.processInTx(ctx, tx, investmentID)
		return err
	})
	if err != nil {
		zap.L().Error("Maturity payout failed",
			zap.String("alert", "maturity_payout_failed"),
			zap.Uint("investment_id", investmentID),
			zap.Error(err))
		return false, err
	}
	return paid, nil
}

func (p *MaturityProcessor) processInTx(ctx context.Context, tx *Services, investmentID uint) (bool, error) {
	inv, err := p.repo.GetInvestmentByID(ctx, investmentID)
	if err != nil {
		return false, err
	}
	if inv.Status != models.InvestmentStatusCompleted || inv.MaturityProcessed {
		return false, nil
	}

	now := p.opts.Now()
	claimed, err := p.repo.ClaimMaturity(ctx, inv.ID, now)
	if err != nil {
		return false, err
	}
	if !claimed {
		zap.L().Debug("Maturity already claimed", zap.Uint("investment_id", inv.ID))
		return false, nil
	}

	reference := MaturityReference(inv.ID)
	exists, err := tx.Journal.Exists(ctx, reference)
	if err != nil {
		return false, err
	}
	if exists {
		// The payout was journaled under an earlier claim; paying again would double-credit.
		zap.L().Warn("Maturity payout already journaled",
			zap.Uint("investment_id", inv.ID),
			zap.String("reference", reference))
		return false, nil
	}

	payout := inv.Amount.Add(inv.TotalEarnings)
	if payout.IsPositive() {
		if _, err := tx.Wallet.Credit(ctx, inv.UserID, payout); err != nil {
			return false, fmt.Errorf("credit maturity payout: %w", err)
		}
	}

	txType := models.TransactionTypeProfit
	if inv.TotalEarnings.IsNegative() {
		txType = models.TransactionTypeLoss
	}
	_, _, err = tx.Journal.Record(ctx, Entry{
		UserID:      inv.UserID,
		Type:        txType,
		Amount:      payout,
		Status:      models.TransactionStatusCompleted,
		Description: fmt.Sprintf("Maturity payout for investment #%d", inv.ID),
		Reference:   reference,
	})
	if err != nil {
		return false, fmt.Errorf("journal maturity payout: %w", err)
	}

	zap.L().Info("Maturity payout credited",
		zap.Uint("investment_id", inv.ID),
		zap.Uint("user_id", inv.UserID),
		zap.String("amount", payout.String()))
	return true, nil
}

// SweepDue evaluates up to limit investments whose term has run and pays out
// those that mature. It returns the number of payouts made.
func (p *MaturityProcessor) SweepDue(ctx context.Context, limit int) (int, error) {
	now := p.opts.Now()
	candidates, err := p.repo.ListMaturityCandidates(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	paid := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return paid, err
		}
		inv := &candidates[i]
		if err := refreshAccrual(ctx, p.repo, inv, now); err != nil {
			zap.L().Error("Failed to refresh investment during sweep",
				zap.Uint("investment_id", inv.ID), zap.Error(err))
			continue
		}
		ok, err := p.Process(ctx, inv.ID)
		if err != nil {
			continue
		}
		if ok {
			paid++
		}
	}
	return paid, nil
}

// refreshAccrual applies accrual to inv and persists it when it changed. If a
// concurrent writer moved the row on, inv is reloaded.
func refreshAccrual(ctx context.Context, repo *repository.Repository, inv *models.Investment, now time.Time) error {
	prev := inv.Status
	if !ApplyAccrual(inv, now) {
		return nil
	}
	saved, err := repo.SaveAccrual(ctx, inv, prev, now)
	if err != nil {
		return err
	}
	if !saved {
		fresh, err := repo.GetInvestmentByID(ctx, inv.ID)
		if err != nil {
			return err
		}
		*inv = *fresh
	}
	return nil
}
