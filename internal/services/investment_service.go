package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// CreateInvestmentInput is the subscription request of a user.
type CreateInvestmentInput struct {
	CryptoID uint
	PlanID   uint
	Amount   decimal.Decimal
}

// InvestmentService creates, reads and sells investments. Every read
// recomputes accrual and pays out investments that have matured.
type InvestmentService struct {
	repo     *repository.Repository
	opts     Options
	maturity *MaturityProcessor
}

// Create debits the wallet and opens an investment on the plan's terms. A
// user's first investment triggers the referral commission.
func (s *InvestmentService) Create(ctx context.Context, userID uint, in CreateInvestmentInput) (*models.Investment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	plan, err := s.repo.GetPlan(ctx, in.PlanID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !plan.IsActive) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	crypto, err := s.repo.GetCrypto(ctx, in.CryptoID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !crypto.IsActive) {
		return nil, ErrCryptoNotFound
	}
	if err != nil {
		return nil, err
	}
	if in.Amount.LessThan(plan.MinAmount) || (plan.MaxAmount.IsPositive() && in.Amount.GreaterThan(plan.MaxAmount)) {
		return nil, fmt.Errorf("%w: %s not in [%s, %s]", ErrAmountOutOfBounds, in.Amount, plan.MinAmount, plan.MaxAmount)
	}

	now := s.opts.Now()
	inv := &models.Investment{
		UserID:                userID,
		CryptoID:              crypto.ID,
		InvestmentPlanID:      plan.ID,
		Amount:                in.Amount,
		DailyReturnPercentage: plan.DailyReturnPercentage,
		Duration:              plan.Duration,
		StartDate:             now,
		EndDate:               now.Add(time.Duration(plan.Duration) * day),
		Status:                models.InvestmentStatusActive,
		CurrentValue:          in.Amount,
		ProfitLoss:            decimal.Zero,
		ProfitLossPercentage:  decimal.Zero,
		TotalEarnings:         decimal.Zero,
	}

	err = inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		prior, err := tx.repo.CountUserInvestments(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := tx.Wallet.Debit(ctx, userID, in.Amount); err != nil {
			return err
		}
		if err := tx.repo.CreateInvestment(ctx, inv); err != nil {
			return err
		}
		_, _, err = tx.Journal.Record(ctx, Entry{
			UserID:      userID,
			Type:        models.TransactionTypeInvestment,
			Amount:      in.Amount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Investment #%d in %s (%s plan)", inv.ID, crypto.Symbol, plan.Name),
			Reference:   "INVEST:" + strconv.FormatUint(uint64(inv.ID), 10),
		})
		if err != nil {
			return err
		}
		if prior == 0 {
			if _, err := tx.Referrals.OnFirstInvestment(ctx, inv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientFunds) {
			zap.L().Error("Failed to create investment",
				zap.Uint("user_id", userID),
				zap.String("amount", in.Amount.String()),
				zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("Investment created",
		zap.Uint("investment_id", inv.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", in.Amount.String()),
		zap.Uint("plan_id", plan.ID))
	return inv, nil
}

// List returns the user's investments with accrual applied.
func (s *InvestmentService) List(ctx context.Context, userID uint) ([]models.Investment, error) {
	invs, err := s.repo.ListUserInvestments(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range invs {
		if err := s.evaluate(ctx, &invs[i]); err != nil {
			return nil, err
		}
	}
	return invs, nil
}

// Get returns one of the user's investments with accrual applied. Another
// user's investment is reported as not found.
func (s *InvestmentService) Get(ctx context.Context, userID, investmentID uint) (*models.Investment, error) {
	inv, err := s.repo.GetInvestmentByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, ErrNotFound
	}
	if err := s.evaluate(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Portfolio summarises the user's investments. Totals cover active and
// completed investments; counts cover every status.
func (s *InvestmentService) Portfolio(ctx context.Context, userID uint) (*models.Portfolio, error) {
	invs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &models.Portfolio{
		TotalInvested:        decimal.Zero,
		CurrentValue:         decimal.Zero,
		TotalProfitLoss:      decimal.Zero,
		ProfitLossPercentage: decimal.Zero,
		Counts:               make(map[models.InvestmentStatus]int),
		Investments:          invs,
	}
	for _, inv := range invs {
		p.Counts[inv.Status]++
		if inv.Status != models.InvestmentStatusActive && inv.Status != models.InvestmentStatusCompleted {
			continue
		}
		p.TotalInvested = p.TotalInvested.Add(inv.Amount)
		p.CurrentValue = p.CurrentValue.Add(inv.CurrentValue)
		p.TotalProfitLoss = p.TotalProfitLoss.Add(inv.ProfitLoss)
	}
	if p.TotalInvested.IsPositive() {
		p.ProfitLossPercentage = p.TotalProfitLoss.Div(p.TotalInvested).Mul(hundred).Round(moneyPlaces)
	}
	return p, nil
}

// Sell closes an active investment early and credits principal plus the
// earnings accrued so far. If the term has already run, the investment
// matures instead and ErrInvestmentNotActive is returned.
func (s *InvestmentService) Sell(ctx context.Context, userID, investmentID uint) (*models.Investment, error) {
	inv, err := s.Get(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvestmentStatusActive {
		return nil, ErrInvestmentNotActive
	}

	now := s.opts.Now()
	err = inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		current, err := tx.repo.GetInvestmentByID(ctx, investmentID)
		if err != nil {
			return err
		}
		ApplyAccrual(current, now)
		if current.Status != models.InvestmentStatusActive {
			return ErrInvestmentNotActive
		}

		sold, err := tx.repo.MarkSold(ctx, current, now)
		if err != nil {
			return err
		}
		if !sold {
			return ErrInvestmentNotActive
		}

		payout := current.Amount.Add(current.TotalEarnings)
		if payout.IsPositive() {
			if _, err := tx.Wallet.Credit(ctx, userID, payout); err != nil {
				return err
			}
		}

		txType := models.TransactionTypeProfit
		if current.TotalEarnings.IsNegative() {
			txType = models.TransactionTypeLoss
		}
		_, _, err = tx.Journal.Record(ctx, Entry{
			UserID:      userID,
			Type:        txType,
			Amount:      payout,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Sale of investment #%d", current.ID),
			Reference:   "SELL:" + strconv.FormatUint(uint64(current.ID), 10),
		})
		if err != nil {
			return err
		}

		current.Status = models.InvestmentStatusSold
		current.SoldAt = &now
		inv = current
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvestmentNotActive) {
			zap.L().Error("Failed to sell investment",
				zap.Uint("investment_id", investmentID),
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("Investment sold",
		zap.Uint("investment_id", inv.ID),
		zap.Uint("user_id", userID),
		zap.String("value", inv.CurrentValue.String()))
	return inv, nil
}

// evaluate recomputes accrual and runs the maturity payout when the
// investment is complete but unpaid. A failed payout is logged and retried
// on the next read.
func (s *InvestmentService) evaluate(ctx context.Context, inv *models.Investment) error {
	if err := refreshAccrual(ctx, s.repo, inv, s.opts.Now()); err != nil {
		return err
	}
	if inv.Status != models.InvestmentStatusCompleted || inv.MaturityProcessed {
		return nil
	}

	if _, err := s.maturity.Process(ctx, inv.ID); err != nil {
		return nil
	}
	fresh, err := s.repo.GetInvestmentByID(ctx, inv.ID)
	if err != nil {
		return err
	}
	*inv = *fresh
	return nil
}
