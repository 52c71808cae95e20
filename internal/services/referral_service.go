package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
	"yield-ledger/internal/utils"
)

const maxCodeAttempts = 5

// CommissionReference is the journal reference of the commission paid for an investment.
func CommissionReference(investmentID uint) string {
	return "COMMISSION:" + strconv.FormatUint(uint64(investmentID), 10)
}

// ReferralService links referees to referrers and pays the one-time
// first-investment commission.
type ReferralService struct {
	repo    *repository.Repository
	opts    Options
	wallet  *WalletService
	journal *Journal
}

// GetOrCreateCode returns the user's referral code, generating one on first use.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, userID uint) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ReferralCode != nil {
		return *user.ReferralCode, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		taken, err := s.repo.ReferralCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		set, err := s.repo.SetReferralCode(ctx, userID, code)
		if err != nil {
			return "", err
		}
		if !set {
			// A concurrent request assigned one first.
			user, err = s.repo.GetUserByID(ctx, userID)
			if err != nil {
				return "", err
			}
			if user.ReferralCode != nil {
				return *user.ReferralCode, nil
			}
			continue
		}

		zap.L().Info("Generated referral code", zap.Uint("user_id", userID), zap.String("code", code))
		return code, nil
	}
	return "", fmt.Errorf("failed to generate a unique referral code for user %d", userID)
}

// LinkReferral records that refereeID joined through code. Checks run in
// order: already linked, unknown code, own code.
func (s *ReferralService) LinkReferral(ctx context.Context, refereeID uint, code string) (*models.Referral, error) {
	code = utils.NormalizeReferralCode(code)

	_, err := s.repo.GetReferralByReferee(ctx, refereeID)
	if err == nil {
		return nil, ErrAlreadyLinked
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if code == "" {
		return nil, ErrInvalidCode
	}
	referrer, err := s.repo.GetUserByReferralCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if referrer.ID == refereeID {
		return nil, ErrSelfReferral
	}

	ref := &models.Referral{
		ReferrerID: referrer.ID,
		RefereeID:  refereeID,
		Code:       code,
		ReferredAt: s.opts.Now(),
	}
	inserted, err := s.repo.InsertReferral(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyLinked
	}

	zap.L().Info("Applied referral code",
		zap.String("code", code),
		zap.Uint("referee_id", refereeID),
		zap.Uint("referrer_id", referrer.ID))
	return ref, nil
}

// OnFirstInvestment pays the referrer of inv's owner, if any. The commission
// is unique per investment and per referee, so a repeated call returns nil
// without paying twice. Call it inside the transaction that created inv.
func (s *ReferralService) OnFirstInvestment(ctx context.Context, inv *models.Investment) (*models.Commission, error) {
	ref, err := s.repo.GetReferralByReferee(ctx, inv.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	amount := inv.Amount.Mul(s.opts.CommissionRate).Div(hundred).Round(moneyPlaces)
	commission := &models.Commission{
		ReferrerID:       ref.ReferrerID,
		RefereeID:        inv.UserID,
		InvestmentID:     inv.ID,
		InvestmentAmount: inv.Amount,
		Rate:             s.opts.CommissionRate,
		Amount:           amount,
		Status:           models.CommissionStatusPending,
		CreatedAt:        s.opts.Now(),
	}
	inserted, err := s.repo.InsertCommission(ctx, commission)
	if err != nil {
		return nil, err
	}
	if !inserted {
		zap.L().Info("Commission already recorded",
			zap.Uint("investment_id", inv.ID),
			zap.Uint("referee_id", inv.UserID))
		return nil, nil
	}

	if amount.IsPositive() {
		if _, err := s.wallet.Credit(ctx, ref.ReferrerID, amount); err != nil {
			return nil, fmt.Errorf("credit commission: %w", err)
		}
		_, _, err = s.journal.Record(ctx, Entry{
			UserID:      ref.ReferrerID,
			Type:        models.TransactionTypeReferral,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("Referral commission for investment #%d", inv.ID),
			Reference:   CommissionReference(inv.ID),
		})
		if err != nil {
			return nil, err
		}
	}

	now := s.opts.Now()
	if _, err := s.repo.MarkCommissionPaid(ctx, commission.ID, now); err != nil {
		return nil, err
	}
	commission.Status = models.CommissionStatusPaid
	commission.PaidAt = &now

	zap.L().Info("Referral commission paid",
		zap.Uint("referrer_id", ref.ReferrerID),
		zap.Uint("referee_id", inv.UserID),
		zap.Uint("investment_id", inv.ID),
		zap.String("amount", amount.String()))
	return commission, nil
}

// Stats returns the user's referral totals and code.
func (s *ReferralService) Stats(ctx context.Context, userID uint) (*models.ReferralStats, error) {
	code, err := s.GetOrCreateCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.ReferralTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.ReferralCode = code
	return stats, nil
}

// ListReferrals returns the users referred by userID.
func (s *ReferralService) ListReferrals(ctx context.Context, userID uint) ([]models.Referral, error) {
	return s.repo.ListReferralsByReferrer(ctx, userID)
}

// ListCommissions returns the commissions earned by userID.
func (s *ReferralService) ListCommissions(ctx context.Context, userID uint) ([]models.Commission, error) {
	return s.repo.ListCommissionsByReferrer(ctx, userID)
}
