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

// HoldOutcome selects how a withdrawal hold is released.
type HoldOutcome int

const (
	// HoldReturned puts the held amount back into the balance.
	HoldReturned HoldOutcome = iota
	// HoldSettled pays the held amount out and counts it as withdrawn.
	HoldSettled
)

func (o HoldOutcome) String() string {
	if o == HoldSettled {
		return "settled"
	}
	return "returned"
}

// WalletService owns balance mutation. Every primitive reads the wallet,
// applies the change and writes it back under a version check, retrying when
// a concurrent writer got there first.
type WalletService struct {
	repo *repository.Repository
	opts Options
}

// GetOrCreateWallet returns the user's wallet, creating an empty one on first access.
func (s *WalletService) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.repo.GetOrCreateWallet(ctx, userID)
}

// Credit adds amount to the balance.
func (s *WalletService) Credit(ctx context.Context, userID uint, amount decimal.Decimal) (*models.Wallet, error) {
	return s.mutate(ctx, userID, amount, "credit", func(w *models.Wallet) error {
		w.Balance = w.Balance.Add(amount)
		return nil
	})
}

// CreditDeposit adds an approved deposit to the balance and the deposit total.
func (s *WalletService) CreditDeposit(ctx context.Context, userID uint, amount decimal.Decimal) (*models.Wallet, error) {
	return s.mutate(ctx, userID, amount, "credit_deposit", func(w *models.Wallet) error {
		w.Balance = w.Balance.Add(amount)
		w.TotalDeposited = w.TotalDeposited.Add(amount)
		return nil
	})
}

// Debit removes amount from the balance. It fails with ErrInsufficientFunds
// rather than let the balance go negative.
func (s *WalletService) Debit(ctx context.Context, userID uint, amount decimal.Decimal) (*models.Wallet, error) {
	return s.mutate(ctx, userID, amount, "debit", func(w *models.Wallet) error {
		if w.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		w.Balance = w.Balance.Sub(amount)
		return nil
	})
}

// Hold moves amount from the balance into pending withdrawals.
func (s *WalletService) Hold(ctx context.Context, userID uint, amount decimal.Decimal) (*models.Wallet, error) {
	return s.mutate(ctx, userID, amount, "hold", func(w *models.Wallet) error {
		if w.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		w.Balance = w.Balance.Sub(amount)
		w.PendingWithdrawals = w.PendingWithdrawals.Add(amount)
		return nil
	})
}

// ReleaseHold ends a withdrawal hold. HoldReturned restores the balance;
// HoldSettled counts the amount as withdrawn.
func (s *WalletService) ReleaseHold(ctx context.Context, userID uint, amount decimal.Decimal, outcome HoldOutcome) (*models.Wallet, error) {
	return s.mutate(ctx, userID, amount, "release_"+outcome.String(), func(w *models.Wallet) error {
		if w.PendingWithdrawals.LessThan(amount) {
			return fmt.Errorf("wallet %d holds %s, cannot release %s: %w",
				w.ID, w.PendingWithdrawals, amount, ErrInsufficientFunds)
		}
		w.PendingWithdrawals = w.PendingWithdrawals.Sub(amount)
		if outcome == HoldSettled {
			w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
		} else {
			w.Balance = w.Balance.Add(amount)
		}
		return nil
	})
}

// Snapshot returns the stored balance with the withdrawal and deposit figures
// derived from the journal.
func (s *WalletService) Snapshot(ctx context.Context, userID uint) (*models.WalletSnapshot, error) {
	wallet, err := s.repo.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.SumTransactions(ctx, userID, models.TransactionTypeWithdrawal, models.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.repo.SumTransactions(ctx, userID, models.TransactionTypeWithdrawal, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}
	deposited, err := s.repo.SumTransactions(ctx, userID, models.TransactionTypeDeposit, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}

	return &models.WalletSnapshot{
		UserID:             userID,
		Balance:            wallet.Balance,
		PendingWithdrawals: pending,
		TotalDeposited:     deposited,
		TotalWithdrawn:     withdrawn,
		UpdatedAt:          wallet.UpdatedAt,
	}, nil
}

func (s *WalletService) mutate(
	ctx context.Context,
	userID uint,
	amount decimal.Decimal,
	op string,
	apply func(w *models.Wallet) error,
) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	for attempt := 1; attempt <= s.opts.WalletRetries; attempt++ {
		wallet, err := s.repo.GetOrCreateWallet(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := apply(wallet); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				zap.L().Warn("Wallet operation refused",
					zap.String("op", op),
					zap.Uint("user_id", userID),
					zap.String("amount", amount.String()),
					zap.String("balance", wallet.Balance.String()))
			}
			return nil, err
		}

		err = s.repo.UpdateWalletBalances(ctx, wallet, s.opts.Now())
		if err == nil {
			return wallet, nil
		}
		if !errors.Is(err, repository.ErrConcurrentModification) {
			zap.L().Error("Wallet update failed",
				zap.String("op", op),
				zap.Uint("user_id", userID),
				zap.String("amount", amount.String()),
				zap.Error(err))
			return nil, err
		}
		zap.L().Debug("Wallet version conflict, retrying",
			zap.String("op", op),
			zap.Uint("user_id", userID),
			zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("wallet of user %d after %d attempts: %w", userID, s.opts.WalletRetries, ErrConcurrentModification)
}
