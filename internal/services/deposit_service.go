package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// DepositStatus is an admin decision on a pending deposit.
type DepositStatus string

const (
	DepositApproved DepositStatus = "approved"
	DepositRejected DepositStatus = "rejected"
)

// DepositService records deposit requests and applies admin decisions. The
// wallet is credited only on approval.
type DepositService struct {
	repo    *repository.Repository
	opts    Options
	journal *Journal
}

// Request records a pending deposit.
func (s *DepositService) Request(ctx context.Context, userID uint, amount decimal.Decimal, paymentMethod string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, ErrInvalidPaymentMethod
	}

	tx, _, err := s.journal.Record(ctx, Entry{
		UserID:        userID,
		Type:          models.TransactionTypeDeposit,
		Amount:        amount,
		Status:        models.TransactionStatusPending,
		Description:   fmt.Sprintf("Deposit via %s", paymentMethod),
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		zap.L().Error("Failed to record deposit",
			zap.Uint("user_id", userID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Deposit requested",
		zap.Uint("transaction_id", tx.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", amount.String()))
	return tx, nil
}

// Approve completes a pending deposit and credits the wallet.
func (s *DepositService) Approve(ctx context.Context, id, adminID uint, notes string) (*models.Transaction, error) {
	return s.decide(ctx, id, adminID, notes, DepositApproved)
}

// Reject fails a pending deposit.
func (s *DepositService) Reject(ctx context.Context, id, adminID uint, notes string) (*models.Transaction, error) {
	return s.decide(ctx, id, adminID, notes, DepositRejected)
}

// Process applies an admin decision given by its target status.
func (s *DepositService) Process(ctx context.Context, id, adminID uint, status DepositStatus, notes string) (*models.Transaction, error) {
	switch status {
	case DepositApproved, DepositRejected:
		return s.decide(ctx, id, adminID, notes, status)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

func (s *DepositService) decide(ctx context.Context, id, adminID uint, notes string, decision DepositStatus) (*models.Transaction, error) {
	var entry *models.Transaction
	err := inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		var err error
		entry, err = tx.repo.GetTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		if entry.Type != models.TransactionTypeDeposit {
			return ErrNotFound
		}
		if entry.Status != models.TransactionStatusPending {
			return fmt.Errorf("deposit %d: %w", id, ErrAlreadyProcessed)
		}

		now := s.opts.Now()
		status := models.TransactionStatusCompleted
		reason := ""
		if decision == DepositRejected {
			status = models.TransactionStatusFailed
			reason = notes
			if reason == "" {
				reason = "rejected by admin"
			}
		}

		moved, err := tx.repo.TransitionTransaction(ctx, id, status, reason, now)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("deposit %d: %w", id, ErrAlreadyProcessed)
		}

		if decision == DepositApproved {
			if _, err := tx.Wallet.CreditDeposit(ctx, entry.UserID, entry.Amount); err != nil {
				return err
			}
			entry.CompletedAt = &now
		}
		entry.Status = status
		entry.FailureReason = reason
		return tx.Admin.LogAdminAction(ctx, adminID, "process_deposit", "transaction", &id, models.JSONB{
			"status": string(decision),
			"notes":  notes,
			"amount": entry.Amount.String(),
		})
	})
	if err != nil {
		logDecisionError("deposit", id, string(decision), err)
		return nil, err
	}

	zap.L().Info("Deposit processed",
		zap.Uint("transaction_id", id),
		zap.Uint("admin_id", adminID),
		zap.String("status", string(decision)),
		zap.String("amount", entry.Amount.String()))
	return entry, nil
}
