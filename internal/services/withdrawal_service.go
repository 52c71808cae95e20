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

// WithdrawalService runs the hold, decide, release workflow:
//
//	pending --approve--> approved --complete--> completed
//	pending --reject---> rejected
type WithdrawalService struct {
	repo *repository.Repository
	opts Options
}

// Create holds amount from the user's balance and opens a pending request
// with a matching pending journal entry.
func (s *WithdrawalService) Create(
	ctx context.Context,
	userID uint,
	amount decimal.Decimal,
	method models.PaymentMethod,
) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if method == nil {
		return nil, ErrInvalidPaymentMethod
	}

	var req *models.WithdrawalRequest
	err := inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		if _, err := tx.Wallet.Hold(ctx, userID, amount); err != nil {
			return err
		}
		entry, _, err := tx.Journal.Record(ctx, Entry{
			UserID:        userID,
			Type:          models.TransactionTypeWithdrawal,
			Amount:        amount,
			Status:        models.TransactionStatusPending,
			Description:   fmt.Sprintf("Withdrawal via %s", method.Method()),
			PaymentMethod: method.Method(),
		})
		if err != nil {
			return err
		}
		req = &models.WithdrawalRequest{
			UserID:               userID,
			Amount:               amount,
			PaymentMethod:        method.Method(),
			PaymentDetails:       method.Details(),
			Status:               models.WithdrawalStatusPending,
			TransactionReference: entry.Reference,
			RequestedAt:          s.opts.Now(),
		}
		return tx.repo.CreateWithdrawalRequest(ctx, req)
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientFunds) {
			zap.L().Error("Failed to create withdrawal request",
				zap.Uint("user_id", userID),
				zap.String("amount", amount.String()),
				zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("Withdrawal requested",
		zap.Uint("request_id", req.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("method", req.PaymentMethod))
	return req, nil
}

// Approve accepts a pending request. Funds are already held, so nothing moves.
func (s *WithdrawalService) Approve(ctx context.Context, id, adminID uint, notes string) (*models.WithdrawalRequest, error) {
	return s.decide(ctx, id, adminID, notes, models.WithdrawalStatusApproved)
}

// Reject returns the held funds and fails the journal entry.
func (s *WithdrawalService) Reject(ctx context.Context, id, adminID uint, notes string) (*models.WithdrawalRequest, error) {
	return s.decide(ctx, id, adminID, notes, models.WithdrawalStatusRejected)
}

// Complete settles an approved request and completes the journal entry.
func (s *WithdrawalService) Complete(ctx context.Context, id, adminID uint, notes string) (*models.WithdrawalRequest, error) {
	return s.decide(ctx, id, adminID, notes, models.WithdrawalStatusCompleted)
}

// Process applies an admin decision given by its target status.
func (s *WithdrawalService) Process(ctx context.Context, id, adminID uint, status models.WithdrawalStatus, notes string) (*models.WithdrawalRequest, error) {
	switch status {
	case models.WithdrawalStatusApproved, models.WithdrawalStatusRejected, models.WithdrawalStatusCompleted:
		return s.decide(ctx, id, adminID, notes, status)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// ListForUser returns the user's requests newest first.
func (s *WithdrawalService) ListForUser(ctx context.Context, userID uint) ([]models.WithdrawalRequest, error) {
	return s.repo.ListUserWithdrawals(ctx, userID)
}

func (s *WithdrawalService) decide(
	ctx context.Context,
	id, adminID uint,
	notes string,
	to models.WithdrawalStatus,
) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := inTx(ctx, s.repo, s.opts, func(tx *Services) error {
		var err error
		req, err = tx.repo.GetWithdrawalRequest(ctx, id)
		if err != nil {
			return err
		}

		from, err := requiredSource(req.Status, to)
		if err != nil {
			return err
		}

		now := s.opts.Now()
		moved, err := tx.repo.TransitionWithdrawal(ctx, id, from, to, adminID, notes, now)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("withdrawal %d: %w", id, ErrAlreadyProcessed)
		}

		switch to {
		case models.WithdrawalStatusRejected:
			if _, err := tx.Wallet.ReleaseHold(ctx, req.UserID, req.Amount, HoldReturned); err != nil {
				return err
			}
			reason := notes
			if reason == "" {
				reason = "rejected by admin"
			}
			if err := tx.Journal.Fail(ctx, req.TransactionReference, reason); err != nil {
				return err
			}
		case models.WithdrawalStatusCompleted:
			if _, err := tx.Wallet.ReleaseHold(ctx, req.UserID, req.Amount, HoldSettled); err != nil {
				return err
			}
			if err := tx.Journal.Complete(ctx, req.TransactionReference); err != nil {
				return err
			}
		}

		req.Status = to
		req.ProcessedAt = &now
		req.ProcessedBy = &adminID
		req.AdminNotes = notes
		return tx.Admin.LogAdminAction(ctx, adminID, "process_withdrawal", "withdrawal_request", &id, models.JSONB{
			"status": string(to),
			"notes":  notes,
			"amount": req.Amount.String(),
		})
	})
	if err != nil {
		logDecisionError("withdrawal", id, string(to), err)
		return nil, err
	}

	zap.L().Info("Withdrawal request processed",
		zap.Uint("request_id", id),
		zap.Uint("admin_id", adminID),
		zap.String("status", string(to)))
	return req, nil
}

// requiredSource returns the status a request must be in to move to `to`.
func requiredSource(current, to models.WithdrawalStatus) (models.WithdrawalStatus, error) {
	if current.IsTerminal() {
		return "", ErrAlreadyProcessed
	}
	switch to {
	case models.WithdrawalStatusApproved, models.WithdrawalStatusRejected:
		if current != models.WithdrawalStatusPending {
			return "", ErrAlreadyProcessed
		}
		return models.WithdrawalStatusPending, nil
	case models.WithdrawalStatusCompleted:
		if current != models.WithdrawalStatusApproved {
			return "", ErrNotApproved
		}
		return models.WithdrawalStatusApproved, nil
	}
	return "", ErrInvalidStatus
}

func logDecisionError(kind string, id uint, to string, err error) {
	if isGuardError(err) {
		zap.L().Warn("Admin decision refused",
			zap.String("kind", kind),
			zap.Uint("id", id),
			zap.String("status", to),
			zap.Error(err))
		return
	}
	zap.L().Error("Admin decision failed",
		zap.String("kind", kind),
		zap.Uint("id", id),
		zap.String("status", to),
		zap.Error(err))
}

func isGuardError(err error) bool {
	for _, target := range []error{
		ErrAlreadyProcessed, ErrNotApproved, ErrInvalidStatus, ErrNotFound, ErrInsufficientFunds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
