package services

import (
	"context"

	"github.com/shopspring/decimal"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// WalletDrift compares the stored wallet counters with the journal.
type WalletDrift struct {
	UserID           uint            `json:"user_id"`
	StoredPending    decimal.Decimal `json:"stored_pending_withdrawals"`
	JournalPending   decimal.Decimal `json:"journal_pending_withdrawals"`
	StoredWithdrawn  decimal.Decimal `json:"stored_total_withdrawn"`
	JournalWithdrawn decimal.Decimal `json:"journal_total_withdrawn"`
	StoredDeposited  decimal.Decimal `json:"stored_total_deposited"`
	JournalDeposited decimal.Decimal `json:"journal_total_deposited"`
	Drifted          bool            `json:"drifted"`
}

// ReconciliationService surfaces ledger states that need an operator.
type ReconciliationService struct {
	repo *repository.Repository
}

// UnpaidMaturities lists investments that were claimed for maturity but have
// no payout in the journal.
func (s *ReconciliationService) UnpaidMaturities(ctx context.Context) ([]models.Investment, error) {
	return s.repo.ListClaimedWithoutJournal(ctx)
}

// ReconcileWallet reports the drift of one user's wallet. It never creates a
// wallet and returns ErrNotFound for users without one.
func (s *ReconciliationService) ReconcileWallet(ctx context.Context, userID uint) (*WalletDrift, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.drift(ctx, wallet)
}

// ReconcileAll reports every wallet that drifted from the journal.
func (s *ReconciliationService) ReconcileAll(ctx context.Context) ([]WalletDrift, error) {
	wallets, err := s.repo.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	var drifted []WalletDrift
	for i := range wallets {
		d, err := s.drift(ctx, &wallets[i])
		if err != nil {
			return nil, err
		}
		if d.Drifted {
			drifted = append(drifted, *d)
		}
	}
	return drifted, nil
}

func (s *ReconciliationService) drift(ctx context.Context, wallet *models.Wallet) (*WalletDrift, error) {
	pending, err := s.repo.SumTransactions(ctx, wallet.UserID, models.TransactionTypeWithdrawal, models.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.repo.SumTransactions(ctx, wallet.UserID, models.TransactionTypeWithdrawal, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}
	deposited, err := s.repo.SumTransactions(ctx, wallet.UserID, models.TransactionTypeDeposit, models.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}

	d := &WalletDrift{
		UserID:           wallet.UserID,
		StoredPending:    wallet.PendingWithdrawals,
		JournalPending:   pending,
		StoredWithdrawn:  wallet.TotalWithdrawn,
		JournalWithdrawn: withdrawn,
		StoredDeposited:  wallet.TotalDeposited,
		JournalDeposited: deposited,
	}
	d.Drifted = !pending.Equal(wallet.PendingWithdrawals) ||
		!withdrawn.Equal(wallet.TotalWithdrawn) ||
		!deposited.Equal(wallet.TotalDeposited)
	return d, nil
}
