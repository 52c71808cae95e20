package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yield-ledger/internal/models"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepository(db), mock
}

const claimSQL = `UPDATE "investments" SET .+ WHERE .*id = \$\d+ AND status = \$\d+ AND maturity_processed = \$\d+`

func TestClaimMaturity(t *testing.T) {
	ctx := context.Background()

	t.Run("wins the claim", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(claimSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		claimed, err := repo.ClaimMaturity(ctx, 7, time.Now())
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already claimed", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(claimSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		claimed, err := repo.ClaimMaturity(ctx, 7, time.Now())
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(claimSQL).WillReturnError(errors.New("connection reset"))

		claimed, err := repo.ClaimMaturity(ctx, 7, time.Now())
		assert.Error(t, err)
		assert.False(t, claimed)
	})
}

func TestUpdateWalletBalances(t *testing.T) {
	ctx := context.Background()
	const walletSQL = `UPDATE "wallets" SET .+ WHERE .*id = \$\d+ AND version = \$\d+`

	t.Run("advances version", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(walletSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		wallet := &models.Wallet{ID: 3, Version: 4, Balance: decimal.NewFromInt(10)}
		require.NoError(t, repo.UpdateWalletBalances(ctx, wallet, time.Now()))
		assert.Equal(t, int64(5), wallet.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(walletSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		wallet := &models.Wallet{ID: 3, Version: 4}
		err := repo.UpdateWalletBalances(ctx, wallet, time.Now())
		assert.ErrorIs(t, err, ErrConcurrentModification)
		assert.Equal(t, int64(4), wallet.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransitionWithdrawal(t *testing.T) {
	ctx := context.Background()
	const transitionSQL = `UPDATE "withdrawal_requests" SET .+ WHERE .*id = \$\d+ AND status = \$\d+`

	repo, mock := newMockRepository(t)
	mock.ExpectExec(transitionSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(transitionSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.TransitionWithdrawal(ctx, 1, models.WithdrawalStatusPending, models.WithdrawalStatusApproved, 9, "ok", time.Now())
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.TransitionWithdrawal(ctx, 1, models.WithdrawalStatusPending, models.WithdrawalStatusApproved, 9, "again", time.Now())
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
