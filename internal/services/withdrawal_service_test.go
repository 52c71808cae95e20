package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-ledger/internal/models"
)

var testPayout = models.UsdtTrc20{Address: "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE"}

func TestScenarioWithdrawalRejected(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "535")

	req, err := f.svc.Withdrawals.Create(f.ctx, u.ID, dec("100"), testPayout)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusPending, req.Status)
	assert.Equal(t, models.PaymentMethodUsdtTrc20, req.PaymentMethod)
	assert.Equal(t, testPayout.Address, req.PaymentDetails["address"])

	w := f.wallet(u.ID)
	assertDecimal(t, "435", w.Balance)
	assertDecimal(t, "100", w.PendingWithdrawals)
	entry := f.mustTx(req.TransactionReference)
	assert.Equal(t, models.TransactionStatusPending, entry.Status)
	assert.Equal(t, models.TransactionTypeWithdrawal, entry.Type)

	rejected, err := f.svc.Withdrawals.Reject(f.ctx, req.ID, f.admin.ID, "address mismatch")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusRejected, rejected.Status)
	require.NotNil(t, rejected.ProcessedBy)
	assert.Equal(t, f.admin.ID, *rejected.ProcessedBy)

	w = f.wallet(u.ID)
	assertDecimal(t, "535", w.Balance)
	assertDecimal(t, "0", w.PendingWithdrawals)
	entry = f.mustTx(req.TransactionReference)
	assert.Equal(t, models.TransactionStatusFailed, entry.Status)
	assert.Equal(t, "address mismatch", entry.FailureReason)
}

func TestWithdrawalApproveThenComplete(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "300")

	req, err := f.svc.Withdrawals.Create(f.ctx, u.ID, dec("120"), testPayout)
	require.NoError(t, err)

	_, err = f.svc.Withdrawals.Approve(f.ctx, req.ID, f.admin.ID, "ok")
	require.NoError(t, err)
	// Approval moves no money.
	w := f.wallet(u.ID)
	assertDecimal(t, "180", w.Balance)
	assertDecimal(t, "120", w.PendingWithdrawals)
	assert.Equal(t, models.TransactionStatusPending, f.mustTx(req.TransactionReference).Status)

	done, err := f.svc.Withdrawals.Complete(f.ctx, req.ID, f.admin.ID, "sent")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusCompleted, done.Status)

	w = f.wallet(u.ID)
	assertDecimal(t, "180", w.Balance)
	assertDecimal(t, "0", w.PendingWithdrawals)
	assertDecimal(t, "120", w.TotalWithdrawn)
	entry := f.mustTx(req.TransactionReference)
	assert.Equal(t, models.TransactionStatusCompleted, entry.Status)
	assert.NotNil(t, entry.CompletedAt)
}

func TestWithdrawalStateMachineGuards(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "1000")

	newReq := func() *models.WithdrawalRequest {
		req, err := f.svc.Withdrawals.Create(f.ctx, u.ID, dec("10"), testPayout)
		require.NoError(t, err)
		return req
	}

	t.Run("complete from pending", func(t *testing.T) {
		req := newReq()
		_, err := f.svc.Withdrawals.Complete(f.ctx, req.ID, f.admin.ID, "")
		assert.ErrorIs(t, err, ErrNotApproved)
	})

	t.Run("approve twice", func(t *testing.T) {
		req := newReq()
		_, err := f.svc.Withdrawals.Approve(f.ctx, req.ID, f.admin.ID, "")
		require.NoError(t, err)
		_, err = f.svc.Withdrawals.Approve(f.ctx, req.ID, f.admin.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("reject after approve", func(t *testing.T) {
		req := newReq()
		_, err := f.svc.Withdrawals.Approve(f.ctx, req.ID, f.admin.ID, "")
		require.NoError(t, err)
		_, err = f.svc.Withdrawals.Reject(f.ctx, req.ID, f.admin.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		rejected := newReq()
		_, err := f.svc.Withdrawals.Reject(f.ctx, rejected.ID, f.admin.ID, "")
		require.NoError(t, err)

		completed := newReq()
		_, err = f.svc.Withdrawals.Approve(f.ctx, completed.ID, f.admin.ID, "")
		require.NoError(t, err)
		_, err = f.svc.Withdrawals.Complete(f.ctx, completed.ID, f.admin.ID, "")
		require.NoError(t, err)

		for _, id := range []uint{rejected.ID, completed.ID} {
			for _, status := range []models.WithdrawalStatus{
				models.WithdrawalStatusApproved, models.WithdrawalStatusRejected, models.WithdrawalStatusCompleted,
			} {
				_, err := f.svc.Withdrawals.Process(f.ctx, id, f.admin.ID, status, "")
				assert.ErrorIs(t, err, ErrAlreadyProcessed, "request %d to %s", id, status)
			}
		}
	})

	t.Run("unknown target status", func(t *testing.T) {
		req := newReq()
		_, err := f.svc.Withdrawals.Process(f.ctx, req.ID, f.admin.ID, models.WithdrawalStatusPending, "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := f.svc.Withdrawals.Approve(f.ctx, 9999, f.admin.ID, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWithdrawalCreateValidation(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "50")

	_, err := f.svc.Withdrawals.Create(f.ctx, u.ID, dec("0"), testPayout)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.Withdrawals.Create(f.ctx, u.ID, dec("10"), nil)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = f.svc.Withdrawals.Create(f.ctx, u.ID, dec("50.01"), testPayout)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	reqs, err := f.svc.Withdrawals.ListForUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, reqs)
	w := f.wallet(u.ID)
	assertDecimal(t, "50", w.Balance)
	assertDecimal(t, "0", w.PendingWithdrawals)
}

func TestDecisionsWriteAuditLogInSameTransaction(t *testing.T) {
	f := newFixture(t)
	u := f.user("user@example.com")
	f.fund(u.ID, "300")

	req, err := f.svc.Withdrawals.Create(f.ctx, u.ID, dec("100"), testPayout)
	require.NoError(t, err)
	_, err = f.svc.Withdrawals.Reject(f.ctx, req.ID, f.admin.ID, "address mismatch")
	require.NoError(t, err)

	logs, err := f.repo.ListAdminLogs(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "process_withdrawal", logs[0].Action)
	assert.Equal(t, "rejected", logs[0].Details["status"])
	assert.Equal(t, "100", logs[0].Details["amount"])
	require.NotNil(t, logs[0].ResourceID)
	assert.Equal(t, req.ID, *logs[0].ResourceID)
	assert.Equal(t, "process_deposit", logs[1].Action)
	assert.Equal(t, "approved", logs[1].Details["status"])

	// A refused decision leaves no audit record behind.
	_, err = f.svc.Withdrawals.Complete(f.ctx, req.ID, f.admin.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	logs, err = f.repo.ListAdminLogs(f.ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
