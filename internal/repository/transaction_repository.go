package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"yield-ledger/internal/models"
)

// InsertTransaction appends a journal entry. It returns false without error
// when an entry with the same reference already exists.
func (r *Repository) InsertTransaction(ctx context.Context, tx *models.Transaction) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "reference"}}, DoNothing: true}).
		Create(tx)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// GetTransactionByReference returns the entry with the given reference or ErrNotFound.
func (r *Repository) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&tx).Error; err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

// GetTransactionByID returns the entry with the given id or ErrNotFound.
func (r *Repository) GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

// TransitionTransaction moves a pending entry to a terminal status. It returns
// false when the entry is no longer pending.
func (r *Repository) TransitionTransaction(
	ctx context.Context,
	id uint,
	status models.TransactionStatus,
	failureReason string,
	at time.Time,
) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if status == models.TransactionStatusCompleted {
		updates["completed_at"] = at
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}

	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// TransactionFilter narrows a journal listing. Zero values mean "any".
type TransactionFilter struct {
	UserID uint
	Type   models.TransactionType
	Status models.TransactionStatus
	Limit  int
	Offset int
}

// ListTransactions returns journal entries newest first.
func (r *Repository) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var txs []models.Transaction
	if err := query.Order("created_at DESC").Order("id DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// SumTransactions adds up amounts of the matching entries. A zero userID sums
// across all users.
func (r *Repository) SumTransactions(
	ctx context.Context,
	userID uint,
	txType models.TransactionType,
	status models.TransactionStatus,
) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	total, err := sumAmounts(query)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// SumTransactionsByReferencePrefix adds up completed entries whose reference
// starts with prefix.
func (r *Repository) SumTransactionsByReferencePrefix(ctx context.Context, prefix string) (decimal.Decimal, error) {
	total, err := sumAmounts(r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("reference LIKE ? AND status = ?", prefix+"%", models.TransactionStatusCompleted))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// CountTransactions counts entries of a type and status across all users.
func (r *Repository) CountTransactions(ctx context.Context, txType models.TransactionType, status models.TransactionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
