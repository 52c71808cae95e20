package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
	"yield-ledger/internal/utils"
)

var referencePrefixes = map[models.TransactionType]string{
	models.TransactionTypeDeposit:    "DEP",
	models.TransactionTypeWithdrawal: "WDR",
	models.TransactionTypeInvestment: "INV",
	models.TransactionTypeProfit:     "PRF",
	models.TransactionTypeLoss:       "LOS",
	models.TransactionTypeReferral:   "REF",
}

// Entry describes a journal event to record.
type Entry struct {
	UserID        uint
	Type          models.TransactionType
	Amount        decimal.Decimal
	Status        models.TransactionStatus // pending when empty
	Description   string
	Reference     string // generated when empty
	PaymentMethod string
}

// Journal is the append-mostly transaction log.
type Journal struct {
	repo *repository.Repository
	opts Options
}

// Record appends an entry. When an entry with the same reference already
// exists it is returned with created set to false and nothing is written.
func (j *Journal) Record(ctx context.Context, e Entry) (tx *models.Transaction, created bool, err error) {
	now := j.opts.Now()

	status := e.Status
	if status == "" {
		status = models.TransactionStatusPending
	}
	reference := e.Reference
	if reference == "" {
		prefix, ok := referencePrefixes[e.Type]
		if !ok {
			return nil, false, fmt.Errorf("unknown transaction type %q", e.Type)
		}
		reference = utils.NewReference(prefix, now)
	}

	tx = &models.Transaction{
		UserID:        e.UserID,
		Type:          e.Type,
		Amount:        e.Amount,
		Status:        status,
		Description:   e.Description,
		Reference:     reference,
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     now,
	}
	if status == models.TransactionStatusCompleted {
		tx.CompletedAt = &now
	}

	inserted, err := j.repo.InsertTransaction(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		existing, err := j.repo.GetTransactionByReference(ctx, reference)
		if err != nil {
			return nil, false, err
		}
		zap.L().Info("Journal entry already recorded", zap.String("reference", reference))
		return existing, false, nil
	}
	return tx, true, nil
}

// FindByReference returns the entry or ErrNotFound.
func (j *Journal) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return j.repo.GetTransactionByReference(ctx, reference)
}

// Exists reports whether an entry with the reference was recorded.
func (j *Journal) Exists(ctx context.Context, reference string) (bool, error) {
	_, err := j.repo.GetTransactionByReference(ctx, reference)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Complete marks a pending entry completed. A terminal entry yields ErrAlreadyProcessed.
func (j *Journal) Complete(ctx context.Context, reference string) error {
	return j.transition(ctx, reference, models.TransactionStatusCompleted, "")
}

// Fail marks a pending entry failed with the given reason.
func (j *Journal) Fail(ctx context.Context, reference, reason string) error {
	return j.transition(ctx, reference, models.TransactionStatusFailed, reason)
}

// List returns journal entries matching the filter, newest first.
func (j *Journal) List(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	return j.repo.ListTransactions(ctx, filter)
}

func (j *Journal) transition(ctx context.Context, reference string, status models.TransactionStatus, reason string) error {
	tx, err := j.repo.GetTransactionByReference(ctx, reference)
	if err != nil {
		return err
	}
	ok, err := j.repo.TransitionTransaction(ctx, tx.ID, status, reason, j.opts.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transaction %s: %w", reference, ErrAlreadyProcessed)
	}
	return nil
}
