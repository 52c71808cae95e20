package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeInvestment TransactionType = "investment"
	TransactionTypeProfit     TransactionType = "profit"
	TransactionTypeLoss       TransactionType = "loss"
	TransactionTypeReferral   TransactionType = "referral"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether the status may no longer change.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction is one journal entry. Reference is the idempotency token of the
// logical event it records.
type Transaction struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"not null;index" json:"user_id"`
	Type          TransactionType   `gorm:"size:20;not null;index" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:decimal(20,8);not null" json:"amount"`
	Status        TransactionStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Description   string            `gorm:"type:text" json:"description"`
	Reference     string            `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	PaymentMethod string            `gorm:"size:50" json:"payment_method,omitempty"`
	FailureReason string            `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
