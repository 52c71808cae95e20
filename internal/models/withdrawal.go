package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

// IsTerminal reports whether no further transition is allowed.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusCompleted
}

// WithdrawalRequest moves pending -> approved -> completed, or pending -> rejected.
type WithdrawalRequest struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	UserID               uint             `gorm:"not null;index" json:"user_id"`
	Amount               decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"amount"`
	PaymentMethod        string           `gorm:"size:50;not null" json:"payment_method"`
	PaymentDetails       JSONB            `gorm:"type:jsonb" json:"payment_details"`
	Status               WithdrawalStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	TransactionReference string           `gorm:"size:64;not null;index" json:"transaction_reference"`
	RequestedAt          time.Time        `gorm:"not null" json:"requested_at"`
	ProcessedAt          *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy          *uint            `json:"processed_by,omitempty"`
	AdminNotes           string           `gorm:"type:text" json:"admin_notes,omitempty"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
