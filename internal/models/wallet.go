package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the custodial balance of one user. Balance never goes negative;
// PendingWithdrawals is the sum of the user's outstanding withdrawal holds.
type Wallet struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	UserID             uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance            decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	PendingWithdrawals decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"pending_withdrawals"`
	TotalDeposited     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_deposited"`
	TotalWithdrawn     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_withdrawn"`
	Version            int64           `gorm:"not null;default:1" json:"-"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletSnapshot is the read model served by GET /wallet. The withdrawal and
// deposit totals are derived from the journal, not from the stored counters.
type WalletSnapshot struct {
	UserID             uint            `json:"user_id"`
	Balance            decimal.Decimal `json:"balance"`
	PendingWithdrawals decimal.Decimal `json:"pending_withdrawals"`
	TotalDeposited     decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn     decimal.Decimal `json:"total_withdrawn"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
