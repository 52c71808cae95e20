package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral links a referee to the user whose code they applied. One per referee.
type Referral struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReferrerID uint      `gorm:"not null;index" json:"referrer_id"`
	RefereeID  uint      `gorm:"uniqueIndex;not null" json:"referee_id"`
	Code       string    `gorm:"size:20;not null" json:"code"`
	ReferredAt time.Time `gorm:"autoCreateTime" json:"referred_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "pending"
	CommissionStatusPaid    CommissionStatus = "paid"
)

// Commission is the one-time reward for a referee's first investment.
type Commission struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	ReferrerID       uint             `gorm:"not null;index" json:"referrer_id"`
	RefereeID        uint             `gorm:"uniqueIndex;not null" json:"referee_id"`
	InvestmentID     uint             `gorm:"uniqueIndex;not null" json:"investment_id"`
	InvestmentAmount decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"investment_amount"`
	Rate             decimal.Decimal  `gorm:"type:decimal(10,4);not null" json:"rate"`
	Amount           decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"amount"`
	Status           CommissionStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
}

func (Commission) TableName() string {
	return "commissions"
}

// ReferralStats holds aggregated referral figures for a referrer.
type ReferralStats struct {
	UserID                uint            `json:"user_id"`
	ReferralCode          string          `json:"referral_code"`
	TotalReferrals        int64           `json:"total_referrals"`
	TotalCommissions      int64           `json:"total_commissions"`
	TotalCommissionEarned decimal.Decimal `json:"total_commission_earned"`
	TotalCommissionPaid   decimal.Decimal `json:"total_commission_paid"`
}
