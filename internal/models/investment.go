package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusSold      InvestmentStatus = "sold"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// AdminAdjustment records the percentage an admin asked for. The amount it
// resolves to lives in ManualAdjustment, which is what accrual applies.
type AdminAdjustment struct {
	Enabled    bool            `gorm:"column:admin_adjustment_enabled;default:false" json:"enabled"`
	Percentage decimal.Decimal `gorm:"column:admin_adjustment_percentage;type:decimal(10,4);default:0" json:"percentage"`
}

// ManualAdjustment is a signed flat amount added to the time-based earnings.
type ManualAdjustment struct {
	Amount   decimal.Decimal `gorm:"column:manual_adjustment_amount;type:decimal(20,8);default:0" json:"amount"`
	Reason   string          `gorm:"column:manual_adjustment_reason;type:text" json:"reason"`
	IsActive bool            `gorm:"column:manual_adjustment_active;default:false" json:"is_active"`
}

// Investment is one subscription commitment. Amount is the principal and is
// never updated after creation; CurrentValue is always Amount + TotalEarnings.
type Investment struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"not null;index" json:"user_id"`
	CryptoID              uint             `gorm:"not null;index" json:"crypto_id"`
	InvestmentPlanID      uint             `gorm:"not null;index" json:"investment_plan_id"`
	Amount                decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"amount"`
	DailyReturnPercentage decimal.Decimal  `gorm:"type:decimal(10,4);not null" json:"daily_return_percentage"`
	Duration              int              `gorm:"not null" json:"duration"`
	StartDate             time.Time        `gorm:"not null" json:"start_date"`
	EndDate               time.Time        `gorm:"not null;index" json:"end_date"`
	Status                InvestmentStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	CurrentValue          decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0" json:"current_value"`
	ProfitLoss            decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0" json:"profit_loss"`
	ProfitLossPercentage  decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0" json:"profit_loss_percentage"`
	TotalEarnings         decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0" json:"total_earnings"`
	MaturityProcessed     bool             `gorm:"not null;default:false;index" json:"maturity_processed"`
	MaturedAt             *time.Time       `json:"matured_at,omitempty"`
	SoldAt                *time.Time       `json:"sold_at,omitempty"`
	AdminAdjustment       AdminAdjustment  `gorm:"embedded" json:"admin_adjustment"`
	ManualAdjustment      ManualAdjustment `gorm:"embedded" json:"manual_adjustment"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

// Portfolio summarises a user's investments after accrual has been applied.
type Portfolio struct {
	TotalInvested        decimal.Decimal          `json:"total_invested"`
	CurrentValue         decimal.Decimal          `json:"current_value"`
	TotalProfitLoss      decimal.Decimal          `json:"total_profit_loss"`
	ProfitLossPercentage decimal.Decimal          `json:"profit_loss_percentage"`
	Counts               map[InvestmentStatus]int `json:"counts"`
	Investments          []Investment             `json:"investments"`
}
