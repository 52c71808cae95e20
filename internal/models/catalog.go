package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentPlan is a fixed-term yield product. MaxAmount of zero means no
// upper bound.
type InvestmentPlan struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	Name                  string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	MinAmount             decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"min_amount"`
	MaxAmount             decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"max_amount"`
	DailyReturnPercentage decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"daily_return_percentage"`
	Duration              int             `gorm:"not null" json:"duration"`
	IsActive              bool            `gorm:"default:true" json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (InvestmentPlan) TableName() string {
	return "investment_plans"
}

// Crypto is a listed asset users can subscribe against.
type Crypto struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"uniqueIndex;size:20;not null" json:"symbol"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Crypto) TableName() string {
	return "cryptos"
}
