package models

import (
	"time"
)

// User is owned by the external auth service; the ledger only reads it and
// fills in the referral code.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string    `gorm:"size:100" json:"username"`
	ReferralCode *string   `gorm:"uniqueIndex;size:20" json:"referral_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// UserProfile is the account view served to the user.
type UserProfile struct {
	User            User           `json:"user"`
	Wallet          WalletSnapshot `json:"wallet"`
	InvestmentCount int64          `json:"investment_count"`
	Referred        bool           `json:"referred"`
	IsAdmin         bool           `json:"is_admin"`
}
