package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JSONB stores a JSON object in a jsonb (Postgres) or text (SQLite) column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source %T", value)
	}
	return json.Unmarshal(raw, j)
}

// AdminUser grants a user access to the admin routes.
type AdminUser struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Role        string    `gorm:"size:20;not null" json:"role"` // SUPER_ADMIN, OPERATOR, ANALYST
	Permissions JSONB     `gorm:"type:jsonb" json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminID      uint      `gorm:"not null;index" json:"admin_id"`
	Action       string    `gorm:"size:100;not null" json:"action"`
	ResourceType string    `gorm:"size:50" json:"resource_type"`
	ResourceID   *uint     `json:"resource_id"`
	Details      JSONB     `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

// PlatformStats is the admin aggregate over the journal.
type PlatformStats struct {
	TotalUsers          int64           `json:"total_users"`
	ActiveInvestments   int64           `json:"active_investments"`
	PendingWithdrawals  int64           `json:"pending_withdrawals"`
	PendingDeposits     int64           `json:"pending_deposits"`
	TotalDeposited      decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn      decimal.Decimal `json:"total_withdrawn"`
	TotalInvested       decimal.Decimal `json:"total_invested"`
	TotalMaturityPayout decimal.Decimal `json:"total_maturity_payout"`
}
