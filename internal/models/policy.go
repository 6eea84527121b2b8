package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PolicyStatusActive    = "active"
	PolicyStatusExpired   = "expired"
	PolicyStatusCancelled = "cancelled"
)

// Policy 代理的一般保险保单（车险、家财险等）
type Policy struct {
	TenantModel
	PolicyNumber  string          `json:"policy_number" gorm:"size:50;not null;index" binding:"required"`
	PolicyType    string          `json:"policy_type" gorm:"size:30;not null;index" binding:"required"`
	Insurer       string          `json:"insurer" gorm:"size:100;not null" binding:"required"`
	CustomerName  string          `json:"customer_name" gorm:"size:100;not null" binding:"required"`
	CustomerPhone string          `json:"customer_phone" gorm:"size:30"`
	Premium       decimal.Decimal `json:"premium" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Commission    decimal.Decimal `json:"commission" gorm:"type:numeric(12,2);not null" binding:"gte=0"`
	Currency      string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	StartDate     time.Time       `json:"start_date" gorm:"not null" binding:"required"`
	EndDate       time.Time       `json:"end_date" gorm:"not null;index" binding:"required,gtfield=StartDate"`
	Status        string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=active expired cancelled"`
}

func (p *Policy) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PolicyStatusActive
	}
	return nil
}
