package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CollectionStatusPending   = "pending"
	CollectionStatusCollected = "collected"
	CollectionStatusOverdue   = "overdue"
)

// Collection 应收款
type Collection struct {
	TenantModel
	CustomerName string          `json:"customer_name" gorm:"size:100;not null" binding:"required"`
	Description  string          `json:"description" gorm:"size:255"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency     string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	DueDate      time.Time       `json:"due_date" gorm:"not null;index" binding:"required"`
	Method       string          `json:"method" gorm:"size:20" binding:"omitempty,oneof=cash card transfer"`
	CollectedAt  *time.Time      `json:"collected_at"`
	Status       string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=pending collected overdue"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CollectionStatusPending
	}
	return nil
}

func (c *Collection) LedgerKind() string     { return "collection" }
func (c *Collection) LedgerCategory() string { return ModuleFinance }
