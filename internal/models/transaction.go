package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 账目类型与状态
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

// Transaction 账目记录。预订产生的记录以 (tenant_id, category, reference) 唯一
type Transaction struct {
	BaseModel
	TenantID    uint            `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_ledger_reference"`
	Type        string          `json:"type" gorm:"size:10;not null;index" binding:"required,oneof=income expense"`
	Category    string          `json:"category" gorm:"size:30;not null;index;uniqueIndex:idx_ledger_reference" binding:"required"`
	Reference   *string         `json:"reference" gorm:"size:64;uniqueIndex:idx_ledger_reference"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency    string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	Status      string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=pending completed cancelled"`
	Description string          `json:"description" gorm:"size:255"`
	Date        time.Time       `json:"date" gorm:"not null;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) GetID() uint               { return t.ID }
func (t *Transaction) SetID(id uint)             { t.ID = id }
func (t *Transaction) GetTenantID() uint         { return t.TenantID }
func (t *Transaction) SetTenantID(tenantID uint) { t.TenantID = tenantID }

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TransactionStatusPending
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	return nil
}

// ReferenceValue 引用值，手工记录为空
func (t *Transaction) ReferenceValue() string {
	if t.Reference == nil {
		return ""
	}
	return *t.Reference
}
