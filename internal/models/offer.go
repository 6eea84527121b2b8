package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Offer 报价单
type Offer struct {
	TenantModel
	CustomerName  string          `json:"customer_name" gorm:"size:100;not null" binding:"required"`
	CustomerEmail string          `json:"customer_email" gorm:"size:100" binding:"omitempty,email"`
	Module        string          `json:"module" gorm:"size:30;index" binding:"omitempty,oneof=vehicles hotels tours transfers flights yachts cruises health property insurance"`
	Title         string          `json:"title" gorm:"size:150;not null" binding:"required"`
	Items         datatypes.JSON  `json:"items" gorm:"type:json"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null" binding:"gte=0"`
	Currency      string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	ValidUntil    *time.Time      `json:"valid_until"`
	Status        string          `json:"status" gorm:"size:20;not null;index" binding:"omitempty,oneof=draft sent accepted rejected"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.Status == "" {
		o.Status = "draft"
	}
	return nil
}
