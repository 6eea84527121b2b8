package models

import (
	"strings"

	"gorm.io/gorm"
)

// Tenant 租户（旅行社账户）
type Tenant struct {
	BaseModel
	Name         string `json:"name" gorm:"not null;size:100"`
	Code         string `json:"code" gorm:"unique;not null;size:50;index"`
	BaseCurrency string `json:"base_currency" gorm:"size:3;not null"`
	Phone        string `json:"phone" gorm:"size:30"`
	Email        string `json:"email" gorm:"size:100"`
	Address      string `json:"address" gorm:"size:255"`
	Status       string `json:"status" gorm:"size:20;not null"`
}

func (t *Tenant) TableName() string {
	return "tenants"
}

const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TenantStatusActive
	}
	t.BaseCurrency = strings.ToUpper(t.BaseCurrency)
	return nil
}
