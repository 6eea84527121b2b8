package models

import (
	"time"
)

// BaseModel 基础模型
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantModel 租户隔离的基础模型
type TenantModel struct {
	BaseModel
	TenantID uint `json:"tenant_id" gorm:"not null;index"`
}

// TenantOwned 按租户隔离的记录
type TenantOwned interface {
	GetID() uint
	SetID(id uint)
	GetTenantID() uint
	SetTenantID(tenantID uint)
}

func (m *TenantModel) GetID() uint               { return m.ID }
func (m *TenantModel) SetID(id uint)             { m.ID = id }
func (m *TenantModel) GetTenantID() uint         { return m.TenantID }
func (m *TenantModel) SetTenantID(tenantID uint) { m.TenantID = tenantID }
