package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 预订状态
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusExpired   = "expired"
)

// ActiveBookingStatuses 占用资源的预订状态
var ActiveBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusActive,
}

// BookingBase 各类预订的公共字段
type BookingBase struct {
	CustomerName  string          `json:"customer_name" gorm:"size:100;not null"`
	CustomerPhone string          `json:"customer_phone" gorm:"size:30"`
	CustomerEmail string          `json:"customer_email" gorm:"size:100"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Currency      string          `json:"currency" gorm:"size:3;not null"`
	Status        string          `json:"status" gorm:"size:20;not null;index"`
	Notes         string          `json:"notes" gorm:"size:500"`
}

func (b *BookingBase) GetStatus() string       { return b.Status }
func (b *BookingBase) SetStatus(status string) { b.Status = status }
func (b *BookingBase) Customer() string        { return b.CustomerName }

// Amount 预订总额及币种
func (b *BookingBase) Amount() (decimal.Decimal, string) {
	return b.TotalAmount, b.Currency
}

// LedgerAmount 记账金额及币种，默认为预订总额
func (b *BookingBase) LedgerAmount() (decimal.Decimal, string) {
	return b.TotalAmount, b.Currency
}

// ApplyContact 覆盖客户联系信息与备注
func (b *BookingBase) ApplyContact(c BookingContact) {
	b.CustomerName = c.CustomerName
	b.CustomerPhone = c.CustomerPhone
	b.CustomerEmail = c.CustomerEmail
	b.Notes = c.Notes
}

// BookingContact 预订的客户信息，创建和修改预订时提交
type BookingContact struct {
	CustomerName  string `json:"customer_name" binding:"required,max=100"`
	CustomerPhone string `json:"customer_phone" binding:"max=30"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
	Notes         string `json:"notes" binding:"max=500"`
}

// DateRange 起止日期
type DateRange struct {
	StartDate time.Time `json:"start_date" gorm:"not null;index"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
}

// DetailLine 凭证明细
type DetailLine struct {
	Label string
	Value string
}

func dateLabel(t time.Time) string {
	return t.Format("2006-01-02")
}
