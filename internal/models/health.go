package models

import (
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HealthInsurance 健康险产品
type HealthInsurance struct {
	TenantModel
	Provider       string          `json:"provider" gorm:"size:100;not null" binding:"required"`
	PlanName       string          `json:"plan_name" gorm:"size:100;not null;index" binding:"required"`
	Coverage       string          `json:"coverage" gorm:"type:text"`
	CoverageLimit  decimal.Decimal `json:"coverage_limit" gorm:"type:numeric(14,2)"`
	Premium        decimal.Decimal `json:"premium" gorm:"type:numeric(12,2);not null" binding:"gt=0"`
	Currency       string          `json:"currency" gorm:"size:3;not null" binding:"required,currency"`
	DurationMonths int             `json:"duration_months" gorm:"not null" binding:"gte=1,lte=60"`
	Status         string          `json:"status" gorm:"size:20;not null" binding:"omitempty,oneof=active inactive"`
}

func (h *HealthInsurance) BeforeCreate(tx *gorm.DB) error {
	if h.Status == "" {
		h.Status = "active"
	}
	return nil
}

// HealthPolicy 健康险保单
type HealthPolicy struct {
	TenantModel
	BookingBase
	DateRange
	HealthInsuranceID uint   `json:"health_insurance_id" gorm:"not null;index"`
	PolicyNumber      string `json:"policy_number" gorm:"size:30;not null;index"`
	NationalID        string `json:"national_id" gorm:"size:30"`
	BirthDate         string `json:"birth_date" gorm:"size:10"`
}

func (p *HealthPolicy) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = BookingStatusActive
	}
	return nil
}

func (p *HealthPolicy) LedgerKind() string     { return "health_policy" }
func (p *HealthPolicy) LedgerCategory() string { return ModuleHealth }

func (p *HealthPolicy) VoucherDetails() []DetailLine {
	return []DetailLine{
		{Label: "Policy number", Value: p.PolicyNumber},
		{Label: "Plan ID", Value: strconv.FormatUint(uint64(p.HealthInsuranceID), 10)},
		{Label: "Valid from", Value: dateLabel(p.StartDate)},
		{Label: "Valid until", Value: dateLabel(p.EndDate)},
	}
}
