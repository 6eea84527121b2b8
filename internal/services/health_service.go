package services

import (
	"context"
	"strings"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HealthPolicyInput 健康险投保请求
type HealthPolicyInput struct {
	models.BookingContact
	HealthInsuranceID uint            `json:"health_insurance_id" binding:"required"`
	StartDate         string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	NationalID        string          `json:"national_id" binding:"max=30"`
	BirthDate         string          `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Premium           decimal.Decimal `json:"premium" binding:"gte=0"`
}

// HealthService 健康险产品与保单
type HealthService struct {
	Plans    *ResourceService[models.HealthInsurance, *models.HealthInsurance]
	Policies *BookingService[models.HealthPolicy, *models.HealthPolicy]
}

func NewHealthService(db *gorm.DB, ledger *LedgerService) *HealthService {
	return &HealthService{
		Plans: NewResourceService[models.HealthInsurance](db, "健康险产品", ListQuery{
			SearchColumns: []string{"provider", "plan_name"},
			FilterColumns: []string{"status", "provider"},
		}, ActiveBookings(&models.HealthPolicy{}, "health_insurance_id")),
		Policies: NewBookingService[models.HealthPolicy](db, ledger, "健康险保单", ListQuery{
			SearchColumns: []string{"customer_name", "policy_number", "national_id"},
			FilterColumns: []string{"status", "health_insurance_id", "policy_number"},
			Order:         "start_date DESC, id DESC",
		}, BookingHooks[models.HealthPolicy]{}),
	}
}

// NewPolicyNumber 保单号，如 HP-1A2B3C4D
func NewPolicyNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreatePolicy 保费默认取产品保费，结束日期为开始日期加产品月数
func (s *HealthService) CreatePolicy(ctx context.Context, tenantID uint, in *HealthPolicyInput) (*models.HealthPolicy, error) {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	policy := &models.HealthPolicy{
		HealthInsuranceID: in.HealthInsuranceID,
		PolicyNumber:      NewPolicyNumber("HP"),
		NationalID:        in.NationalID,
		BirthDate:         in.BirthDate,
	}
	policy.ApplyContact(in.BookingContact)

	return s.Policies.Create(ctx, tenantID, policy, func(tx *gorm.DB, p *models.HealthPolicy) error {
		plan, err := getScoped[models.HealthInsurance](tx, tenantID, in.HealthInsuranceID, "健康险产品")
		if err != nil {
			return err
		}
		if plan.Status != "active" {
			return errors.BadRequest("产品 %s 已停售", plan.PlanName)
		}

		premium, err := rateOrDefault(in.Premium, plan.Premium)
		if err != nil {
			return err
		}
		p.StartDate = start
		p.EndDate = addMonths(start, plan.DurationMonths)
		p.TotalAmount = premium.Round(2)
		p.Currency = plan.Currency
		return nil
	})
}

// ExpireDue 将已过结束日期的保单标记为过期，返回处理条数
//
// 生效中的保单保留原账目，未生效的保单账目取消
func (s *HealthService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	var due []models.HealthPolicy
	err := s.Policies.db.WithContext(ctx).
		Where("status IN ? AND end_date < ?", models.ActiveBookingStatuses, now).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		policy := &due[i]
		var txn *models.Transaction
		err := s.Policies.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			txn, err = s.Policies.Transition(tx, policy, models.BookingStatusExpired)
			return err
		})
		if err != nil {
			return expired, err
		}
		s.Policies.ledger.Notify(ctx, LedgerActionUpserted, txn)
		expired++
	}
	return expired, nil
}
