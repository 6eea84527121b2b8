package services

import (
	"context"
	"time"

	"agencydesk/internal/models"

	"gorm.io/gorm"
)

// InsuranceService 一般保险保单
type InsuranceService struct {
	db       *gorm.DB
	Policies *ResourceService[models.Policy, *models.Policy]
}

func NewInsuranceService(db *gorm.DB) *InsuranceService {
	return &InsuranceService{
		db: db,
		Policies: NewResourceService[models.Policy](db, "保单", ListQuery{
			SearchColumns: []string{"policy_number", "customer_name", "insurer"},
			FilterColumns: []string{"status", "policy_type", "insurer"},
			Order:         "end_date ASC, id DESC",
		}),
	}
}

// ExpireDue 将已过结束日期的有效保单标记为过期
func (s *InsuranceService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Policy{}).
		Where("status = ? AND end_date < ?", models.PolicyStatusActive, now).
		Update("status", models.PolicyStatusExpired)
	return result.RowsAffected, result.Error
}

// OfferService 报价单
type OfferService struct {
	Offers *ResourceService[models.Offer, *models.Offer]
}

func NewOfferService(db *gorm.DB) *OfferService {
	return &OfferService{
		Offers: NewResourceService[models.Offer](db, "报价单", ListQuery{
			SearchColumns: []string{"customer_name", "title"},
			FilterColumns: []string{"status", "module"},
		}),
	}
}
