package services

import (
	"context"
	"fmt"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"

	"gorm.io/gorm"
)

// CollectInput 收款请求
type CollectInput struct {
	Method string `json:"method" binding:"required,oneof=cash card transfer"`
}

// CollectionService 应收款。收款后写入已完成的收入账目
type CollectionService struct {
	db          *gorm.DB
	ledger      *LedgerService
	Collections *ResourceService[models.Collection, *models.Collection]
}

func NewCollectionService(db *gorm.DB, ledger *LedgerService) *CollectionService {
	return &CollectionService{
		db:     db,
		ledger: ledger,
		Collections: NewResourceService[models.Collection](db, "应收款", ListQuery{
			SearchColumns: []string{"customer_name", "description"},
			FilterColumns: []string{"status", "currency", "method"},
			Order:         "due_date ASC, id ASC",
		}),
	}
}

func (s *CollectionService) List(tenantID uint, params *pagination.ListParams) ([]models.Collection, int64, error) {
	return s.Collections.List(tenantID, params)
}

func (s *CollectionService) Get(tenantID, id uint) (*models.Collection, error) {
	return s.Collections.Get(tenantID, id)
}

func (s *CollectionService) Create(tenantID uint, c *models.Collection) error {
	c.CollectedAt = nil
	c.Status = models.CollectionStatusPending
	return s.Collections.Create(tenantID, c)
}

// Update 已收款的记录不能修改
func (s *CollectionService) Update(tenantID, id uint, input *models.Collection) (*models.Collection, error) {
	existing, err := s.Collections.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.CollectionStatusCollected {
		return nil, errors.BadRequest("应收款已收款，不能修改")
	}
	input.Status = ""
	input.CollectedAt = nil
	return s.Collections.Update(tenantID, id, input)
}

// Delete 删除应收款及其账目
func (s *CollectionService) Delete(ctx context.Context, tenantID, id uint) error {
	var deleted *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collection, err := getScoped[models.Collection](tx, tenantID, id, "应收款")
		if err != nil {
			return err
		}
		deleted, err = s.ledger.DeleteByReference(tx, tenantID, collection.LedgerCategory(), LedgerReference(collection.LedgerKind(), collection.ID))
		if err != nil {
			return err
		}
		return tx.Delete(collection).Error
	})
	if err != nil {
		return err
	}
	s.ledger.Notify(ctx, LedgerActionDeleted, deleted)
	return nil
}

// MarkCollected 标记收款并写入已完成的收入账目
func (s *CollectionService) MarkCollected(ctx context.Context, tenantID, id uint, method string) (*models.Collection, error) {
	var collection *models.Collection
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		collection, err = getScoped[models.Collection](tx, tenantID, id, "应收款")
		if err != nil {
			return err
		}
		if collection.Status == models.CollectionStatusCollected {
			return errors.BadRequest("应收款已收款")
		}

		now := time.Now()
		collection.Status = models.CollectionStatusCollected
		collection.Method = method
		collection.CollectedAt = &now
		err = tx.Model(collection).
			Select("status", "method", "collected_at").
			Updates(collection).Error
		if err != nil {
			return err
		}

		txn, err = s.ledger.Upsert(tx, LedgerEntry{
			TenantID:    tenantID,
			Type:        models.TransactionTypeIncome,
			Category:    collection.LedgerCategory(),
			Reference:   LedgerReference(collection.LedgerKind(), collection.ID),
			Amount:      collection.Amount,
			Currency:    collection.Currency,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("收款 - %s", collection.CustomerName),
			Date:        now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Notify(ctx, LedgerActionUpserted, txn)
	return collection, nil
}

// MarkOverdue 将到期未收的应收款标记为逾期，返回更新条数
func (s *CollectionService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Collection{}).
		Where("status = ? AND due_date < ?", models.CollectionStatusPending, now).
		Update("status", models.CollectionStatusOverdue)
	return result.RowsAffected, result.Error
}
