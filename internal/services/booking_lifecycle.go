package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/voucher"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking 可记账、可出凭证的预订
type Booking interface {
	models.TenantOwned
	GetStatus() string
	SetStatus(status string)
	Customer() string
	ApplyContact(contact models.BookingContact)
	Amount() (decimal.Decimal, string)
	LedgerKind() string
	LedgerCategory() string
	LedgerAmount() (decimal.Decimal, string)
	VoucherDetails() []models.DetailLine
}

// allowedTransitions 预订状态流转
var allowedTransitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusActive, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusActive, models.BookingStatusCompleted, models.BookingStatusCancelled},
	models.BookingStatusActive:    {models.BookingStatusCompleted, models.BookingStatusCancelled},
}

// CanTransition 是否允许从 from 变更为 to
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus 终态不再变更
func IsTerminalStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return !ok
}

// BookingHooks 各模块的资源联动，均在预订所在事务内执行
type BookingHooks[T any] struct {
	// 状态变更前调用，可修改资源状态
	OnStatusChange func(tx *gorm.DB, booking *T, from, to string) error
	// 删除前调用
	OnDelete func(tx *gorm.DB, booking *T) error
}

// BookingService 预订通用生命周期：创建、状态流转、删除，并维护对应账目
type BookingService[T any, PT interface {
	*T
	Booking
}] struct {
	db     *gorm.DB
	ledger *LedgerService
	name   string
	query  ListQuery
	hooks  BookingHooks[T]
}

// NewBookingService 创建预订服务
func NewBookingService[T any, PT interface {
	*T
	Booking
}](db *gorm.DB, ledger *LedgerService, name string, query ListQuery, hooks BookingHooks[T]) *BookingService[T, PT] {
	return &BookingService[T, PT]{
		db:     db,
		ledger: ledger,
		name:   name,
		query:  query,
		hooks:  hooks,
	}
}

// Name 预订名称
func (s *BookingService[T, PT]) Name() string {
	return s.name
}

// Query 列表白名单
func (s *BookingService[T, PT]) Query() ListQuery {
	return s.query
}

// List 分页列表
func (s *BookingService[T, PT]) List(tenantID uint, params *pagination.ListParams) ([]T, int64, error) {
	return listScoped[T](s.db, tenantID, s.query, params)
}

// Get 获取预订
func (s *BookingService[T, PT]) Get(tenantID, id uint) (*T, error) {
	return getScoped[T](s.db, tenantID, id, s.name)
}

func (s *BookingService[T, PT]) ledgerEntry(booking PT) LedgerEntry {
	amount, currency := booking.LedgerAmount()
	return LedgerEntry{
		TenantID:    booking.GetTenantID(),
		Type:        models.TransactionTypeIncome,
		Category:    booking.LedgerCategory(),
		Reference:   LedgerReference(booking.LedgerKind(), booking.GetID()),
		Amount:      amount,
		Currency:    currency,
		Status:      LedgerStatusFor(booking.GetStatus()),
		Description: fmt.Sprintf("%s - %s", s.name, booking.Customer()),
		Date:        time.Now(),
	}
}

// Create 在一个事务内执行 prepare（校验资源、计算金额、联动资源状态）、保存预订并写入账目
func (s *BookingService[T, PT]) Create(ctx context.Context, tenantID uint, booking PT, prepare func(tx *gorm.DB, booking PT) error) (PT, error) {
	booking.SetID(0)
	booking.SetTenantID(tenantID)

	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prepare != nil {
			if err := prepare(tx, booking); err != nil {
				return err
			}
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		var err error
		txn, err = s.ledger.Upsert(tx, s.ledgerEntry(booking))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Notify(ctx, LedgerActionUpserted, txn)
	return booking, nil
}

// UpdateContact 修改客户信息与备注，账目描述随之更新
func (s *BookingService[T, PT]) UpdateContact(ctx context.Context, tenantID, id uint, contact models.BookingContact) (PT, error) {
	var booking PT
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := getScoped[T](tx, tenantID, id, s.name)
		if err != nil {
			return err
		}
		booking = PT(found)
		booking.ApplyContact(contact)
		err = tx.Model(booking).
			Select("customer_name", "customer_phone", "customer_email", "notes").
			Updates(booking).Error
		if err != nil {
			return err
		}
		txn, err = s.ledger.Upsert(tx, s.ledgerEntry(booking))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Notify(ctx, LedgerActionUpserted, txn)
	return booking, nil
}

// UpdateStatus 变更预订状态并同步账目状态
func (s *BookingService[T, PT]) UpdateStatus(ctx context.Context, tenantID, id uint, status string) (PT, error) {
	var booking PT
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := getScoped[T](tx, tenantID, id, s.name)
		if err != nil {
			return err
		}
		booking = PT(found)
		return s.transition(tx, booking, status, &txn)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Notify(ctx, LedgerActionUpserted, txn)
	return booking, nil
}

// Transition 在调用方事务内变更状态，供定时任务等批量场景使用
func (s *BookingService[T, PT]) Transition(tx *gorm.DB, booking PT, status string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.transition(tx, booking, status, &txn)
	return txn, err
}

func (s *BookingService[T, PT]) transition(tx *gorm.DB, booking PT, status string, txn **models.Transaction) error {
	from := booking.GetStatus()
	if IsTerminalStatus(from) {
		return errors.BadRequest("%s已%s，不能再变更状态", s.name, statusLabel(from))
	}
	// expired 只由定时任务设置
	if status != models.BookingStatusExpired && !CanTransition(from, status) {
		return errors.BadRequest("不允许从 %s 变更为 %s", from, status)
	}

	if s.hooks.OnStatusChange != nil {
		if err := s.hooks.OnStatusChange(tx, (*T)(booking), from, status); err != nil {
			return err
		}
	}

	booking.SetStatus(status)
	if err := tx.Model(booking).Update("status", status).Error; err != nil {
		return err
	}
	// 已生效的保单期满，保费照常入账
	if status == models.BookingStatusExpired && from == models.BookingStatusActive {
		return nil
	}

	var err error
	*txn, err = s.ledger.Upsert(tx, s.ledgerEntry(booking))
	return err
}

// Delete 删除预订及其账目
func (s *BookingService[T, PT]) Delete(ctx context.Context, tenantID, id uint) error {
	var deleted *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := getScoped[T](tx, tenantID, id, s.name)
		if err != nil {
			return err
		}
		booking := PT(found)

		if s.hooks.OnDelete != nil {
			if err := s.hooks.OnDelete(tx, found); err != nil {
				return err
			}
		}

		deleted, err = s.ledger.DeleteByReference(tx, tenantID, booking.LedgerCategory(), LedgerReference(booking.LedgerKind(), booking.GetID()))
		if err != nil {
			return err
		}
		return tx.Delete(booking).Error
	})
	if err != nil {
		return err
	}

	s.ledger.Notify(ctx, LedgerActionDeleted, deleted)
	return nil
}

// Voucher 生成预订凭证
func (s *BookingService[T, PT]) Voucher(tenantID, id uint) (*voucher.Voucher, error) {
	found, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	booking := PT(found)

	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}

	details := booking.VoucherDetails()
	lines := make([]voucher.Line, 0, len(details))
	for _, d := range details {
		lines = append(lines, voucher.Line{Label: d.Label, Value: d.Value})
	}
	total, currency := booking.Amount()

	return &voucher.Voucher{
		Agency:    tenant.Name,
		Title:     voucherTitle(booking.LedgerKind()),
		Reference: LedgerReference(booking.LedgerKind(), booking.GetID()),
		Customer:  booking.Customer(),
		Status:    booking.GetStatus(),
		IssuedAt:  time.Now(),
		Lines:     lines,
		Total:     total.StringFixed(2),
		Currency:  currency,
	}, nil
}

// voucherTitle vehicle_rental -> Vehicle rental voucher
func voucherTitle(kind string) string {
	title := strings.ReplaceAll(kind, "_", " ")
	if title == "" {
		return "Voucher"
	}
	return strings.ToUpper(title[:1]) + title[1:] + " voucher"
}

func statusLabel(status string) string {
	switch status {
	case models.BookingStatusCompleted:
		return "完成"
	case models.BookingStatusCancelled:
		return "取消"
	case models.BookingStatusExpired:
		return "过期"
	default:
		return status
	}
}
