package services

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/events"
	"agencydesk/pkg/logger"
	"agencydesk/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 账目事件动作
const (
	LedgerActionUpserted = "upserted"
	LedgerActionDeleted  = "deleted"
)

// LedgerNotifier 账目事件发布
type LedgerNotifier interface {
	PublishLedger(ctx context.Context, event events.LedgerEvent) error
}

// LedgerEntry 待写入的账目
type LedgerEntry struct {
	TenantID    uint
	Type        string
	Category    string
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Status      string
	Description string
	Date        time.Time
}

// TransactionFilter 账目查询条件
type TransactionFilter struct {
	Type     string
	Category string
	Status   string
	Currency string
	Keyword  string
	From     *time.Time
	To       *time.Time
}

// LedgerService 账目服务
type LedgerService struct {
	db       *gorm.DB
	notifier LedgerNotifier
}

// NewLedgerService 创建账目服务，notifier 可为空
func NewLedgerService(db *gorm.DB, notifier LedgerNotifier) *LedgerService {
	return &LedgerService{db: db, notifier: notifier}
}

// LedgerReference 预订在账目中的引用，如 vehicle_rental#12
func LedgerReference(kind string, id uint) string {
	return fmt.Sprintf("%s#%d", kind, id)
}

// LedgerStatusFor 预订状态对应的账目状态
func LedgerStatusFor(bookingStatus string) string {
	switch bookingStatus {
	case models.BookingStatusCompleted:
		return models.TransactionStatusCompleted
	case models.BookingStatusCancelled, models.BookingStatusExpired:
		return models.TransactionStatusCancelled
	default:
		return models.TransactionStatusPending
	}
}

// Upsert 按 (tenant, category, reference) 插入或更新账目，必须在调用方事务内执行
func (s *LedgerService) Upsert(tx *gorm.DB, entry LedgerEntry) (*models.Transaction, error) {
	if entry.Reference == "" {
		return nil, fmt.Errorf("ledger entry without reference")
	}

	var txn models.Transaction
	err := tx.Where("tenant_id = ? AND category = ? AND reference = ?", entry.TenantID, entry.Category, entry.Reference).
		First(&txn).Error
	switch {
	case err == nil:
		txn.Type = entry.Type
		txn.Amount = entry.Amount.Round(2)
		txn.Currency = entry.Currency
		txn.Status = entry.Status
		txn.Description = entry.Description
		if err := tx.Save(&txn).Error; err != nil {
			return nil, fmt.Errorf("update ledger entry %s: %w", entry.Reference, err)
		}
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		reference := entry.Reference
		txn = models.Transaction{
			TenantID:    entry.TenantID,
			Type:        entry.Type,
			Category:    entry.Category,
			Reference:   &reference,
			Amount:      entry.Amount.Round(2),
			Currency:    entry.Currency,
			Status:      entry.Status,
			Description: entry.Description,
			Date:        entry.Date,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return nil, fmt.Errorf("create ledger entry %s: %w", entry.Reference, err)
		}
	default:
		return nil, err
	}
	return &txn, nil
}

// DeleteByReference 删除预订对应的账目，不存在时返回 nil
func (s *LedgerService) DeleteByReference(tx *gorm.DB, tenantID uint, category, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := tx.Where("tenant_id = ? AND category = ? AND reference = ?", tenantID, category, reference).First(&txn).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Delete(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Notify 事务提交后发布账目事件，失败只记录日志
func (s *LedgerService) Notify(ctx context.Context, action string, txn *models.Transaction) {
	if s.notifier == nil || txn == nil {
		return
	}
	event := events.LedgerEvent{
		TenantID:      txn.TenantID,
		TransactionID: txn.ID,
		Action:        action,
		Type:          txn.Type,
		Category:      txn.Category,
		Status:        txn.Status,
		Amount:        txn.Amount.StringFixed(2),
		Currency:      txn.Currency,
		Reference:     txn.ReferenceValue(),
	}
	if err := s.notifier.PublishLedger(ctx, event); err != nil {
		logger.FromContext(ctx).WithField("tenant_id", txn.TenantID).Warnf("发布账目事件失败: %v", err)
	}
}

func (s *LedgerService) applyFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", strings.ToUpper(filter.Currency))
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date < ?", *filter.To)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(reference) LIKE ?)", like, like)
	}
	return query
}

// List 分页查询账目
func (s *LedgerService) List(tenantID uint, filter TransactionFilter, page *pagination.PageParams) ([]models.Transaction, int64, error) {
	query := s.applyFilter(s.db.Model(&models.Transaction{}).Where("tenant_id = ?", tenantID), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	err := query.Order("date DESC, id DESC").
		Offset(page.GetOffset()).
		Limit(page.GetLimit()).
		Find(&rows).Error
	return rows, total, err
}

// Get 获取账目
func (s *LedgerService) Get(tenantID, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&txn).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("账目")
	}
	return &txn, err
}

// isBookingReference 预订生成的引用包含 '#'
func isBookingReference(txn *models.Transaction) bool {
	return strings.Contains(txn.ReferenceValue(), "#")
}

// Create 手工记账（支出、调整等）
func (s *LedgerService) Create(ctx context.Context, tenantID uint, txn *models.Transaction) error {
	txn.ID = 0
	txn.TenantID = tenantID
	txn.Currency = strings.ToUpper(txn.Currency)
	if txn.Reference != nil && *txn.Reference == "" {
		txn.Reference = nil
	}
	if isBookingReference(txn) {
		return errors.BadRequest("引用中不能包含 '#'")
	}

	if err := s.db.Create(txn).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("引用 %s 已存在", txn.ReferenceValue())
		}
		return err
	}
	s.Notify(ctx, LedgerActionUpserted, txn)
	return nil
}

// Update 修改手工账目，预订生成的账目随预订变化
func (s *LedgerService) Update(ctx context.Context, tenantID, id uint, input *models.Transaction) (*models.Transaction, error) {
	txn, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if isBookingReference(txn) {
		return nil, errors.BadRequest("预订生成的账目不能手工修改")
	}
	if input.Reference != nil && strings.Contains(*input.Reference, "#") {
		return nil, errors.BadRequest("引用中不能包含 '#'")
	}

	txn.Type = input.Type
	txn.Category = input.Category
	txn.Amount = input.Amount
	txn.Currency = strings.ToUpper(input.Currency)
	txn.Description = input.Description
	if input.Status != "" {
		txn.Status = input.Status
	}
	if !input.Date.IsZero() {
		txn.Date = input.Date
	}
	if input.Reference != nil && *input.Reference != "" {
		txn.Reference = input.Reference
	}

	if err := s.db.Save(txn).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("引用 %s 已存在", txn.ReferenceValue())
		}
		return nil, err
	}
	s.Notify(ctx, LedgerActionUpserted, txn)
	return txn, nil
}

// Delete 删除手工账目
func (s *LedgerService) Delete(ctx context.Context, tenantID, id uint) error {
	txn, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}
	if isBookingReference(txn) {
		return errors.BadRequest("预订生成的账目请通过删除预订移除")
	}
	if err := s.db.Delete(txn).Error; err != nil {
		return err
	}
	s.Notify(ctx, LedgerActionDeleted, txn)
	return nil
}

// LedgerTotal 按类型/状态/币种汇总
type LedgerTotal struct {
	Type     string          `json:"type"`
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryTotal 按模块汇总
type CategoryTotal struct {
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Currency string          `json:"currency"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// NetTotal 某币种的收支净额，不含已取消
type NetTotal struct {
	Currency string          `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Net      decimal.Decimal `json:"net"`
}

// LedgerSummary 账目汇总
type LedgerSummary struct {
	Totals     []LedgerTotal   `json:"totals"`
	Categories []CategoryTotal `json:"categories"`
	Net        []NetTotal      `json:"net"`
}

// Summary 汇总区间 [from, to) 内的账目
func (s *LedgerService) Summary(tenantID uint, from, to *time.Time) (*LedgerSummary, error) {
	filter := TransactionFilter{From: from, To: to}
	summary := &LedgerSummary{}

	err := s.applyFilter(s.db.Model(&models.Transaction{}).Where("tenant_id = ?", tenantID), filter).
		Select("type, status, currency, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type, status, currency").
		Order("type, status, currency").
		Scan(&summary.Totals).Error
	if err != nil {
		return nil, fmt.Errorf("summarize ledger: %w", err)
	}

	err = s.applyFilter(s.db.Model(&models.Transaction{}).Where("tenant_id = ?", tenantID), filter).
		Where("status <> ?", models.TransactionStatusCancelled).
		Select("category, type, currency, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("category, type, currency").
		Order("category, type, currency").
		Scan(&summary.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("summarize ledger categories: %w", err)
	}

	net := make(map[string]*NetTotal)
	var currencies []string
	for i := range summary.Totals {
		row := &summary.Totals[i]
		row.Total = row.Total.Round(2)
		if row.Status == models.TransactionStatusCancelled {
			continue
		}
		n, ok := net[row.Currency]
		if !ok {
			n = &NetTotal{Currency: row.Currency}
			net[row.Currency] = n
			currencies = append(currencies, row.Currency)
		}
		if row.Type == models.TransactionTypeIncome {
			n.Income = n.Income.Add(row.Total)
		} else {
			n.Expense = n.Expense.Add(row.Total)
		}
	}
	for i := range summary.Categories {
		summary.Categories[i].Total = summary.Categories[i].Total.Round(2)
	}
	for _, currency := range currencies {
		n := net[currency]
		n.Net = n.Income.Sub(n.Expense)
		summary.Net = append(summary.Net, *n)
	}
	return summary, nil
}

var csvHeader = []string{"id", "date", "type", "category", "status", "amount", "currency", "reference", "description"}

// ExportCSV 导出账目为 CSV
func (s *LedgerService) ExportCSV(tenantID uint, filter TransactionFilter, w io.Writer) error {
	var rows []models.Transaction
	err := s.applyFilter(s.db.Where("tenant_id = ?", tenantID), filter).
		Order("date, id").
		Find(&rows).Error
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Date.Format(dateLayout),
			row.Type,
			row.Category,
			row.Status,
			row.Amount.StringFixed(2),
			row.Currency,
			row.ReferenceValue(),
			row.Description,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
