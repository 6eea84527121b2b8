package services

import (
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"
	"agencydesk/pkg/validation"

	"gorm.io/gorm"
)

// TenantInput 创建或修改租户
type TenantInput struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Code         string `json:"code" binding:"omitempty,alphanum,min=2,max=20"`
	BaseCurrency string `json:"base_currency" binding:"omitempty,currency"`
	Phone        string `json:"phone" binding:"max=30"`
	Email        string `json:"email" binding:"omitempty,email"`
	Address      string `json:"address" binding:"max=255"`
	Status       string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// TenantStats 租户统计信息
type TenantStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type TenantService struct {
	db              *gorm.DB
	defaultCurrency string
}

func NewTenantService(db *gorm.DB, defaultCurrency string) *TenantService {
	return &TenantService{
		db:              db,
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// List 分页查询，支持 status 过滤与名称/代码搜索
func (s *TenantService) List(params *pagination.ListParams) ([]models.Tenant, int64, error) {
	query := s.db.Model(&models.Tenant{})
	if params != nil {
		if status := params.Filters["status"]; status != "" {
			query = query.Where("status = ?", status)
		}
		if params.Keyword != "" {
			like := "%" + strings.ToLower(params.Keyword) + "%"
			query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("id ASC")
	if params != nil {
		query = query.Offset(params.GetOffset()).Limit(params.GetLimit())
	}
	tenants := make([]models.Tenant, 0)
	if err := query.Find(&tenants).Error; err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("租户")
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetActive 获取激活的租户，停用时返回 403
func (s *TenantService) GetActive(id uint) (*models.Tenant, error) {
	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive(tenant) {
		return nil, errors.Forbidden("租户已停用")
	}
	return tenant, nil
}

// ListActive 全部激活租户
func (s *TenantService) ListActive() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.Where("status = ?", models.TenantStatusActive).Order("id ASC").Find(&tenants).Error
	return tenants, err
}

// Create 创建租户，代码不可重复
func (s *TenantService) Create(in *TenantInput) (*models.Tenant, error) {
	if err := s.ValidateCreateParams(in.Name, in.Code); err != nil {
		return nil, err
	}
	if !validCurrency(in.BaseCurrency) {
		return nil, errors.BadRequest("无效的币种: %s", in.BaseCurrency)
	}

	var count int64
	if err := s.db.Model(&models.Tenant{}).Where("code = ?", in.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.Conflict("租户代码 %s 已存在", in.Code)
	}

	currency := strings.ToUpper(in.BaseCurrency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	tenant := &models.Tenant{
		Name:         in.Name,
		Code:         in.Code,
		BaseCurrency: currency,
		Phone:        in.Phone,
		Email:        in.Email,
		Address:      in.Address,
		Status:       in.Status,
	}
	if err := s.db.Create(tenant).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("租户代码 %s 已存在", in.Code)
		}
		return nil, err
	}
	return tenant, nil
}

// Update 更新租户，代码不可修改
func (s *TenantService) Update(id uint, in *TenantInput) (*models.Tenant, error) {
	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.ValidateName(in.Name) {
		return nil, errors.BadRequest("租户名称长度必须在2-100个字符之间")
	}

	if !validCurrency(in.BaseCurrency) {
		return nil, errors.BadRequest("无效的币种: %s", in.BaseCurrency)
	}

	tenant.Name = in.Name
	tenant.Phone = in.Phone
	tenant.Email = in.Email
	tenant.Address = in.Address
	if in.BaseCurrency != "" {
		tenant.BaseCurrency = strings.ToUpper(in.BaseCurrency)
	}
	if in.Status != "" {
		if !s.IsValidStatus(in.Status) {
			return nil, errors.BadRequest("无效的租户状态: %s", in.Status)
		}
		tenant.Status = in.Status
	}

	if err := s.db.Save(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete 删除租户，仍有用户时拒绝
func (s *TenantService) Delete(id uint) error {
	tenant, err := s.GetByID(id)
	if err != nil {
		return err
	}
	var users int64
	if err := s.db.Model(&models.User{}).Where("tenant_id = ?", id).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return errors.BadRequest("租户下仍有 %d 个用户，无法删除", users)
	}
	return s.db.Delete(tenant).Error
}

// Activate 激活租户
func (s *TenantService) Activate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusActive)
}

// Deactivate 停用租户
func (s *TenantService) Deactivate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusInactive)
}

func (s *TenantService) setStatus(id uint, status string) (*models.Tenant, error) {
	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	tenant.Status = status
	if err := s.db.Save(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetStats 获取租户统计
func (s *TenantService) GetStats() (*TenantStats, error) {
	stats := &TenantStats{}
	if err := s.db.Model(&models.Tenant{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}

// BaseCurrencies 激活租户使用的记账币种
func (s *TenantService) BaseCurrencies() ([]string, error) {
	var currencies []string
	err := s.db.Model(&models.Tenant{}).
		Where("status = ?", models.TenantStatusActive).
		Distinct().
		Pluck("base_currency", &currencies).Error
	return currencies, err
}

// IsValidStatus 检查租户状态是否有效
func (s *TenantService) IsValidStatus(status string) bool {
	switch status {
	case models.TenantStatusActive, models.TenantStatusInactive:
		return true
	default:
		return false
	}
}

// IsActive 检查租户是否激活
func (s *TenantService) IsActive(tenant *models.Tenant) bool {
	return tenant.Status == models.TenantStatusActive
}

// ========== 验证相关方法 ==========

// ValidateName 按字符数计算长度
func (s *TenantService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}

// ValidateCode 2-20 位字母或数字
func (s *TenantService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 20 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func (s *TenantService) ValidateCreateParams(name, code string) error {
	if !s.ValidateName(name) {
		return errors.BadRequest("租户名称长度必须在2-100个字符之间")
	}
	if !s.ValidateCode(code) {
		return errors.BadRequest("租户代码长度必须在2-20个字符之间，且只能包含字母和数字")
	}
	return nil
}

// validCurrency 空值视为使用默认币种
func validCurrency(code string) bool {
	return code == "" || validation.IsCurrencyCode(strings.ToUpper(code))
}
