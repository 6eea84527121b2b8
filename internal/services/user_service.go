package services

import (
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/jwt"
	"agencydesk/pkg/pagination"

	"gorm.io/gorm"
)

// UserInput 创建用户
type UserInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=admin agent"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type UserService struct {
	db  *gorm.DB
	jwt *jwt.JWTManager
}

func NewUserService(db *gorm.DB, jwtManager *jwt.JWTManager) *UserService {
	return &UserService{db: db, jwt: jwtManager}
}

// ========== 认证 ==========

// Login 校验用户名密码并签发令牌，用户名或邮箱均可登录
func (s *UserService) Login(username, password string) (*LoginResult, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.CodeUnauthorized, "用户名或密码错误")
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, errors.New(errors.CodeUnauthorized, "用户名或密码错误")
	}
	if !user.IsActive() {
		return nil, errors.Forbidden("用户已停用")
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, user.TenantID).Error; err != nil {
		return nil, err
	}
	if tenant.Status != models.TenantStatusActive && !user.IsPlatformAdmin {
		return nil, errors.Forbidden("租户已停用")
	}

	result, err := s.issue(&user, user.TenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// SwitchTenant 切换当前租户并重新签发令牌，平台管理员可切换到任意激活租户
func (s *UserService) SwitchTenant(userID, tenantID uint) (*LoginResult, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPlatformAdmin && user.TenantID != tenantID {
		return nil, errors.Forbidden("无权访问该租户")
	}

	var tenant models.Tenant
	err = s.db.First(&tenant, tenantID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("租户")
	}
	if err != nil {
		return nil, err
	}
	if tenant.Status != models.TenantStatusActive {
		return nil, errors.Forbidden("租户已停用")
	}

	return s.issue(user, tenantID)
}

func (s *UserService) issue(user *models.User, currentTenantID uint) (*LoginResult, error) {
	token, err := s.jwt.GenerateTokenWithTenant(jwt.Identity{
		UserID:          user.ID,
		TenantID:        user.TenantID,
		Username:        user.Username,
		Role:            user.Role,
		IsPlatformAdmin: user.IsPlatformAdmin,
	}, currentTenantID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwt.GetTokenDuration()),
		User:      user,
	}, nil
}

// ========== 基础CRUD方法 ==========

// Create 在租户下创建用户
func (s *UserService) Create(tenantID uint, in *UserInput) (*models.User, error) {
	if err := s.ValidateCreateParams(in.Username, in.Email, in.Password, in.Name); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.Conflict("用户名已存在")
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.Conflict("邮箱已存在")
	}

	user := &models.User{
		TenantID: tenantID,
		Username: in.Username,
		Email:    strings.ToLower(in.Email),
		Name:     in.Name,
		Role:     in.Role,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, errors.Wrap(err, errors.CodeServerError, "密码加密失败")
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// EnsurePlatformAdmin 确保平台管理员存在，已存在时不修改密码
func (s *UserService) EnsurePlatformAdmin(tenantID uint, username, email, password string) (*models.User, bool, error) {
	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user := &models.User{
		TenantID:        tenantID,
		Username:        username,
		Email:           email,
		Name:            "Administrator",
		Role:            models.UserRoleAdmin,
		Status:          models.UserStatusActive,
		IsPlatformAdmin: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, false, err
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("用户")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List 租户下的用户列表
func (s *UserService) List(tenantID uint, params *pagination.ListParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if params != nil && params.Keyword != "" {
		like := "%" + strings.ToLower(params.Keyword) + "%"
		query = query.Where("(LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(name) LIKE ?)", like, like, like)
	}
	if params != nil {
		for _, key := range []string{"role", "status"} {
			if value := params.Filters[key]; value != "" {
				query = query.Where(key+" = ?", value)
			}
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
	users := make([]models.User, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Delete 删除租户下的用户
func (s *UserService) Delete(tenantID, id uint) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if user.TenantID != tenantID {
		return errors.NotFound("用户")
	}
	if user.IsPlatformAdmin {
		return errors.BadRequest("不能删除平台管理员")
	}
	return s.db.Delete(user).Error
}

// ========== 验证相关方法 ==========

func (s *UserService) ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	for _, r := range username {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

func (s *UserService) ValidatePassword(password string) bool {
	return len(password) >= 6 && len(password) <= 72
}

func (s *UserService) ValidateCreateParams(username, email, password, name string) error {
	if !s.ValidateUsername(username) {
		return errors.BadRequest("用户名长度必须在3-50个字符之间，且只能包含字母、数字、下划线和点")
	}
	if !strings.Contains(email, "@") {
		return errors.BadRequest("邮箱格式错误")
	}
	if !s.ValidatePassword(password) {
		return errors.BadRequest("密码长度必须在6-72个字符之间")
	}
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		return errors.BadRequest("姓名长度必须在1-100个字符之间")
	}
	return nil
}
