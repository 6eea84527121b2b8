package services

import (
	stderrors "errors"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleState 租户模块开关，没有记录的模块为启用
type ModuleState struct {
	Module   string         `json:"module"`
	Enabled  bool           `json:"enabled"`
	Settings datatypes.JSON `json:"settings"`
}

// ModuleSettingInput 修改模块开关
type ModuleSettingInput struct {
	Enabled  *bool          `json:"enabled" binding:"required"`
	Settings datatypes.JSON `json:"settings"`
}

type ModuleSettingService struct {
	db *gorm.DB
}

func NewModuleSettingService(db *gorm.DB) *ModuleSettingService {
	return &ModuleSettingService{db: db}
}

// List 返回全部模块的状态
func (s *ModuleSettingService) List(tenantID uint) ([]ModuleState, error) {
	var settings []models.ModuleSetting
	if err := s.db.Where("tenant_id = ?", tenantID).Find(&settings).Error; err != nil {
		return nil, err
	}
	byModule := make(map[string]models.ModuleSetting, len(settings))
	for _, setting := range settings {
		byModule[setting.Module] = setting
	}

	states := make([]ModuleState, 0, len(models.AllModules))
	for _, module := range models.AllModules {
		state := ModuleState{Module: module, Enabled: true}
		if setting, ok := byModule[module]; ok {
			state.Enabled = setting.Enabled
			state.Settings = setting.Settings
		}
		states = append(states, state)
	}
	return states, nil
}

// Update 写入模块开关
func (s *ModuleSettingService) Update(tenantID uint, module string, in *ModuleSettingInput) (*ModuleState, error) {
	if !models.IsKnownModule(module) {
		return nil, errors.NotFound("模块 " + module)
	}
	if in.Enabled == nil {
		return nil, errors.BadRequest("enabled 为必填项")
	}

	setting := &models.ModuleSetting{
		TenantID: tenantID,
		Module:   module,
		Enabled:  *in.Enabled,
		Settings: in.Settings,
	}
	columns := []string{"enabled", "updated_at"}
	if in.Settings != nil {
		columns = append(columns, "settings")
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "module"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}

	var saved models.ModuleSetting
	if err := s.db.Where("tenant_id = ? AND module = ?", tenantID, module).First(&saved).Error; err != nil {
		return nil, err
	}
	return &ModuleState{Module: module, Enabled: saved.Enabled, Settings: saved.Settings}, nil
}

// IsEnabled 模块是否启用
func (s *ModuleSettingService) IsEnabled(tenantID uint, module string) (bool, error) {
	var setting models.ModuleSetting
	err := s.db.Where("tenant_id = ? AND module = ?", tenantID, module).First(&setting).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return setting.Enabled, nil
}
