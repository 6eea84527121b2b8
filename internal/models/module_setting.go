package models

import "gorm.io/datatypes"

// 业务模块
const (
	ModuleVehicles  = "vehicles"
	ModuleHotels    = "hotels"
	ModuleTours     = "tours"
	ModuleTransfers = "transfers"
	ModuleFlights   = "flights"
	ModuleYachts    = "yachts"
	ModuleCruises   = "cruises"
	ModuleHealth    = "health"
	ModuleProperty  = "property"
	ModuleInsurance = "insurance"
	ModuleOffers    = "offers"
	ModuleFinance   = "finance"
)

// AllModules 全部业务模块，按菜单顺序
var AllModules = []string{
	ModuleVehicles,
	ModuleHotels,
	ModuleTours,
	ModuleTransfers,
	ModuleFlights,
	ModuleYachts,
	ModuleCruises,
	ModuleHealth,
	ModuleProperty,
	ModuleInsurance,
	ModuleOffers,
	ModuleFinance,
}

// IsKnownModule 是否为已知模块
func IsKnownModule(module string) bool {
	for _, m := range AllModules {
		if m == module {
			return true
		}
	}
	return false
}

// ModuleSetting 租户模块开关，没有记录时视为启用
type ModuleSetting struct {
	BaseModel
	TenantID uint           `json:"tenant_id" gorm:"not null;uniqueIndex:idx_tenant_module"`
	Module   string         `json:"module" gorm:"size:30;not null;uniqueIndex:idx_tenant_module"`
	Enabled  bool           `json:"enabled" gorm:"not null"`
	Settings datatypes.JSON `json:"settings" gorm:"type:json"`
}

func (ModuleSetting) TableName() string {
	return "module_settings"
}
