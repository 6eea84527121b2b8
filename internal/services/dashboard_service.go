package services

import (
	"time"

	"agencydesk/internal/models"

	"gorm.io/gorm"
)

// ModuleCount 单个模块的资源与有效预订数量
type ModuleCount struct {
	Module         string `json:"module"`
	Resources      int64  `json:"resources"`
	ActiveBookings int64  `json:"active_bookings"`
}

// CollectionCount 应收款状态
type CollectionCount struct {
	Pending int64 `json:"pending"`
	Overdue int64 `json:"overdue"`
}

// Dashboard 首页概览
type Dashboard struct {
	Month        string               `json:"month"`
	Modules      []ModuleCount        `json:"modules"`
	Ledger       *LedgerSummary       `json:"ledger"`
	Collections  CollectionCount      `json:"collections"`
	Recent       []models.Transaction `json:"recent_transactions"`
	ExpiringSoon int64                `json:"expiring_policies"`
}

// moduleTables 模块的资源表与预订表
type moduleTables struct {
	module    string
	resources []interface{}
	bookings  []interface{}
}

var dashboardModules = []moduleTables{
	{models.ModuleVehicles, []interface{}{&models.Vehicle{}}, []interface{}{&models.VehicleRental{}, &models.VehicleBooking{}}},
	{models.ModuleHotels, []interface{}{&models.Hotel{}}, []interface{}{&models.HotelReservation{}}},
	{models.ModuleTours, []interface{}{&models.Tour{}}, []interface{}{&models.TourBooking{}}},
	{models.ModuleTransfers, []interface{}{&models.Transfer{}}, []interface{}{&models.TransferBooking{}}},
	{models.ModuleFlights, []interface{}{&models.Flight{}}, []interface{}{&models.FlightBooking{}}},
	{models.ModuleYachts, []interface{}{&models.Yacht{}}, []interface{}{&models.YachtRental{}, &models.YachtBooking{}}},
	{models.ModuleCruises, []interface{}{&models.Cruise{}}, []interface{}{&models.CruiseBooking{}}},
	{models.ModuleHealth, []interface{}{&models.HealthInsurance{}}, []interface{}{&models.HealthPolicy{}}},
	{models.ModuleProperty, []interface{}{&models.Property{}}, []interface{}{&models.PropertyRental{}, &models.PropertySale{}}},
	{models.ModuleInsurance, []interface{}{&models.Policy{}}, nil},
	{models.ModuleOffers, []interface{}{&models.Offer{}}, nil},
}

type DashboardService struct {
	db      *gorm.DB
	ledger  *LedgerService
	modules *ModuleSettingService
}

func NewDashboardService(db *gorm.DB, ledger *LedgerService, modules *ModuleSettingService) *DashboardService {
	return &DashboardService{db: db, ledger: ledger, modules: modules}
}

// Overview 当月账目汇总、各启用模块数量、应收款状态与最近账目
func (s *DashboardService) Overview(tenantID uint, now time.Time) (*Dashboard, error) {
	utc := now.UTC()
	monthStart := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	summary, err := s.ledger.Summary(tenantID, &monthStart, &monthEnd)
	if err != nil {
		return nil, err
	}
	dashboard := &Dashboard{
		Month:   monthStart.Format("2006-01"),
		Ledger:  summary,
		Modules: make([]ModuleCount, 0, len(dashboardModules)),
	}

	states, err := s.modules.List(tenantID)
	if err != nil {
		return nil, err
	}
	enabled := make(map[string]bool, len(states))
	for _, state := range states {
		enabled[state.Module] = state.Enabled
	}

	for _, m := range dashboardModules {
		if !enabled[m.module] {
			continue
		}
		count := ModuleCount{Module: m.module}
		for _, model := range m.resources {
			var n int64
			if err := s.db.Model(model).Where("tenant_id = ?", tenantID).Count(&n).Error; err != nil {
				return nil, err
			}
			count.Resources += n
		}
		for _, model := range m.bookings {
			var n int64
			err := s.db.Model(model).
				Where("tenant_id = ? AND status IN ?", tenantID, models.ActiveBookingStatuses).
				Count(&n).Error
			if err != nil {
				return nil, err
			}
			count.ActiveBookings += n
		}
		dashboard.Modules = append(dashboard.Modules, count)
	}

	err = s.db.Model(&models.Collection{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.CollectionStatusPending).
		Count(&dashboard.Collections.Pending).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Collection{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.CollectionStatusOverdue).
		Count(&dashboard.Collections.Overdue).Error
	if err != nil {
		return nil, err
	}

	// 30 天内到期的保单
	err = s.db.Model(&models.Policy{}).
		Where("tenant_id = ? AND status = ? AND end_date >= ? AND end_date < ?",
			tenantID, models.PolicyStatusActive, now, now.AddDate(0, 0, 30)).
		Count(&dashboard.ExpiringSoon).Error
	if err != nil {
		return nil, err
	}

	dashboard.Recent = make([]models.Transaction, 0)
	err = s.db.Where("tenant_id = ?", tenantID).
		Order("id DESC").
		Limit(5).
		Find(&dashboard.Recent).Error
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}
