package services

import (
	"context"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PropertyRentalInput 房屋出租请求
type PropertyRentalInput struct {
	models.BookingContact
	PropertyID  uint            `json:"property_id" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	Months      int             `json:"months" binding:"required,gte=1,lte=120"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" binding:"gte=0"`
	Deposit     decimal.Decimal `json:"deposit" binding:"gte=0"`
}

// PropertySaleInput 房屋买卖请求
type PropertySaleInput struct {
	models.BookingContact
	PropertyID uint            `json:"property_id" binding:"required"`
	SaleDate   string          `json:"sale_date" binding:"required,datetime=2006-01-02"`
	SalePrice  decimal.Decimal `json:"sale_price" binding:"gte=0"`
	Commission decimal.Decimal `json:"commission" binding:"gt=0"`
}

// PropertyService 房源、出租与买卖
type PropertyService struct {
	Properties *ResourceService[models.Property, *models.Property]
	Rentals    *BookingService[models.PropertyRental, *models.PropertyRental]
	Sales      *BookingService[models.PropertySale, *models.PropertySale]
}

func NewPropertyService(db *gorm.DB, ledger *LedgerService) *PropertyService {
	return &PropertyService{
		Properties: NewResourceService[models.Property](db, "房源", ListQuery{
			SearchColumns: []string{"title", "address", "city", "owner_name"},
			FilterColumns: []string{"status", "type", "city"},
		},
			ActiveBookings(&models.PropertyRental{}, "property_id"),
			ActiveBookings(&models.PropertySale{}, "property_id"),
		),
		Rentals: NewBookingService[models.PropertyRental](db, ledger, "房屋出租", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "property_id"},
			Order:         "start_date DESC, id DESC",
		}, BookingHooks[models.PropertyRental]{
			OnStatusChange: func(tx *gorm.DB, r *models.PropertyRental, from, to string) error {
				if releasesResource(to) {
					return setResourceStatus(tx, &models.Property{}, r.TenantID, r.PropertyID, models.PropertyStatusAvailable)
				}
				return nil
			},
			OnDelete: func(tx *gorm.DB, r *models.PropertyRental) error {
				if isActiveStatus(r.Status) {
					return setResourceStatus(tx, &models.Property{}, r.TenantID, r.PropertyID, models.PropertyStatusAvailable)
				}
				return nil
			},
		}),
		Sales: NewBookingService[models.PropertySale](db, ledger, "房屋买卖", ListQuery{
			SearchColumns: []string{"customer_name", "customer_phone"},
			FilterColumns: []string{"status", "property_id"},
			Order:         "sale_date DESC, id DESC",
		}, BookingHooks[models.PropertySale]{
			// 成交后房源标记为已售
			OnStatusChange: func(tx *gorm.DB, sale *models.PropertySale, from, to string) error {
				if to != models.BookingStatusCompleted {
					return nil
				}
				property, err := getScoped[models.Property](tx, sale.TenantID, sale.PropertyID, "房源")
				if err != nil {
					return err
				}
				if property.Status == models.PropertyStatusSold {
					return errors.BadRequest("房源 %s 已售出", property.Title)
				}
				return setResourceStatus(tx, &models.Property{}, sale.TenantID, sale.PropertyID, models.PropertyStatusSold)
			},
		}),
	}
}

// CreateRental 房源须空闲，金额为月数乘月租，出租后房源标记为已出租
func (s *PropertyService) CreateRental(ctx context.Context, tenantID uint, in *PropertyRentalInput) (*models.PropertyRental, error) {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	rental := &models.PropertyRental{
		DateRange:  models.DateRange{StartDate: start, EndDate: addMonths(start, in.Months)},
		PropertyID: in.PropertyID,
		Months:     in.Months,
		Deposit:    in.Deposit.Round(2),
	}
	rental.ApplyContact(in.BookingContact)

	return s.Rentals.Create(ctx, tenantID, rental, func(tx *gorm.DB, r *models.PropertyRental) error {
		property, err := getScoped[models.Property](tx, tenantID, in.PropertyID, "房源")
		if err != nil {
			return err
		}
		if property.Status != models.PropertyStatusAvailable {
			return errors.BadRequest("房源 %s 当前不可出租", property.Title)
		}

		rent, err := rateOrDefault(in.MonthlyRent, property.RentPrice)
		if err != nil {
			return err
		}
		r.MonthlyRent = rent
		r.TotalAmount = BookingTotal(in.Months, rent)
		r.Currency = property.Currency
		return setResourceStatus(tx, &models.Property{}, tenantID, property.ID, models.PropertyStatusRented)
	})
}

// CreateSale 登记买卖，账目记录佣金
func (s *PropertyService) CreateSale(ctx context.Context, tenantID uint, in *PropertySaleInput) (*models.PropertySale, error) {
	saleDate, err := ParseDate(in.SaleDate)
	if err != nil {
		return nil, err
	}
	sale := &models.PropertySale{
		PropertyID: in.PropertyID,
		SaleDate:   saleDate,
		Commission: in.Commission.Round(2),
	}
	sale.ApplyContact(in.BookingContact)

	return s.Sales.Create(ctx, tenantID, sale, func(tx *gorm.DB, sl *models.PropertySale) error {
		property, err := getScoped[models.Property](tx, tenantID, in.PropertyID, "房源")
		if err != nil {
			return err
		}
		if property.Status == models.PropertyStatusSold {
			return errors.BadRequest("房源 %s 已售出", property.Title)
		}

		price, err := rateOrDefault(in.SalePrice, property.SalePrice)
		if err != nil {
			return err
		}
		if sl.Commission.GreaterThan(price) {
			return errors.BadRequest("佣金不能超过成交价")
		}
		sl.SalePrice = price.Round(2)
		sl.TotalAmount = price.Round(2)
		sl.Currency = property.Currency
		return nil
	})
}
