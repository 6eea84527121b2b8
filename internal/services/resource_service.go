package services

import (
	stderrors "errors"
	"strconv"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery 列表查询的白名单：关键词搜索列与等值过滤列
type ListQuery struct {
	SearchColumns []string
	FilterColumns []string
	Order         string
}

// FilterKeys 允许的过滤参数名
func (q ListQuery) FilterKeys() []string {
	return q.FilterColumns
}

func (q ListQuery) apply(db *gorm.DB, params *pagination.ListParams) *gorm.DB {
	if params == nil {
		return db
	}
	if params.Keyword != "" && len(q.SearchColumns) > 0 {
		like := "%" + strings.ToLower(params.Keyword) + "%"
		conditions := make([]string, 0, len(q.SearchColumns))
		args := make([]interface{}, 0, len(q.SearchColumns))
		for _, column := range q.SearchColumns {
			conditions = append(conditions, "LOWER("+column+") LIKE ?")
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}
	for _, column := range q.FilterColumns {
		value, ok := params.Filters[column]
		if !ok {
			continue
		}
		// 外键按数值比较
		if strings.HasSuffix(column, "_id") {
			id, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where(column+" = ?", uint(id))
			continue
		}
		db = db.Where(column+" = ?", value)
	}
	return db
}

// listScoped 租户范围内的分页查询
func listScoped[T any](db *gorm.DB, tenantID uint, q ListQuery, params *pagination.ListParams) ([]T, int64, error) {
	query := q.apply(db.Model(new(T)).Where("tenant_id = ?", tenantID), params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := q.Order
	if order == "" {
		order = "id DESC"
	}
	query = query.Order(order)
	if params != nil {
		query = query.Offset(params.GetOffset()).Limit(params.GetLimit())
	}

	items := make([]T, 0)
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// getScoped 按租户和ID读取，不存在或属于其他租户时返回 404
func getScoped[T any](db *gorm.DB, tenantID, id uint, name string) (*T, error) {
	item := new(T)
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(item).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound(name)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// lockScoped 在事务内以 SELECT ... FOR UPDATE 读取资源，同一资源的并发预订依次执行
func lockScoped[T any](tx *gorm.DB, tenantID, id uint, name string) (*T, error) {
	return getScoped[T](tx.Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id, name)
}

// Dependent 引用资源的预订表，Statuses 为空时任意状态都视为占用
type Dependent struct {
	Model      interface{}
	ForeignKey string
	Statuses   []string
}

// ActiveBookings 处于有效状态的预订
func ActiveBookings(model interface{}, foreignKey string) Dependent {
	return Dependent{Model: model, ForeignKey: foreignKey, Statuses: models.ActiveBookingStatuses}
}

// ResourceService 租户资源的通用增删改查
type ResourceService[T any, PT interface {
	*T
	models.TenantOwned
}] struct {
	db         *gorm.DB
	name       string
	query      ListQuery
	dependents []Dependent
}

// NewResourceService 创建资源服务，name 用于错误提示
func NewResourceService[T any, PT interface {
	*T
	models.TenantOwned
}](db *gorm.DB, name string, query ListQuery, dependents ...Dependent) *ResourceService[T, PT] {
	return &ResourceService[T, PT]{
		db:         db,
		name:       name,
		query:      query,
		dependents: dependents,
	}
}

// Name 资源名称
func (s *ResourceService[T, PT]) Name() string {
	return s.name
}

// Query 列表白名单
func (s *ResourceService[T, PT]) Query() ListQuery {
	return s.query
}

// List 分页列表
func (s *ResourceService[T, PT]) List(tenantID uint, params *pagination.ListParams) ([]T, int64, error) {
	return listScoped[T](s.db, tenantID, s.query, params)
}

// Get 获取单条记录
func (s *ResourceService[T, PT]) Get(tenantID, id uint) (*T, error) {
	return getScoped[T](s.db, tenantID, id, s.name)
}

// Create 创建记录，租户ID以当前租户为准
func (s *ResourceService[T, PT]) Create(tenantID uint, item PT) error {
	item.SetID(0)
	item.SetTenantID(tenantID)
	return s.db.Create(item).Error
}

// Update 更新记录的非零字段
func (s *ResourceService[T, PT]) Update(tenantID, id uint, input PT) (*T, error) {
	existing, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	input.SetID(id)
	input.SetTenantID(tenantID)

	if err := s.db.Model(PT(existing)).Omit("id", "tenant_id", "created_at").Updates(input).Error; err != nil {
		return nil, err
	}
	return s.Get(tenantID, id)
}

// Delete 删除记录，存在有效预订时拒绝
func (s *ResourceService[T, PT]) Delete(tenantID, id uint) error {
	existing, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}

	for _, dep := range s.dependents {
		var count int64
		query := s.db.Model(dep.Model).Where("tenant_id = ? AND "+dep.ForeignKey+" = ?", tenantID, id)
		if len(dep.Statuses) > 0 {
			query = query.Where("status IN ?", dep.Statuses)
		}
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.BadRequest("%s正在使用中，无法删除", s.name)
		}
	}

	return s.db.Delete(PT(existing)).Error
}
