package services

import (
	"context"
	"sync"
	"testing"

	"agencydesk/internal/database"
	"agencydesk/internal/models"
	"agencydesk/pkg/events"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试独立的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.MigrateDB(db))
	return db
}

func createTenant(t *testing.T, db *gorm.DB, code, currency string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: code, Code: code, BaseCurrency: currency}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// lockedTables 记录带 FOR UPDATE 的查询所读的表
func lockedTables(t *testing.T, db *gorm.DB) func() []string {
	t.Helper()
	var (
		mu     sync.Mutex
		tables []string
	)
	err := db.Callback().Query().Before("gorm:query").Register("test:locked_tables", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses[clause.Locking{}.Name()]; ok {
			mu.Lock()
			tables = append(tables, tx.Statement.Table)
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), tables...)
	}
}

// recordingNotifier 记录发布的账目事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.LedgerEvent
}

func (n *recordingNotifier) PublishLedger(ctx context.Context, event events.LedgerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) all() []events.LedgerEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]events.LedgerEvent(nil), n.events...)
}

func ledgerRows(t *testing.T, db *gorm.DB, tenantID uint) []models.Transaction {
	t.Helper()
	var rows []models.Transaction
	require.NoError(t, db.Where("tenant_id = ?", tenantID).Order("id").Find(&rows).Error)
	return rows
}
