package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agencydesk/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RateRefresher 刷新某基准币种的汇率
type RateRefresher interface {
	Refresh(ctx context.Context, base string) (*RateTable, error)
}

// MaintenanceScheduler 定时维护任务：刷新汇率、保单过期、应收款逾期
type MaintenanceScheduler struct {
	cron        *cron.Cron
	rates       RateRefresher
	tenants     *TenantService
	health      *HealthService
	insurance   *InsuranceService
	collections *CollectionService
	now         func() time.Time

	mu      sync.Mutex
	running bool
}

// NewMaintenanceScheduler 创建维护调度器
func NewMaintenanceScheduler(rates RateRefresher, tenants *TenantService, health *HealthService, insurance *InsuranceService, collections *CollectionService) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:        cron.New(),
		rates:       rates,
		tenants:     tenants,
		health:      health,
		insurance:   insurance,
		collections: collections,
		now:         time.Now,
	}
}

// Start 注册任务并启动调度器
func (s *MaintenanceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	jobs := []struct {
		schedule string
		name     string
		run      func(ctx context.Context) error
	}{
		{"@every 1h", "refresh exchange rates", s.RefreshRates},
		{"@daily", "expire policies", s.ExpirePolicies},
		{"@daily", "mark overdue collections", s.MarkOverdueCollections},
	}
	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.schedule, func() {
			s.runJob(job.name, job.run)
		})
		if err != nil {
			return fmt.Errorf("添加定时任务 %s 失败: %w", job.name, err)
		}
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Infof("维护调度器启动成功，已加载 %d 个定时任务", len(jobs))
	return nil
}

// Stop 停止调度器并等待运行中的任务结束
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	logger.GetLogger().Info("维护调度器已停止")
}

func (s *MaintenanceScheduler) runJob(name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now()
	if err := run(ctx); err != nil {
		logger.GetLogger().WithError(err).WithField("job", name).Error("定时任务执行失败")
		return
	}
	logger.GetLogger().WithField("job", name).
		WithField("duration", time.Since(started).String()).
		Debug("定时任务执行完成")
}

// RefreshRates 刷新所有激活租户记账币种的汇率，单个币种失败不影响其他币种
func (s *MaintenanceScheduler) RefreshRates(ctx context.Context) error {
	currencies, err := s.tenants.BaseCurrencies()
	if err != nil {
		return err
	}
	var failed int
	for _, base := range currencies {
		if base == "" {
			continue
		}
		if _, err := s.rates.Refresh(ctx, base); err != nil {
			failed++
			logger.GetLogger().WithError(err).WithField("base", base).Warn("刷新汇率失败")
		}
	}
	if failed > 0 && failed == len(currencies) {
		return fmt.Errorf("全部 %d 个币种刷新失败", failed)
	}
	return nil
}

// ExpirePolicies 健康险保单与一般保单到期处理
func (s *MaintenanceScheduler) ExpirePolicies(ctx context.Context) error {
	now := s.now()
	health, err := s.health.ExpireDue(ctx, now)
	if err != nil {
		return fmt.Errorf("expire health policies: %w", err)
	}
	general, err := s.insurance.ExpireDue(ctx, now)
	if err != nil {
		return fmt.Errorf("expire policies: %w", err)
	}
	if health > 0 || general > 0 {
		logger.GetLogger().Infof("保单过期处理完成: 健康险 %d 条, 一般保单 %d 条", health, general)
	}
	return nil
}

// MarkOverdueCollections 到期未收的应收款标记为逾期
func (s *MaintenanceScheduler) MarkOverdueCollections(ctx context.Context) error {
	n, err := s.collections.MarkOverdue(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.GetLogger().Infof("%d 条应收款已逾期", n)
	}
	return nil
}
