package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"agencydesk/pkg/config"
	"agencydesk/pkg/errors"
	"agencydesk/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// RateTable 某基准币种的汇率表
type RateTable struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// rateFeedResponse 汇率源返回格式
type rateFeedResponse struct {
	Result    string                     `json:"result"`
	BaseCode  string                     `json:"base_code"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	ErrorType string                     `json:"error-type"`
}

// CurrencyConverter 币种换算
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
}

// ExchangeRateService 汇率服务：进程内缓存 + 可选 Redis 二级缓存，源失败时使用过期缓存
type ExchangeRateService struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client
	redis   *redis.Client
	prefix  string

	mu       sync.RWMutex
	entries  map[string]*RateTable
	inflight singleflight.Group
	now      func() time.Time
}

// NewExchangeRateService 创建汇率服务，redisClient 可为空
func NewExchangeRateService(cfg config.ExchangeRateConfig, redisClient *redis.Client, prefix string) *ExchangeRateService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExchangeRateService{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		ttl:     ttl,
		client:  &http.Client{Timeout: timeout},
		redis:   redisClient,
		prefix:  prefix,
		entries: make(map[string]*RateTable),
		now:     time.Now,
	}
}

func (s *ExchangeRateService) cacheKey(base string) string {
	return fmt.Sprintf("%s:fx:%s", s.prefix, base)
}

func (s *ExchangeRateService) fresh(table *RateTable) bool {
	return table != nil && s.now().Sub(table.FetchedAt) < s.ttl
}

// GetRates 获取基准币种的汇率表
//
// 缓存命中时不加锁等待；同一基准币种的并发回源合并为一次请求，不同币种互不阻塞
func (s *ExchangeRateService) GetRates(ctx context.Context, base string) (*RateTable, error) {
	base = strings.ToUpper(strings.TrimSpace(base))

	if cached := s.cached(base); s.fresh(cached) {
		return cached, nil
	}

	v, err, _ := s.inflight.Do(base, func() (interface{}, error) {
		return s.load(ctx, base)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RateTable), nil
}

// load 依次尝试进程缓存、Redis、汇率源，源失败时退回过期缓存
func (s *ExchangeRateService) load(ctx context.Context, base string) (*RateTable, error) {
	cached := s.cached(base)
	if s.fresh(cached) {
		return cached, nil
	}

	if table := s.loadShared(ctx, base); s.fresh(table) {
		s.remember(table)
		return table, nil
	}

	table, err := s.fetch(ctx, base)
	if err != nil {
		if cached != nil {
			logger.FromContext(ctx).WithField("base", base).Warnf("汇率源不可用，使用 %s 的缓存汇率: %v", cached.FetchedAt.Format(time.RFC3339), err)
			return cached, nil
		}
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		return nil, errors.Unavailable(err, "汇率服务暂不可用")
	}

	s.remember(table)
	s.storeShared(ctx, table)
	return table, nil
}

func (s *ExchangeRateService) cached(base string) *RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[base]
}

func (s *ExchangeRateService) remember(table *RateTable) {
	s.mu.Lock()
	s.entries[table.Base] = table
	s.mu.Unlock()
}

// Refresh 强制从汇率源刷新
func (s *ExchangeRateService) Refresh(ctx context.Context, base string) (*RateTable, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	table, err := s.fetch(ctx, base)
	if err != nil {
		return nil, err
	}

	s.remember(table)
	s.storeShared(ctx, table)
	return table, nil
}

// Rate from -> to 的汇率
func (s *ExchangeRateService) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	table, err := s.GetRates(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := table.Rates[to]
	if !ok || rate.Sign() <= 0 {
		return decimal.Zero, errors.BadRequest("不支持的币种: %s", to)
	}
	return rate, nil
}

// Convert 金额换算，返回换算后金额（两位小数）与所用汇率
func (s *ExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), rate, nil
}

func (s *ExchangeRateService) fetch(ctx context.Context, base string) (*RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+base, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.BadRequest("不支持的币种: %s", base)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("exchange rate feed returned %d: %s", resp.StatusCode, string(body))
	}

	var payload rateFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode exchange rates: %w", err)
	}
	if payload.Result != "success" {
		if payload.ErrorType == "unsupported-code" {
			return nil, errors.BadRequest("不支持的币种: %s", base)
		}
		return nil, fmt.Errorf("exchange rate feed error: %s", payload.ErrorType)
	}

	return &RateTable{
		Base:      base,
		Rates:     payload.Rates,
		FetchedAt: s.now(),
	}, nil
}

func (s *ExchangeRateService) loadShared(ctx context.Context, base string) *RateTable {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, s.cacheKey(base)).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			logger.GetLogger().Debugf("读取汇率缓存失败: %v", err)
		}
		return nil
	}
	var table RateTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return &table
}

func (s *ExchangeRateService) storeShared(ctx context.Context, table *RateTable) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(table)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(table.Base), data, s.ttl).Err(); err != nil {
		logger.GetLogger().Debugf("写入汇率缓存失败: %v", err)
	}
}
