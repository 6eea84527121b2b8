package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// LedgerEvent 账目变更事件
type LedgerEvent struct {
	TenantID      uint   `json:"tenant_id"`
	TransactionID uint   `json:"transaction_id"`
	Action        string `json:"action"` // upserted 或 deleted
	Type          string `json:"type"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
	OccurredAt    int64  `json:"occurred_at"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// RedisBus 基于 Redis pub/sub 的事件总线，同时对外提供客户端用于缓存
type RedisBus struct {
	client *redis.Client
	prefix string
}

// NewRedisBus 创建事件总线
func NewRedisBus(config *Config) *RedisBus {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisBusWithClient(client, config.Prefix)
}

// NewRedisBusWithClient 使用已有客户端创建事件总线
func NewRedisBusWithClient(client *redis.Client, prefix string) *RedisBus {
	if prefix == "" {
		prefix = "agencydesk"
	}
	return &RedisBus{client: client, prefix: prefix}
}

// Client 获取底层 Redis 客户端
func (b *RedisBus) Client() *redis.Client {
	return b.client
}

// Prefix 键前缀
func (b *RedisBus) Prefix() string {
	return b.prefix
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// LedgerChannel 租户账目事件频道
func (b *RedisBus) LedgerChannel(tenantID uint) string {
	return fmt.Sprintf("%s:ledger:events:%d", b.prefix, tenantID)
}

// PublishLedger 发布账目事件
func (b *RedisBus) PublishLedger(ctx context.Context, event LedgerEvent) error {
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize ledger event: %w", err)
	}
	if err := b.client.Publish(ctx, b.LedgerChannel(event.TenantID), data).Err(); err != nil {
		return fmt.Errorf("publish ledger event: %w", err)
	}
	return nil
}

// SubscribeLedger 订阅租户账目事件，调用方负责关闭
func (b *RedisBus) SubscribeLedger(ctx context.Context, tenantID uint) (*redis.PubSub, error) {
	pubsub := b.client.Subscribe(ctx, b.LedgerChannel(tenantID))
	// 等待订阅确认
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe ledger events: %w", err)
	}
	return pubsub, nil
}
