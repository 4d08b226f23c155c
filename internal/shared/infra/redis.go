// Package infra Redis 基础设施初始化
package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace/internal/shared/cache"
	cacheredis "marketplace/internal/shared/cache/redis"
	"marketplace/internal/shared/eventbus"
	eventbusredis "marketplace/internal/shared/eventbus/redis"
	"marketplace/internal/shared/model"
)

// RedisInfra Redis 基础设施
//
// 组合 Cache 与 EventBus，共享同一个连接
type RedisInfra struct {
	cacheStore    *cacheredis.Store
	eventBusStore *eventbusredis.Store

	client *redis.Client
}

var (
	_ cache.Cache       = (*RedisInfra)(nil)
	_ eventbus.EventBus = (*RedisInfra)(nil)
)

// NewRedisInfra 从 URL 创建 Redis 基础设施
func NewRedisInfra(redisURL string) (*RedisInfra, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return newRedisInfra(redis.NewClient(opts), opts.Addr)
}

func newRedisInfra(client *redis.Client, addr string) (*RedisInfra, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Infra] Connected to %s", addr)

	return &RedisInfra{
		client:        client,
		cacheStore:    cacheredis.NewStoreFromClient(client),
		eventBusStore: eventbusredis.NewStoreFromClient(client),
	}, nil
}

// Close 关闭 Redis 连接
func (r *RedisInfra) Close() error {
	return r.client.Close()
}

// ============================================================================
// cache.Cache 接口委托实现
// ============================================================================

func (r *RedisInfra) GetRole(ctx context.Context, userID string) (model.RoleName, error) {
	return r.cacheStore.GetRole(ctx, userID)
}
func (r *RedisInfra) SetRole(ctx context.Context, userID string, role model.RoleName) error {
	return r.cacheStore.SetRole(ctx, userID, role)
}
func (r *RedisInfra) DeleteRole(ctx context.Context, userID string) error {
	return r.cacheStore.DeleteRole(ctx, userID)
}
func (r *RedisInfra) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	return r.cacheStore.GetAdminStats(ctx)
}
func (r *RedisInfra) SetAdminStats(ctx context.Context, stats *model.AdminStats) error {
	return r.cacheStore.SetAdminStats(ctx, stats)
}
func (r *RedisInfra) InvalidateAdminStats(ctx context.Context) error {
	return r.cacheStore.InvalidateAdminStats(ctx)
}

// ============================================================================
// eventbus.EventBus 接口委托实现
// ============================================================================

func (r *RedisInfra) PublishActivity(ctx context.Context, activity *model.AdminActivity) error {
	return r.eventBusStore.PublishActivity(ctx, activity)
}
func (r *RedisInfra) SubscribeActivities(ctx context.Context) (<-chan *model.AdminActivity, error) {
	return r.eventBusStore.SubscribeActivities(ctx)
}
