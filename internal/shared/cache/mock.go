// Package cache 缓存层 mock 实现
package cache

import (
	"context"

	"marketplace/internal/shared/model"
)

// ============================================================================
// NoOpCache - 空操作的 Cache 实现（用于测试和未配置 Redis 的部署）
// ============================================================================

// NoOpCache 是一个不做任何操作的 Cache 实现，所有读取都视为未命中
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Close 关闭缓存
func (c *NoOpCache) Close() error {
	return nil
}

// RoleCache 方法

func (c *NoOpCache) GetRole(ctx context.Context, userID string) (model.RoleName, error) {
	return "", nil
}
func (c *NoOpCache) SetRole(ctx context.Context, userID string, role model.RoleName) error {
	return nil
}
func (c *NoOpCache) DeleteRole(ctx context.Context, userID string) error {
	return nil
}

// StatsCache 方法

func (c *NoOpCache) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	return nil, nil
}
func (c *NoOpCache) SetAdminStats(ctx context.Context, stats *model.AdminStats) error {
	return nil
}
func (c *NoOpCache) InvalidateAdminStats(ctx context.Context) error {
	return nil
}

// 确保 NoOpCache 实现了 Cache 接口
var _ Cache = (*NoOpCache)(nil)
