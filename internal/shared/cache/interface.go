// Package cache 缓存层抽象接口
//
// 提供临时状态和缓存的存取能力，当前由 Redis 实现。
package cache

import (
	"context"

	"marketplace/internal/shared/model"
)

// ============================================================================
// 缓存接口定义
// ============================================================================

// RoleCache 用户角色缓存接口
//
// 角色变更或用户删除后必须调用 DeleteRole，未命中时 GetRole 返回空字符串。
type RoleCache interface {
	GetRole(ctx context.Context, userID string) (model.RoleName, error)
	SetRole(ctx context.Context, userID string, role model.RoleName) error
	DeleteRole(ctx context.Context, userID string) error
}

// StatsCache 管理后台统计缓存接口
type StatsCache interface {
	GetAdminStats(ctx context.Context) (*model.AdminStats, error)
	SetAdminStats(ctx context.Context, stats *model.AdminStats) error
	InvalidateAdminStats(ctx context.Context) error
}

// ============================================================================
// 组合接口
// ============================================================================

// Cache 缓存组合接口
type Cache interface {
	RoleCache
	StatsCache
	Close() error
}
