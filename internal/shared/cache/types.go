// Package cache 缓存层类型定义
package cache

import (
	"time"
)

// ============================================================================
// Key 前缀和 TTL 常量
// ============================================================================

const (
	// Key 前缀
	KeyUserRole   = "user_role:"
	KeyAdminStats = "admin_stats"

	// TTL 常量
	TTLUserRole   = 5 * time.Minute
	TTLAdminStats = 30 * time.Second
)
