// Package infra 基础设施聚合层
//
// 提供统一的基础设施初始化和依赖注入，包括：
//   - Storage：关系库（PostgreSQL / SQLite）
//   - Properties：展示站文档库（MongoDB，可选）
//   - Cache：角色与统计缓存（Redis）
//   - EventBus：审计事件广播（Redis Streams）
package infra

import (
	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/eventbus"
	"marketplace/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	Storage    storage.PersistentStore
	Properties storage.PropertyStore // 未配置时为 nil
	Cache      cache.Cache
	EventBus   eventbus.EventBus
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Properties != nil {
		if err := i.Properties.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Cache != nil {
		if err := i.Cache.Close(); err != nil {
			lastErr = err
		}
	}

	// RedisInfra 同时实现 Cache 与 EventBus，只关闭一次
	if i.EventBus != nil && any(i.EventBus) != any(i.Cache) {
		if err := i.EventBus.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// NewNoOpInfrastructure 创建不依赖 Redis 的基础设施（用于测试和演示模式）
func NewNoOpInfrastructure(store storage.PersistentStore) *Infrastructure {
	return &Infrastructure{
		Storage:  store,
		Cache:    cache.NewNoOpCache(),
		EventBus: eventbus.NewMemoryEventBus(),
	}
}
