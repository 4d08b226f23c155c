// Package eventbus 事件总线抽象接口
//
// 提供事件的发布/订阅能力，当前由 Redis Streams 实现。
package eventbus

import (
	"context"

	"marketplace/internal/shared/model"
)

// ============================================================================
// 事件总线接口定义
// ============================================================================

// ActivityEventBus 管理员审计事件总线接口
//
// 审计记录写入数据库后广播给在线的管理后台。
type ActivityEventBus interface {
	PublishActivity(ctx context.Context, activity *model.AdminActivity) error
	// SubscribeActivities 订阅此后发布的事件，ctx 取消时关闭 channel
	SubscribeActivities(ctx context.Context) (<-chan *model.AdminActivity, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// EventBus 事件总线组合接口
type EventBus interface {
	ActivityEventBus
	Close() error
}
