// Package eventbus 事件总线 mock 实现
package eventbus

import (
	"context"
	"sync"

	"marketplace/internal/shared/model"
)

// ============================================================================
// NoOpEventBus - 空操作的 EventBus 实现（用于未配置 Redis 的部署）
// ============================================================================

// NoOpEventBus 是一个不做任何操作的 EventBus 实现
type NoOpEventBus struct{}

// NewNoOpEventBus 创建 NoOpEventBus 实例
func NewNoOpEventBus() *NoOpEventBus {
	return &NoOpEventBus{}
}

// Close 关闭事件总线
func (e *NoOpEventBus) Close() error {
	return nil
}

func (e *NoOpEventBus) PublishActivity(ctx context.Context, activity *model.AdminActivity) error {
	return nil
}

// SubscribeActivities 返回的 channel 在 ctx 取消后关闭
func (e *NoOpEventBus) SubscribeActivities(ctx context.Context) (<-chan *model.AdminActivity, error) {
	ch := make(chan *model.AdminActivity)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// ============================================================================
// MemoryEventBus - 进程内实现（单实例部署和测试）
// ============================================================================

// MemoryEventBus 进程内广播，慢订阅者会丢弃事件
type MemoryEventBus struct {
	mu   sync.Mutex
	subs map[chan *model.AdminActivity]struct{}
}

// NewMemoryEventBus 创建进程内事件总线
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subs: make(map[chan *model.AdminActivity]struct{})}
}

func (e *MemoryEventBus) PublishActivity(ctx context.Context, activity *model.AdminActivity) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- activity:
		default:
		}
	}
	return nil
}

func (e *MemoryEventBus) SubscribeActivities(ctx context.Context) (<-chan *model.AdminActivity, error) {
	ch := make(chan *model.AdminActivity, 100)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.subs, ch)
		e.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Close 关闭事件总线
func (e *MemoryEventBus) Close() error {
	return nil
}

var (
	_ EventBus = (*NoOpEventBus)(nil)
	_ EventBus = (*MemoryEventBus)(nil)
)
