// Package activity 管理员操作审计：写入 admin_activities 并实时广播
package activity

import (
	"context"
	"fmt"
	"log"

	"marketplace/internal/shared/eventbus"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/google/uuid"
)

// Recorder 审计记录器
type Recorder struct {
	store storage.AdminActivityStore
	bus   eventbus.ActivityEventBus
}

// NewRecorder 创建审计记录器，bus 可为 nil
func NewRecorder(store storage.AdminActivityStore, bus eventbus.ActivityEventBus) *Recorder {
	return &Recorder{store: store, bus: bus}
}

// Record 追加一条审计记录
//
// 写库失败返回错误；广播失败只记录日志。
func (r *Recorder) Record(ctx context.Context, adminID string, action model.ActivityAction, targetType, targetID string, details any) (*model.AdminActivity, error) {
	a := model.NewAdminActivity(uuid.NewString(), adminID, action, targetType, targetID, details)
	if err := r.store.CreateAdminActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("record %s activity: %w", action, err)
	}
	if r.bus != nil {
		if err := r.bus.PublishActivity(ctx, a); err != nil {
			log.Printf("[activity] publish %s error: %v", a.ID, err)
		}
	}
	return a, nil
}
