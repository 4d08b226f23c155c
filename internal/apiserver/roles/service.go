// Package roles 用户角色解析与分配
//
// 角色读取经 Redis 缓存；分配角色时先写库再失效缓存。
package roles

import (
	"context"
	"errors"
	"fmt"
	"log"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrForbidden   = errors.New("insufficient privileges")
)

// Service 角色服务
type Service struct {
	store    storage.RoleStore
	cache    cache.RoleCache
	recorder *activity.Recorder
}

// NewService 创建角色服务，cache 为 nil 时不缓存
func NewService(store storage.RoleStore, roleCache cache.RoleCache, recorder *activity.Recorder) *Service {
	if roleCache == nil {
		roleCache = cache.NewNoOpCache()
	}
	return &Service{store: store, cache: roleCache, recorder: recorder}
}

// RoleOf 返回用户的有效角色，无记录为 user
func (s *Service) RoleOf(ctx context.Context, userID string) (model.RoleName, error) {
	role, err := s.cache.GetRole(ctx, userID)
	if err != nil {
		log.Printf("[roles] cache get %s error: %v", userID, err)
	}
	if role != "" {
		return role, nil
	}

	role, err = s.store.GetUserRole(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.cache.SetRole(ctx, userID, role); err != nil {
		log.Printf("[roles] cache set %s error: %v", userID, err)
	}
	return role, nil
}

// IsPrivileged admin 或 moderator
func (s *Service) IsPrivileged(ctx context.Context, userID string) (bool, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role.IsPrivileged(), nil
}

// IsAdmin 是否管理员
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == model.RoleAdmin, nil
}

// Assign 设置用户角色（整条替换）
//
// 调用方必须是 admin 或 moderator；不阻止降级自己或移除最后一个 admin。
func (s *Service) Assign(ctx context.Context, actorID, userID string, role model.RoleName) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	ok, err := s.IsPrivileged(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	if err := s.store.UpsertUserRole(ctx, userID, role); err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	s.Forget(ctx, userID)

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, actorID, model.ActionRoleUpdated, model.TargetUser, userID,
			map[string]string{"role": string(role)}); err != nil {
			log.Printf("[roles] record activity error: %v", err)
		}
	}
	return nil
}

// Forget 失效用户的角色缓存
func (s *Service) Forget(ctx context.Context, userID string) {
	if err := s.cache.DeleteRole(ctx, userID); err != nil {
		log.Printf("[roles] cache delete %s error: %v", userID, err)
	}
}
