// Package redis 用户角色缓存操作
package redis

import (
	"context"
	"errors"

	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/model"

	"github.com/redis/go-redis/v9"
)

// GetRole 获取缓存的角色，未命中返回空字符串
func (s *Store) GetRole(ctx context.Context, userID string) (model.RoleName, error) {
	val, err := s.client.Get(ctx, cache.KeyUserRole+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model.RoleName(val), nil
}

// SetRole 缓存角色
func (s *Store) SetRole(ctx context.Context, userID string, role model.RoleName) error {
	return s.client.Set(ctx, cache.KeyUserRole+userID, string(role), cache.TTLUserRole).Err()
}

// DeleteRole 删除角色缓存
func (s *Store) DeleteRole(ctx context.Context, userID string) error {
	return s.client.Del(ctx, cache.KeyUserRole+userID).Err()
}
