// Package redis Redis 缓存实现
package redis

import (
	"marketplace/internal/shared/cache"

	"github.com/redis/go-redis/v9"
)

// Store Redis 缓存存储
type Store struct {
	client *redis.Client
}

var _ cache.Cache = (*Store)(nil)

// NewStoreFromClient 基于共享的 Redis 客户端创建缓存（连接由 infra 建立）
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}
