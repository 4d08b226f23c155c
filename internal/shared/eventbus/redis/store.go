// Package redis Redis Streams 事件总线实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"marketplace/internal/shared/eventbus"
	"marketplace/internal/shared/model"

	"github.com/redis/go-redis/v9"
)

// Store Redis 事件总线
type Store struct {
	client *redis.Client
}

var _ eventbus.EventBus = (*Store)(nil)

// NewStoreFromClient 从现有 Redis 客户端创建事件总线
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

// PublishActivity 发布审计事件
func (s *Store) PublishActivity(ctx context.Context, activity *model.AdminActivity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: eventbus.KeyAdminActivities,
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"action": string(activity.Action),
			"data":   string(data),
		},
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	log.Printf("[Redis/EventBus] Published activity: id=%s action=%s", id, activity.Action)
	return nil
}

// SubscribeActivities 订阅审计事件（从订阅时刻开始）
func (s *Store) SubscribeActivities(ctx context.Context) (<-chan *model.AdminActivity, error) {
	ch := make(chan *model.AdminActivity, 100)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := s.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{eventbus.KeyAdminActivities, lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() == nil {
					log.Printf("[Redis/EventBus] Activity subscription error: %v", err)
				}
				return
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID
					raw, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var activity model.AdminActivity
					if err := json.Unmarshal([]byte(raw), &activity); err != nil {
						log.Printf("[Redis/EventBus] Skip malformed activity %s: %v", msg.ID, err)
						continue
					}

					select {
					case ch <- &activity:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}
