// Package redis 管理后台统计缓存操作
package redis

import (
	"context"
	"strconv"

	"marketplace/internal/shared/cache"
	"marketplace/internal/shared/model"
)

// SetAdminStats 缓存统计数据
func (s *Store) SetAdminStats(ctx context.Context, stats *model.AdminStats) error {
	data := map[string]interface{}{
		"total_users":      stats.TotalUsers,
		"total_listings":   stats.TotalListings,
		"active_listings":  stats.ActiveListings,
		"pending_listings": stats.PendingListings,
		"total_categories": stats.TotalCategories,
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, cache.KeyAdminStats, data)
	pipe.Expire(ctx, cache.KeyAdminStats, cache.TTLAdminStats)
	_, err := pipe.Exec(ctx)

	return err
}

// GetAdminStats 获取缓存的统计数据，未命中返回 nil
func (s *Store) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	result, err := s.client.HGetAll(ctx, cache.KeyAdminStats).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, nil
	}

	atoi := func(k string) int {
		n, _ := strconv.Atoi(result[k])
		return n
	}
	return &model.AdminStats{
		TotalUsers:      atoi("total_users"),
		TotalListings:   atoi("total_listings"),
		ActiveListings:  atoi("active_listings"),
		PendingListings: atoi("pending_listings"),
		TotalCategories: atoi("total_categories"),
	}, nil
}

// InvalidateAdminStats 删除统计缓存
func (s *Store) InvalidateAdminStats(ctx context.Context) error {
	return s.client.Del(ctx, cache.KeyAdminStats).Err()
}
