// Package moderation 商品审核
//
// 审核状态 pending / approved / rejected 之间可任意切换，没有终态；
// 并发更新以最后一次写入为准。
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrInvalidStatus = errors.New("invalid moderation status")
	ErrForbidden     = errors.New("insufficient privileges")
)

var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "api",
		Name:      "moderation_transitions_total",
		Help:      "Listing moderation status changes by target status",
	},
	[]string{"status"},
)

// PrivilegeChecker 判断用户是否为 admin 或 moderator
type PrivilegeChecker interface {
	IsPrivileged(ctx context.Context, userID string) (bool, error)
}

// Service 审核服务
type Service struct {
	listings storage.ListingStore
	roles    PrivilegeChecker
	recorder *activity.Recorder
	now      func() time.Time
}

// NewService 创建审核服务
func NewService(listings storage.ListingStore, roles PrivilegeChecker, recorder *activity.Recorder) *Service {
	return &Service{
		listings: listings,
		roles:    roles,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetStatus 设置商品审核状态并记录审核人与时间
func (s *Service) SetStatus(ctx context.Context, actorID, listingID string, status model.ModerationStatus) (*model.Listing, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	ok, err := s.roles.IsPrivileged(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("check privileges: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	at := s.now()
	if err := s.listings.UpdateModerationStatus(ctx, listingID, status, actorID, at); err != nil {
		return nil, err
	}
	transitionsTotal.WithLabelValues(string(status)).Inc()

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, actorID, model.ActionListingModeration, model.TargetListing, listingID,
			map[string]string{"status": string(status)}); err != nil {
			log.Printf("[moderation] record activity error: %v", err)
		}
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, storage.ErrNotFound
	}
	return listing, nil
}
