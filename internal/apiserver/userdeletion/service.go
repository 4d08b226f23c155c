// Package userdeletion 管理员删除用户
//
// 依次清理收藏、商品、角色、资料，最后删除身份记录。
// 前四步互不依赖，单步失败只记录日志并继续；身份删除失败时整体失败，
// 已清理的数据不回滚。
package userdeletion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/apiserver/activity"
	"marketplace/internal/shared/model"
	"marketplace/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrInsufficientPrivileges = errors.New("insufficient privileges")
	ErrUserIDRequired         = errors.New("user id is required")
	ErrUserNotFound           = errors.New("user not found")
	ErrIdentityDelete         = errors.New("failed to delete identity record")
)

var deletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "api",
		Name:      "user_deletions_total",
		Help:      "Admin user deletions by result",
	},
	[]string{"result"},
)

// Store 删除流程需要的存储操作
type Store interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	DeleteSavedListingsByUser(ctx context.Context, userID string) error
	DeleteListingsByUser(ctx context.Context, userID string) error
	DeleteUserRoles(ctx context.Context, userID string) error
	DeleteProfileByUser(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, id string) error
}

// Roles 管理员校验与角色缓存失效
type Roles interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Forget(ctx context.Context, userID string)
}

// Result 删除结果
type Result struct {
	UserID      string
	DeletedAt   time.Time
	FailedSteps []string
}

// Service 用户删除服务
type Service struct {
	store    Store
	roles    Roles
	recorder *activity.Recorder
	logger   *logging.Logger
}

// NewService 创建用户删除服务
func NewService(store Store, roles Roles, recorder *activity.Recorder, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default("userdeletion")
	}
	return &Service{store: store, roles: roles, recorder: recorder, logger: logger}
}

type step struct {
	name string
	run  func(ctx context.Context, userID string) error
}

func (s *Service) steps() []step {
	return []step{
		{"saved_listings", s.store.DeleteSavedListingsByUser},
		{"listings", s.store.DeleteListingsByUser},
		{"user_roles", s.store.DeleteUserRoles},
		{"profiles", s.store.DeleteProfileByUser},
	}
}

// Delete 删除用户及其全部关联数据
func (s *Service) Delete(ctx context.Context, adminID, userID string) (*Result, error) {
	ok, err := s.roles.IsAdmin(ctx, adminID)
	if err != nil || !ok {
		return nil, ErrInsufficientPrivileges
	}
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	logger := s.logger.WithContext(ctx).WithUserID(userID)
	logger.Info("deleting user", slog.String("admin_id", adminID))

	result := &Result{UserID: userID}
	for _, st := range s.steps() {
		if err := st.run(ctx, userID); err != nil {
			logger.WithError(err).Error("cascade step failed", slog.String("step", st.name))
			result.FailedSteps = append(result.FailedSteps, st.name)
		}
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		logger.WithError(err).Error("identity deletion failed")
		deletionsTotal.WithLabelValues("failed").Inc()
		return result, ErrIdentityDelete
	}
	s.roles.Forget(ctx, userID)
	result.DeletedAt = time.Now().UTC()
	deletionsTotal.WithLabelValues("success").Inc()

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, adminID, model.ActionUserDeleted, model.TargetUser, userID,
			map[string]string{"deleted_at": result.DeletedAt.Format(time.RFC3339)}); err != nil {
			logger.WithError(err).Warn("record activity failed")
		}
	}
	s.logger.AuditLog(adminID, string(model.ActionUserDeleted), model.TargetUser, userID)
	return result, nil
}
