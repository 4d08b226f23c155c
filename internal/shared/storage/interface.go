// Package storage 定义持久化存储层抽象接口
//
// 调用方只依赖接口，具体实现在子包中：
//   - repository/：关系库实现（PostgreSQL / SQLite，通过 dbutil.Dialect 屏蔽差异）
//   - mongostore/：地产展示站文档库实现
//
// 单行查询不存在时返回 (nil, nil)。
package storage

import (
	"context"
	"time"

	"marketplace/internal/shared/model"
)

// ============================================================================
// 市场业务存储接口
// ============================================================================

// UserStore 身份记录存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ProfileStore 用户资料存储接口
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, profile *model.Profile) error
	ListProfiles(ctx context.Context) ([]*model.Profile, error)
	DeleteProfileByUser(ctx context.Context, userID string) error
}

// ListingStore 商品存储接口
type ListingStore interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	UpdateListing(ctx context.Context, listing *model.Listing) error
	DeleteListing(ctx context.Context, id string) error
	// ListPublicListings 仅返回 active 且 approved 的商品，按创建时间倒序
	ListPublicListings(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error)
	// ListListingsByUser 发布者视角，包含全部状态
	ListListingsByUser(ctx context.Context, userID string) ([]*model.Listing, error)
	ListAllListings(ctx context.Context) ([]*model.Listing, error)
	UpdateModerationStatus(ctx context.Context, id string, status model.ModerationStatus, moderatorID string, at time.Time) error
	DeleteListingsByUser(ctx context.Context, userID string) error
}

// CategoryStore 分类存储接口
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	CountListingsInCategory(ctx context.Context, id string) (int, error)
	// DeleteCategory 仍被商品引用时返回 ErrCategoryInUse
	DeleteCategory(ctx context.Context, id string) error
}

// SavedListingStore 收藏存储接口
type SavedListingStore interface {
	// SaveListing 幂等：重复收藏不产生第二条记录
	SaveListing(ctx context.Context, saved *model.SavedListing) error
	UnsaveListing(ctx context.Context, userID, listingID string) error
	IsListingSaved(ctx context.Context, userID, listingID string) (bool, error)
	ListSavedListings(ctx context.Context, userID string) ([]*model.SavedListing, error)
	DeleteSavedListingsByUser(ctx context.Context, userID string) error
}

// RoleStore 角色存储接口
type RoleStore interface {
	// GetUserRole 无记录时返回 model.RoleUser
	GetUserRole(ctx context.Context, userID string) (model.RoleName, error)
	// UpsertUserRole 整体替换用户唯一的角色记录
	UpsertUserRole(ctx context.Context, userID string, role model.RoleName) error
	DeleteUserRoles(ctx context.Context, userID string) error
}

// AdminActivityStore 审计存储接口（只追加）
type AdminActivityStore interface {
	CreateAdminActivity(ctx context.Context, activity *model.AdminActivity) error
	ListAdminActivities(ctx context.Context, limit int) ([]*model.AdminActivity, error)
}

// StatsStore 管理后台统计
type StatsStore interface {
	GetAdminStats(ctx context.Context) (*model.AdminStats, error)
	ListUsersWithRoles(ctx context.Context) ([]*model.UserWithRole, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	ProfileStore
	ListingStore
	CategoryStore
	SavedListingStore
	RoleStore
	AdminActivityStore
	StatsStore
	Close() error
}

// ============================================================================
// 地产展示站存储接口
// ============================================================================

// PropertyStore 展示站条目存储接口
type PropertyStore interface {
	// ListActiveProperties 返回 status=active 的条目，按 created_at 倒序
	ListActiveProperties(ctx context.Context) ([]*model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	CreateProperty(ctx context.Context, property *model.Property) error
	UpdatePropertyStatus(ctx context.Context, id string, status model.PropertyStatus) error
	DeleteProperty(ctx context.Context, id string) error
	Close() error
}
