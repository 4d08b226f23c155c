package model

import (
	"encoding/json"
	"time"
)

// ActivityAction 审计动作
type ActivityAction string

const (
	ActionRoleUpdated       ActivityAction = "role_updated"
	ActionListingModeration ActivityAction = "listing_moderation"
	ActionListingDeleted    ActivityAction = "listing_deleted"
	ActionCategoryCreated   ActivityAction = "category_created"
	ActionCategoryUpdated   ActivityAction = "category_updated"
	ActionCategoryDeleted   ActivityAction = "category_deleted"
	ActionUserDeleted       ActivityAction = "user_deleted"
)

// 审计目标类型
const (
	TargetUser     = "user"
	TargetListing  = "listing"
	TargetCategory = "category"
)

// AdminActivity 管理员操作审计（只追加）
type AdminActivity struct {
	ID         string          `json:"id" db:"id"`
	AdminID    string          `json:"admin_id" db:"admin_id"`
	Action     ActivityAction  `json:"action" db:"action"`
	TargetType string          `json:"target_type" db:"target_type"`
	TargetID   string          `json:"target_id" db:"target_id"`
	Details    json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// NewAdminActivity 构建审计记录，details 序列化失败时置空
func NewAdminActivity(id, adminID string, action ActivityAction, targetType, targetID string, details any) *AdminActivity {
	a := &AdminActivity{
		ID:         id,
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedAt:  time.Now().UTC(),
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			a.Details = b
		}
	}
	return a
}

// AdminStats 管理后台统计
type AdminStats struct {
	TotalUsers      int `json:"total_users"`
	TotalListings   int `json:"total_listings"`
	ActiveListings  int `json:"active_listings"`
	PendingListings int `json:"pending_listings"`
	TotalCategories int `json:"total_categories"`
}
