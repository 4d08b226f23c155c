package model

import "time"

// RoleName 角色
type RoleName string

const (
	RoleUser      RoleName = "user"
	RoleModerator RoleName = "moderator"
	RoleAdmin     RoleName = "admin"
)

// Valid 检查角色是否合法
func (r RoleName) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsPrivileged admin 与 moderator 可访问管理后台
func (r RoleName) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleModerator
}

// UserRole 用户角色记录，每个用户至多一条；无记录视为 user
type UserRole struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      RoleName  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
