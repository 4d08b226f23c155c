// Package model 定义核心数据模型
//
// 市场业务（关系库）：
//   - User：身份记录（邮箱 + 密码哈希）
//   - Profile：用户资料
//   - Listing：商品信息，带发布状态与审核状态
//   - Category：分类
//   - SavedListing：收藏
//   - UserRole：角色
//   - AdminActivity：管理员操作审计
//
// 地产展示站（文档库）：
//   - Property：土地/房产条目
package model

import "time"

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User 身份记录
//
// 角色不保存在用户表中，由 UserRole 单独维护。
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // never expose in JSON
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
