package model

import "time"

// Profile 用户资料，每个用户至多一条
type Profile struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithRole 管理后台用户列表条目
type UserWithRole struct {
	Profile
	Email string   `json:"email,omitempty"`
	Role  RoleName `json:"role"`
}
