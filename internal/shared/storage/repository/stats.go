package repository

import (
	"context"

	"marketplace/internal/shared/model"
)

// GetAdminStats 管理后台统计
func (s *Store) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	stats := &model.AdminStats{}
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM listings),
			(SELECT COUNT(*) FROM listings WHERE status = $1),
			(SELECT COUNT(*) FROM listings WHERE moderation_status = $2),
			(SELECT COUNT(*) FROM categories)`),
		model.ListingStatusActive, model.ModerationPending,
	).Scan(&stats.TotalUsers, &stats.TotalListings, &stats.ActiveListings,
		&stats.PendingListings, &stats.TotalCategories)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListUsersWithRoles 用户资料 + 邮箱 + 角色（无角色记录视为 user）
func (s *Store) ListUsersWithRoles(ctx context.Context) ([]*model.UserWithRole, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT p.id, p.user_id, p.full_name, p.phone, p.bio, p.avatar_url, p.created_at, p.updated_at,
			u.email, COALESCE(r.role, $1)
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 LEFT JOIN user_roles r ON r.user_id = p.user_id
		 ORDER BY p.created_at DESC`), model.RoleUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.UserWithRole{}
	for rows.Next() {
		u := &model.UserWithRole{}
		if err := rows.Scan(&u.ID, &u.UserID, &u.FullName, &u.Phone, &u.Bio, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
