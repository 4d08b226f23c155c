package repository

import (
	"context"
	"database/sql"

	"marketplace/internal/shared/model"
)

// GetUserRole 获取用户角色，无记录时返回 model.RoleUser
func (s *Store) GetUserRole(ctx context.Context, userID string) (model.RoleName, error) {
	var role model.RoleName
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT role FROM user_roles WHERE user_id = $1`), userID).Scan(&role)
	if err == sql.ErrNoRows {
		return model.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// UpsertUserRole 设置用户角色，替换已有记录
func (s *Store) UpsertUserRole(ctx context.Context, userID string, role model.RoleName) error {
	_, err := s.exec(ctx,
		`INSERT INTO user_roles (id, user_id, role, created_at) VALUES ($1, $2, $3, $4) `+
			s.dialect.UpsertConflict("user_id", []string{"role = EXCLUDED.role"}),
		newID(), userID, role, nowUTC(),
	)
	return err
}

// DeleteUserRoles 删除用户的角色记录
func (s *Store) DeleteUserRoles(ctx context.Context, userID string) error {
	_, err := s.exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return err
}
