package repository

import (
	"context"
	"database/sql"

	"marketplace/internal/shared/model"
)

const userColumns = `id, email, password_hash, status, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser 创建身份记录，邮箱重复返回 storage.ErrDuplicate
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE email = $1`), email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserPassword 更新用户密码
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.execAffecting(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, nowUTC(), id,
	)
}

// ListUsers 列出所有用户
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser 删除身份记录
//
// 资料、商品、角色、收藏仍引用该用户时外键约束会拒绝删除。
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.execAffecting(ctx, `DELETE FROM users WHERE id = $1`, id)
}
