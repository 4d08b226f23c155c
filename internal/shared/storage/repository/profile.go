package repository

import (
	"context"
	"database/sql"

	"marketplace/internal/shared/model"
)

const profileColumns = `id, user_id, full_name, phone, bio, avatar_url, created_at, updated_at`

func scanProfile(row rowScanner) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProfile 按用户 ID 获取资料
func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`), userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProfile 创建或更新资料（按 user_id 冲突），保留原 id 与 created_at
func (s *Store) UpsertProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = newID()
	}
	now := nowUTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.exec(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) `+
			s.dialect.UpsertConflict("user_id", []string{
				"full_name = EXCLUDED.full_name",
				"phone = EXCLUDED.phone",
				"bio = EXCLUDED.bio",
				"avatar_url = EXCLUDED.avatar_url",
				"updated_at = EXCLUDED.updated_at",
			}),
		p.ID, p.UserID, p.FullName, p.Phone, p.Bio, p.AvatarURL, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// ListProfiles 列出所有资料（创建时间倒序）
func (s *Store) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfileByUser 删除用户资料，无记录不视为错误
func (s *Store) DeleteProfileByUser(ctx context.Context, userID string) error {
	_, err := s.exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	return err
}
