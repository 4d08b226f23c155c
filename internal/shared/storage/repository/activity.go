package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"marketplace/internal/shared/model"
)

const defaultActivityLimit = 50

// CreateAdminActivity 追加审计记录
func (s *Store) CreateAdminActivity(ctx context.Context, a *model.AdminActivity) error {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = nowUTC()
	}
	var details sql.NullString
	if len(a.Details) > 0 {
		details = sql.NullString{String: string(a.Details), Valid: true}
	}
	_, err := s.exec(ctx,
		`INSERT INTO admin_activities (id, admin_id, action, target_type, target_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.AdminID, a.Action, a.TargetType, a.TargetID, details, a.CreatedAt,
	)
	return err
}

// ListAdminActivities 最近的审计记录（新的在前）
func (s *Store) ListAdminActivities(ctx context.Context, limit int) ([]*model.AdminActivity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, admin_id, action, target_type, target_id, details, created_at
		 FROM admin_activities ORDER BY created_at DESC LIMIT $1`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []*model.AdminActivity{}
	for rows.Next() {
		a := &model.AdminActivity{}
		var details sql.NullString
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.TargetType, &a.TargetID, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid && details.String != "" {
			a.Details = json.RawMessage(details.String)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
