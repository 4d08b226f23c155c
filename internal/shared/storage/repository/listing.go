package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage/dbutil"
)

const listingSelect = `SELECT l.id, l.title, l.description, l.price, l.currency, l.location, l.category_id,
	l.image_urls, l.user_id, l.status, l.moderation_status, l.moderated_by, l.moderated_at,
	l.created_at, l.updated_at, COALESCE(c.name, ''), COALESCE(p.full_name, '')
	FROM listings l
	LEFT JOIN categories c ON c.id = l.category_id
	LEFT JOIN profiles p ON p.user_id = l.user_id`

func scanListing(row rowScanner) (*model.Listing, error) {
	l := &model.Listing{}
	var (
		images      string
		moderatedBy sql.NullString
		moderatedAt sql.NullTime
	)
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.Currency, &l.Location, &l.CategoryID,
		&images, &l.UserID, &l.Status, &l.ModerationStatus, &moderatedBy, &moderatedAt,
		&l.CreatedAt, &l.UpdatedAt, &l.CategoryName, &l.SellerName)
	if err != nil {
		return nil, err
	}
	l.ImageURLs = decodeStrings(images)
	if moderatedBy.Valid {
		l.ModeratedBy = &moderatedBy.String
	}
	if moderatedAt.Valid {
		t := moderatedAt.Time
		l.ModeratedAt = &t
	}
	return l, nil
}

func (s *Store) queryListings(ctx context.Context, query string, args ...any) ([]*model.Listing, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []*model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// CreateListing 创建商品
func (s *Store) CreateListing(ctx context.Context, l *model.Listing) error {
	_, err := s.exec(ctx,
		`INSERT INTO listings (id, title, description, price, currency, location, category_id,
			image_urls, user_id, status, moderation_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID, l.Title, l.Description, l.Price, l.Currency, l.Location, l.CategoryID,
		encodeStrings(l.ImageURLs), l.UserID, l.Status, l.ModerationStatus, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// GetListing 获取商品详情
func (s *Store) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l, err := scanListing(s.db.QueryRowContext(ctx, s.rebind(listingSelect+` WHERE l.id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateListing 更新发布者可编辑的字段（不含审核字段）
func (s *Store) UpdateListing(ctx context.Context, l *model.Listing) error {
	l.UpdatedAt = nowUTC()
	return s.execAffecting(ctx,
		`UPDATE listings SET title = $1, description = $2, price = $3, currency = $4, location = $5,
			category_id = $6, image_urls = $7, status = $8, updated_at = $9
		 WHERE id = $10`,
		l.Title, l.Description, l.Price, l.Currency, l.Location,
		l.CategoryID, encodeStrings(l.ImageURLs), l.Status, l.UpdatedAt, l.ID,
	)
}

// DeleteListing 删除商品（收藏记录由外键级联删除）
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	return s.execAffecting(ctx, `DELETE FROM listings WHERE id = $1`, id)
}

// ListPublicListings 公开商品列表：status=active 且 moderation_status=approved
func (s *Store) ListPublicListings(ctx context.Context, f model.ListingFilter) ([]*model.Listing, error) {
	f.Normalize()

	conditions := []string{"l.status = $1", "l.moderation_status = $2"}
	args := []any{model.ListingStatusActive, model.ModerationApproved}
	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conditions = append(conditions, "l.category_id = "+next())
	}
	if f.Query != "" {
		pattern := dbutil.LikePattern(f.Query)
		var ors []string
		for _, col := range []string{"l.title", "l.description", "l.location"} {
			args = append(args, pattern)
			ors = append(ors, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, next()))
		}
		conditions = append(conditions, "("+ors[0]+" OR "+ors[1]+" OR "+ors[2]+")")
	}

	args = append(args, f.Limit)
	limit := next()
	args = append(args, f.Offset)
	offset := next()

	query := listingSelect + dbutil.Where(conditions) +
		` ORDER BY l.created_at DESC LIMIT ` + limit + ` OFFSET ` + offset
	return s.queryListings(ctx, query, args...)
}

// ListListingsByUser 发布者的全部商品（任意状态）
func (s *Store) ListListingsByUser(ctx context.Context, userID string) ([]*model.Listing, error) {
	return s.queryListings(ctx, listingSelect+` WHERE l.user_id = $1 ORDER BY l.created_at DESC`, userID)
}

// ListAllListings 管理后台：全部商品
func (s *Store) ListAllListings(ctx context.Context) ([]*model.Listing, error) {
	return s.queryListings(ctx, listingSelect+` ORDER BY l.created_at DESC`)
}

// UpdateModerationStatus 设置审核状态并记录审核人与时间
func (s *Store) UpdateModerationStatus(ctx context.Context, id string, status model.ModerationStatus, moderatorID string, at time.Time) error {
	return s.execAffecting(ctx,
		`UPDATE listings SET moderation_status = $1, moderated_by = $2, moderated_at = $3, updated_at = $4
		 WHERE id = $5`,
		status, moderatorID, at.UTC(), at.UTC(), id,
	)
}

// DeleteListingsByUser 删除用户的全部商品
func (s *Store) DeleteListingsByUser(ctx context.Context, userID string) error {
	_, err := s.exec(ctx, `DELETE FROM listings WHERE user_id = $1`, userID)
	return err
}
