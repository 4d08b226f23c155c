package repository

import (
	"context"

	"marketplace/internal/shared/model"
)

// SaveListing 收藏商品，已收藏时不做任何修改
func (s *Store) SaveListing(ctx context.Context, saved *model.SavedListing) error {
	if saved.ID == "" {
		saved.ID = newID()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = nowUTC()
	}
	_, err := s.exec(ctx,
		`INSERT INTO saved_listings (id, user_id, listing_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, listing_id) DO NOTHING`,
		saved.ID, saved.UserID, saved.ListingID, saved.CreatedAt,
	)
	return err
}

// UnsaveListing 取消收藏，未收藏不视为错误
func (s *Store) UnsaveListing(ctx context.Context, userID, listingID string) error {
	_, err := s.exec(ctx,
		`DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	return err
}

// IsListingSaved 是否已收藏
func (s *Store) IsListingSaved(ctx context.Context, userID, listingID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM saved_listings WHERE user_id = $1 AND listing_id = $2`),
		userID, listingID).Scan(&n)
	return n > 0, err
}

// ListSavedListings 用户收藏列表（含商品详情，最近收藏在前）
func (s *Store) ListSavedListings(ctx context.Context, userID string) ([]*model.SavedListing, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT sl.id, sl.user_id, sl.listing_id, sl.created_at,
			l.id, l.title, l.description, l.price, l.currency, l.location, l.category_id,
			l.image_urls, l.user_id, l.status, l.moderation_status, l.moderated_by, l.moderated_at,
			l.created_at, l.updated_at, COALESCE(c.name, ''), COALESCE(p.full_name, '')
		 FROM saved_listings sl
		 JOIN listings l ON l.id = sl.listing_id
		 LEFT JOIN categories c ON c.id = l.category_id
		 LEFT JOIN profiles p ON p.user_id = l.user_id
		 WHERE sl.user_id = $1
		 ORDER BY sl.created_at DESC`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saved := []*model.SavedListing{}
	for rows.Next() {
		sl := &model.SavedListing{}
		var prefix savedPrefix
		l, err := scanListing(prefix.wrap(rows, sl))
		if err != nil {
			return nil, err
		}
		sl.Listing = l
		saved = append(saved, sl)
	}
	return saved, rows.Err()
}

// DeleteSavedListingsByUser 删除用户的全部收藏
func (s *Store) DeleteSavedListingsByUser(ctx context.Context, userID string) error {
	_, err := s.exec(ctx, `DELETE FROM saved_listings WHERE user_id = $1`, userID)
	return err
}

// savedPrefix 在商品列之前扫描收藏记录的四列
type savedPrefix struct {
	row rowScanner
	sl  *model.SavedListing
}

func (p *savedPrefix) wrap(row rowScanner, sl *model.SavedListing) rowScanner {
	p.row, p.sl = row, sl
	return p
}

func (p *savedPrefix) Scan(dest ...any) error {
	all := append([]any{&p.sl.ID, &p.sl.UserID, &p.sl.ListingID, &p.sl.CreatedAt}, dest...)
	return p.row.Scan(all...)
}
