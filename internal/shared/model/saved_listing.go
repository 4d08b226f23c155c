package model

import "time"

// SavedListing 收藏记录，(user_id, listing_id) 唯一
type SavedListing struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Listing *Listing `json:"listing,omitempty" db:"-"`
}
