package model

import "time"

// ListingStatus 发布状态（由发布者控制）
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusInactive ListingStatus = "inactive"
)

// Valid 检查状态是否合法
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusInactive:
		return true
	}
	return false
}

// ModerationStatus 审核状态（由管理员/版主控制）
//
// 三个值之间可以任意相互切换，没有终态。
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Valid 检查审核状态是否合法
func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

// DefaultCurrency 新建商品的默认币种
const DefaultCurrency = "CHF"

// MaxListingImages 单个商品最多图片数
const MaxListingImages = 5

// Listing 商品信息
type Listing struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	Description      string           `json:"description" db:"description"`
	Price            float64          `json:"price" db:"price"`
	Currency         string           `json:"currency" db:"currency"`
	Location         string           `json:"location" db:"location"`
	CategoryID       string           `json:"category_id" db:"category_id"`
	ImageURLs        []string         `json:"image_urls" db:"image_urls"`
	UserID           string           `json:"user_id" db:"user_id"`
	Status           ListingStatus    `json:"status" db:"status"`
	ModerationStatus ModerationStatus `json:"moderation_status" db:"moderation_status"`
	ModeratedBy      *string          `json:"moderated_by,omitempty" db:"moderated_by"`
	ModeratedAt      *time.Time       `json:"moderated_at,omitempty" db:"moderated_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`

	// 关联信息（查询时填充）
	CategoryName string `json:"category_name,omitempty" db:"-"`
	SellerName   string `json:"seller_name,omitempty" db:"-"`
}

// IsPublic 是否对所有人可见（active 且已通过审核）
func (l *Listing) IsPublic() bool {
	return l.Status == ListingStatusActive && l.ModerationStatus == ModerationApproved
}

// ListingFilter 公开列表查询条件
type ListingFilter struct {
	CategoryID string
	Query      string // 标题/描述/地点模糊匹配（不区分大小写）
	Limit      int
	Offset     int
}

// Normalize 填充分页默认值
func (f *ListingFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
