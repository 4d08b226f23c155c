package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Category 商品分类
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

var (
	ErrSlugEmpty   = errors.New("slug is required")
	ErrSlugTooLong = errors.New("slug must be at most 50 characters")
	ErrSlugFormat  = errors.New("slug may only contain lowercase letters, digits and hyphens")
)

// NormalizeSlug 去除首尾空白并转小写
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug 校验已规范化的 slug：1..50 个 [a-z0-9-] 字符
func ValidateSlug(slug string) error {
	switch {
	case slug == "":
		return ErrSlugEmpty
	case len(slug) > 50:
		return ErrSlugTooLong
	case !slugRe.MatchString(slug):
		return ErrSlugFormat
	}
	return nil
}
