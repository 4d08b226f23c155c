// Package upload 商品图片上传
//
// 所有校验在调用对象存储之前完成。
package upload

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxBytes 单张图片上限 5 MiB
const DefaultMaxBytes int64 = 5 * 1024 * 1024

var (
	ErrTooLarge         = errors.New("file size must be less than 5MB")
	ErrUnsupportedType  = errors.New("only JPEG, PNG and WebP images are allowed")
	ErrInvalidExtension = errors.New("invalid file extension")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// Policy 上传限制
type Policy struct {
	MaxBytes int64
}

// DefaultPolicy 默认上传限制
func DefaultPolicy() Policy {
	return Policy{MaxBytes: DefaultMaxBytes}
}

// Validate 校验大小、声明的 MIME 类型与扩展名，返回小写扩展名
func (p Policy) Validate(filename, contentType string, size int64) (string, error) {
	max := p.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if size > max {
		return "", ErrTooLarge
	}
	if !allowedTypes[strings.ToLower(contentType)] {
		return "", ErrUnsupportedType
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !allowedExtensions[ext] {
		return "", ErrInvalidExtension
	}
	return ext, nil
}

// ObjectKey 生成对象键 {userID}/{unixMillis}-{random}.{ext}
func ObjectKey(userID, ext string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s.%s", userID, now.UnixMilli(), random, ext)
}
