package auth

import (
	"errors"
	"regexp"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooWeak  = errors.New("password must contain a lowercase letter, an uppercase letter and a digit")
)

// ValidatePassword 注册密码规则：至少 8 位，包含小写、大写字母和数字
func ValidatePassword(password string) error {
	if len([]rune(password)) < 8 {
		return ErrPasswordTooShort
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return ErrPasswordTooWeak
	}
	return nil
}

var specialRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

var strengthLabels = []string{"Sehr schwach", "Sehr schwach", "Schwach", "Mittelmäßig", "Gut", "Stark"}

// PasswordStrength 密码强度评分（0..5）及提示文案
//
// 长度 ≥8、小写、大写、数字、特殊字符各计 1 分。
func PasswordStrength(password string) (int, string) {
	score := 0
	if len(password) >= 8 {
		score++
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	for _, ok := range []bool{lower, upper, digit, specialRe.MatchString(password)} {
		if ok {
			score++
		}
	}
	return score, strengthLabels[score]
}
