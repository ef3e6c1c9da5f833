package utils

import (
	"regexp"
	"strings"
	"time"
)

// 用户名规则：3-30 位，小写字母、数字、下划线，必须以字母开头
var usernamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{2,29}$`)

// NormalizeUsername 去掉首尾空白并统一小写
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername 检查用户名是否符合格式要求
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidBirthYear 出生年份范围检查：[1900, 当前年份]
func ValidBirthYear(year int) bool {
	return year >= 1900 && year <= time.Now().Year()
}

// ValidDate 检查 "2006-01-02" 格式的日期串
func ValidDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
