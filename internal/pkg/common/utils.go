package common

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NameKey 名稱比對用的鍵：去頭尾空白、小寫、合併空白
func NameKey(s string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}
