package utils

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slugify 由标题生成 slug：小写，连续空白折叠为单个连字符。
// slug 创建后不可变，作为文章的公开查询键。
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	return whitespaceRe.ReplaceAllString(slug, "-")
}
