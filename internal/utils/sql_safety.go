package utils

import "strings"

// LikeEscapeChar LIKE 模式使用的转义字符
const LikeEscapeChar = `\`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike 转义 LIKE 通配符,使用户输入按字面匹配
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern 构造大小写无关的子串匹配模式
// 配合 LOWER(column) LIKE ? ESCAPE '\' 使用
func ContainsPattern(s string) string {
	return "%" + EscapeLike(strings.ToLower(s)) + "%"
}
