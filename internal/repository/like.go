package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 生成 LIKE/ILIKE 的包含匹配模式，转义通配符
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// pathPatterns 生成匹配链接路径的 LIKE 模式：路径须位于链接末尾，或后接 "/"、"?"、"#"
// "/prestasi/juara" 不会匹配 "/prestasi/juara-2"
func pathPatterns(path string) []string {
	p := "%" + likeEscaper.Replace(path)
	return []string{p, p + "/%", p + "?%", p + "#%"}
}
