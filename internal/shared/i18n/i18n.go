// Package i18n 地产展示站的多语言文案（pt / de / en）
//
// 查找顺序：当前语言 → pt → key 本身。
package i18n

import "strings"

// Lang 语言代码
type Lang string

const (
	PT Lang = "pt"
	DE Lang = "de"
	EN Lang = "en"
)

// Default 默认语言
const Default = PT

var tables = map[Lang]map[string]string{
	PT: portuguese,
	DE: german,
	EN: english,
}

// Supported 支持的语言
func Supported() []Lang {
	return []Lang{PT, DE, EN}
}

// Parse 解析语言代码，接受 "de"、"de-DE"、"EN" 等写法，未知值返回 pt
func Parse(s string) Lang {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	if _, ok := tables[Lang(s)]; ok {
		return Lang(s)
	}
	return Default
}

// T 翻译 key
func T(lang Lang, key string) string {
	if v, ok := tables[lang][key]; ok {
		return v
	}
	if v, ok := tables[Default][key]; ok {
		return v
	}
	return key
}

// Table 返回整张翻译表（副本），未知语言以 pt 补齐
func Table(lang Lang) map[string]string {
	out := make(map[string]string, len(tables[Default]))
	for k, v := range tables[Default] {
		out[k] = v
	}
	for k, v := range tables[lang] {
		out[k] = v
	}
	return out
}

// HTMLLang 页面 lang 属性
func HTMLLang(lang Lang) string {
	switch lang {
	case DE:
		return "de-DE"
	case EN:
		return "en-US"
	}
	return "pt-BR"
}
