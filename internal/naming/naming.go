package naming

import (
	"strings"

	"github.com/samber/lo"
)

var acronyms = map[string]bool{
	"id":    true,
	"ip":    true,
	"url":   true,
	"uri":   true,
	"uuid":  true,
	"uid":   true,
	"json":  true,
	"sql":   true,
	"mac":   true,
	"dns":   true,
	"tcp":   true,
	"udp":   true,
	"http":  true,
	"https": true,
	"cidr":  true,
	"vpn":   true,
	"nat":   true,
	"lan":   true,
	"wan":   true,
}

// Capitalize simply capitalizes the first letter without acronym handling
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SmartPascalCase converts snake_case, kebab-case or camelCase to PascalCase
// with proper handling of common acronyms
func SmartPascalCase(s string) string {
	if s == "" {
		return s
	}

	var result strings.Builder
	for _, word := range lo.Words(s) {
		word = strings.ToLower(word)
		if acronyms[word] {
			result.WriteString(strings.ToUpper(word))
			continue
		}
		result.WriteString(Capitalize(word))
	}
	return result.String()
}
