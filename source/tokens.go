package source

import (
	"regexp"
	"strings"
)

// ReplaceTokens substitutes every {name} placeholder whose name is a key of
// values. Names match case-insensitively. Other placeholders are kept.
func ReplaceTokens(s string, values map[string]string) string {
	if len(values) == 0 {
		return s
	}
	lower := make(map[string]string, len(values))
	names := make([]string, 0, len(values))
	for name, v := range values {
		lower[strings.ToLower(name)] = v
		names = append(names, regexp.QuoteMeta(name))
	}
	re := regexp.MustCompile(`(?i)\{(` + strings.Join(names, "|") + `)\}`)
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return lower[strings.ToLower(m[1:len(m)-1])]
	})
}
