package title

import (
	"regexp"
	"strings"
	"sync"
)

var globCache sync.Map // pattern -> *regexp.Regexp (nil for invalid patterns)

// MatchGlob reports whether s matches the shell-style pattern. Matching
// is case-sensitive and, unlike path.Match, '*' also matches '/'.
// Supported syntax: '*', '?', '[seq]' and '[!seq]'.
func MatchGlob(pattern, s string) bool {
	re := compileGlob(pattern)
	if re == nil {
		return false
	}
	return re.MatchString(s)
}

// MatchAnyGlob reports whether s matches any of patterns.
func MatchAnyGlob(patterns []string, s string) bool {
	for _, p := range patterns {
		if MatchGlob(p, s) {
			return true
		}
	}
	return false
}

func compileGlob(pattern string) *regexp.Regexp {
	if cached, ok := globCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile(translateGlob(pattern))
	if err != nil {
		re = nil
	}
	globCache.Store(pattern, re)
	return re
}

func translateGlob(pattern string) string {
	var b strings.Builder
	b.WriteString(`^(?s:`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(`\[`)
				continue
			}
			class := string(runes[i+1 : j])
			class = strings.ReplaceAll(class, `\`, `\\`)
			switch {
			case strings.HasPrefix(class, "!"):
				class = "^" + class[1:]
			case strings.HasPrefix(class, "^"):
				class = `\` + class
			}
			b.WriteString("[" + class + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString(`)$`)
	return b.String()
}
