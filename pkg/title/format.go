// Package title turns raw session titles into display titles.
//
// The pipeline is driven entirely by the configuration snapshot:
// exact overrides, balanced bracket removal, ordered substring
// replacement, then an artist prefix.
package title

import (
	"strings"
	"unicode"

	"github.com/b/mediapanel/pkg/config"
)

// ArtistSeparator joins the artist prefix and the title body.
const ArtistSeparator = "  |  "

var emptyConfig = &config.Config{}

// Format produces the display title for raw with the given artists.
func Format(raw string, artists []string, cfg *config.Config) string {
	if cfg == nil {
		cfg = emptyConfig
	}

	body := strings.TrimSpace(raw)
	if override, ok := cfg.TitleReplacements.Lookup(body); ok {
		body = strings.TrimSpace(override)
	} else {
		body = RemoveBrackets(body, cfg.RemoveBrackets)
		for _, rep := range cfg.SubstringReplacements {
			if rep.From == "" {
				continue
			}
			body = strings.ReplaceAll(body, rep.From, rep.To)
		}
	}

	if len(artists) > 0 {
		artist := strings.TrimSpace(artists[0])
		if replaced, ok := cfg.ArtistReplacements.Lookup(artist); ok {
			artist = replaced
		}
		if artist != "" {
			body = artist + ArtistSeparator + body
		}
	}

	return strings.TrimSpace(body)
}

// RemoveBrackets drops every balanced bracketed span of the configured
// kinds in a single left-to-right scan. Bracket characters are never
// emitted. A stray close is consumed without effect; an unmatched open
// suppresses the rest of the text.
func RemoveBrackets(text string, pairs config.Brackets) string {
	if len(pairs) == 0 {
		return text
	}

	counts := make([]int, len(pairs))
	open := 0 // number of kinds with a non-zero count

	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		kind, isOpen, ok := classify(r, pairs)
		if !ok {
			if open == 0 {
				b.WriteRune(r)
			}
			continue
		}
		if isOpen {
			if counts[kind] == 0 {
				open++
			}
			counts[kind]++
		} else if counts[kind] > 0 {
			counts[kind]--
			if counts[kind] == 0 {
				open--
			}
		}
	}
	return b.String()
}

// classify reports which pair r belongs to. Opening characters are
// checked first, so a pair with identical characters only ever opens.
func classify(r rune, pairs config.Brackets) (kind int, isOpen bool, ok bool) {
	for i, p := range pairs {
		if r == p.Open {
			return i, true, true
		}
		if r == p.Close {
			return i, false, true
		}
	}
	return 0, false, false
}

// IsKeywordBlacklisted reports whether title contains any keyword of the
// keyword blacklist, ignoring case.
func IsKeywordBlacklisted(title string, cfg *config.Config) bool {
	if cfg == nil || len(cfg.KeywordBlacklist) == 0 {
		return false
	}
	lower := strings.ToLower(title)
	for _, keyword := range cfg.KeywordBlacklist {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// maxExtensionLen bounds what Clean treats as a file extension.
const maxExtensionLen = 5

// Clean normalizes a title as reported by a player: one layer of
// surrounding quotes, escaped quotes, doubled spaces and a trailing file
// extension are removed.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, `\"`, `"`)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "  ", " ")

	if i := strings.LastIndex(s, "."); i > 0 && isExtension(s[i+1:]) {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isExtension(ext string) bool {
	if ext == "" || len(ext) > maxExtensionLen {
		return false
	}
	hasLetter := false
	for _, r := range ext {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			hasLetter = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return hasLetter
}
