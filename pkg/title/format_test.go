package title

import (
	"testing"

	"github.com/b/mediapanel/pkg/config"
)

var roundAndSquare = config.Brackets{{Open: '(', Close: ')'}, {Open: '[', Close: ']'}}

func TestRemoveBrackets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"balanced mixed kinds", "Song [Remix] (feat. X)", "Song  "},
		{"nested same kind", "A (b (c) d) E", "A  E"},
		{"interleaved kinds", "A ([b)] C", "A  C"},
		{"unmatched open suppresses rest", "Weird [ Title", "Weird "},
		{"unmatched close dropped", "Weird ] Title", "Weird  Title"},
		{"stray close then balanced", "x ) (y) z", "x   z"},
		{"no brackets", "Plain", "Plain"},
		{"unicode text kept", "Ágætis (live) byrjun", "Ágætis  byrjun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveBrackets(tt.input, roundAndSquare); got != tt.want {
				t.Errorf("RemoveBrackets(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRemoveBracketsNoPairs(t *testing.T) {
	if got := RemoveBrackets("a (b)", nil); got != "a (b)" {
		t.Errorf("RemoveBrackets without pairs = %q, want input unchanged", got)
	}
}

func TestFormat(t *testing.T) {
	cfg := &config.Config{
		TitleReplacements:     config.Replacements{{From: "Raw", To: " Nice "}},
		SubstringReplacements: config.Replacements{{From: "Nice", To: "Broken"}, {From: "foo", To: "bar"}, {From: "bar", To: "baz"}},
		ArtistReplacements:    config.Replacements{{From: "ARTIST", To: "Artist"}},
		RemoveBrackets:        roundAndSquare,
	}

	tests := []struct {
		name    string
		raw     string
		artists []string
		want    string
	}{
		{"override short-circuits", "Raw", []string{"X"}, "X  |  Nice"},
		{"override matches trimmed title", "  Raw ", nil, "Nice"},
		{"brackets then chained substrings", "foo (Official Video)", nil, "baz"},
		{"artist replaced and trimmed", "Song [HD]", []string{" ARTIST ", "Other"}, "Artist  |  Song"},
		{"empty artist list", "Song", []string{}, "Song"},
		{"blank first artist skipped", "Song", []string{"  "}, "Song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.raw, tt.artists, cfg); got != tt.want {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.raw, tt.artists, got, tt.want)
			}
		})
	}
}

func TestFormatNilConfig(t *testing.T) {
	if got := Format(" Song (x) ", []string{"A"}, nil); got != "A  |  Song (x)" {
		t.Errorf("Format with nil config = %q", got)
	}
}

func TestFormatBracketProperty(t *testing.T) {
	cfg := &config.Config{RemoveBrackets: roundAndSquare}
	if got := Format("Song [Remix] (feat. X)", nil, cfg); got != "Song" {
		t.Errorf("Format() = %q, want %q", got, "Song")
	}
	if got := Format("Weird ] Title", nil, cfg); got != "Weird  Title" {
		t.Errorf("Format() = %q, want %q", got, "Weird  Title")
	}
}

func TestIsKeywordBlacklisted(t *testing.T) {
	cfg := &config.Config{KeywordBlacklist: []string{"Advert", ""}}
	tests := []struct {
		title string
		want  bool
	}{
		{"An ADVERTISEMENT break", true},
		{"advert", true},
		{"Song", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsKeywordBlacklisted(tt.title, cfg); got != tt.want {
			t.Errorf("IsKeywordBlacklisted(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
	if IsKeywordBlacklisted("Advert", nil) {
		t.Error("nil config must not blacklist")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"Quoted Title"`, "Quoted Title"},
		{`Say \"hi\"`, `Say "hi"`},
		{"Double  spaced", "Double spaced"},
		{"track01.mp3", "track01"},
		{"Song.flac", "Song"},
		{"Mr. Brightside", "Mr. Brightside"},
		{"Version 1.5", "Version 1.5"},
		{".hidden", ".hidden"},
		{"no extension", "no extension"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
