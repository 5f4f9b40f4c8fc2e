// Package config loads the per-user mediapanel configuration document.
//
// The document is a single JSON object (comments and trailing commas are
// tolerated). A file with a .yaml or .yml extension is read as YAML with
// the same keys. Every key is optional; an absent key disables the
// feature it drives.
package config

// Config is an immutable snapshot of the configuration document.
// Callers must not mutate a Config returned by a Store.
type Config struct {
	// Glob patterns (shell-style, case-sensitive) matched against
	// session ids with the bus namespace prefix removed.
	SourceBlacklist []string `json:"source_blacklist" yaml:"source_blacklist"`
	// Case-insensitive substrings; a title containing any of them hides the source.
	KeywordBlacklist []string `json:"keyword_blacklist" yaml:"keyword_blacklist"`
	// Glob patterns matched against every artist of a session.
	ArtistBlacklist []string `json:"artist_blacklist" yaml:"artist_blacklist"`

	TitleReplacements     Replacements `json:"title_replacements" yaml:"title_replacements"`
	SubstringReplacements Replacements `json:"substring_replacements" yaml:"substring_replacements"`
	ArtistReplacements    Replacements `json:"artist_replacements" yaml:"artist_replacements"`

	RemoveBrackets Brackets `json:"remove_brackets" yaml:"remove_brackets"`

	// DLNACommand is the path of the external DLNA browsing tool.
	DLNACommand string `json:"dlna_command" yaml:"dlna_command"`

	// MaxTitleLength enables the marquee when > 0.
	MaxTitleLength int `json:"max_title_length" yaml:"max_title_length"`
}
