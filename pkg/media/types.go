// Package media models playback sessions and elects the current one.
//
// A Registry turns the raw session list of a Provider into filtered
// Sources; Select runs arbitration over them.
package media

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// Status is the playback state reported by a session.
type Status int

const (
	Stopped Status = iota
	Paused
	Playing
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// ParseStatus maps a PlaybackStatus property value to a Status.
// Anything unrecognized is Stopped.
func ParseStatus(s string) Status {
	switch s {
	case "Playing":
		return Playing
	case "Paused":
		return Paused
	default:
		return Stopped
	}
}

// Command is a transport command sent to a session.
type Command int

const (
	Next Command = iota
	Previous
	PlayPause
)

func (c Command) String() string {
	switch c {
	case Next:
		return "Next"
	case Previous:
		return "Previous"
	default:
		return "PlayPause"
	}
}

// MetadataKeys is the fixed set of metadata keys kept from a session,
// in the order they are serialized.
var MetadataKeys = []string{
	"trackid", "length", "artUrl", "album", "albumArtist", "artist",
	"asText", "audioBPM", "autoRating", "comment", "composer",
	"contentCreated", "discNumber", "firstUsed", "genre", "lastUsed",
	"lyricist", "title", "trackNumber", "url", "useCount", "userRating",
}

var knownMetadataKeys = func() map[string]bool {
	m := make(map[string]bool, len(MetadataKeys))
	for _, k := range MetadataKeys {
		m[k] = true
	}
	return m
}()

// Metadata holds the known metadata values of a session. Absent keys
// are unset.
type Metadata map[string]any

// ParseMetadata keeps the known keys of a raw metadata map. Raw keys
// carry a namespace ("xesam:title", "mpris:length") which is removed.
// Unknown keys are dropped and logged.
func ParseMetadata(raw map[string]any, logger *slog.Logger) Metadata {
	md := make(Metadata, len(raw))
	for key, value := range raw {
		name := key
		if _, after, ok := strings.Cut(key, ":"); ok {
			name = after
		}
		if !knownMetadataKeys[name] {
			if logger != nil {
				logger.Debug("unknown metadata key", "key", key)
			}
			continue
		}
		md[name] = value
	}
	return md
}

func (m Metadata) str(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Title returns the raw title, or "".
func (m Metadata) Title() string { return m.str("title") }

// URL returns the stream url, or "".
func (m Metadata) URL() string { return m.str("url") }

// SetTitle replaces the title value.
func (m Metadata) SetTitle(t string) { m["title"] = t }

// Artists returns the artist list.
func (m Metadata) Artists() []string {
	switch v := m["artist"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}

// MarshalJSON writes every known key in MetadataKeys order, null when
// absent. A nil Metadata encodes as null.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range MetadataKeys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
