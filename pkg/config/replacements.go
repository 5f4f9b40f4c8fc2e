package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Replacement is one key -> value rule of an ordered replacement map.
type Replacement struct {
	From string
	To   string
}

// Replacements is a key -> value map that keeps document order.
// Substring rules are applied in this order, each seeing the previous
// rule's output.
type Replacements []Replacement

// Lookup returns the value mapped to key.
func (r Replacements) Lookup(key string) (string, bool) {
	for _, rep := range r {
		if rep.From == key {
			return rep.To, true
		}
	}
	return "", false
}

// set appends a rule, or overwrites the value of an existing key in place.
func (r *Replacements) set(key, value string) {
	for i := range *r {
		if (*r)[i].From == key {
			(*r)[i].To = value
			return
		}
	}
	*r = append(*r, Replacement{From: key, To: value})
}

func (r *Replacements) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	out := Replacements{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		out.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

func (r *Replacements) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	out := Replacements{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key, value string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		out.set(key, value)
	}
	*r = out
	return nil
}

// BracketPair is one open/close character pair removed from titles.
type BracketPair struct {
	Open  rune
	Close rune
}

// Brackets is the list of bracket kinds. It decodes from either a
// single string of concatenated pairs ("()[]") or a list of pairs
// (["()", "[]"]).
type Brackets []BracketPair

// ParseBrackets splits s into consecutive open/close pairs.
func ParseBrackets(s string) (Brackets, error) {
	runes := []rune(s)
	if len(runes)%2 != 0 {
		return nil, fmt.Errorf("bracket string %q has an odd number of characters", s)
	}
	out := make(Brackets, 0, len(runes)/2)
	for i := 0; i < len(runes); i += 2 {
		out = append(out, BracketPair{Open: runes[i], Close: runes[i+1]})
	}
	return out, nil
}

func parseBracketList(items []string) (Brackets, error) {
	var out Brackets
	for _, item := range items {
		pairs, err := ParseBrackets(item)
		if err != nil {
			return nil, err
		}
		out = append(out, pairs...)
	}
	return out, nil
}

func (b *Brackets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}
	var parsed Brackets
	var err error
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err = ParseBrackets(s)
	} else {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parsed, err = parseBracketList(items)
	}
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b *Brackets) UnmarshalYAML(node *yaml.Node) error {
	var parsed Brackets
	var err error
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err = ParseBrackets(node.Value)
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		parsed, err = parseBracketList(items)
	default:
		return fmt.Errorf("line %d: expected string or list of bracket pairs", node.Line)
	}
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
