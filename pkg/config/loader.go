package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses the document at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, formatFor(path))
}

// Format selects the document syntax.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a configuration document.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}
	return &cfg, nil
}

// Store holds the current snapshot. A failed Load keeps the previous one.
type Store struct {
	path string

	mu      sync.RWMutex
	current *Config
}

// NewStore creates a store for the document at path. Nothing is read
// until Load is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Current returns the last successfully loaded snapshot, or nil.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load re-reads the document. On failure the previous snapshot (if any)
// stays current and the error is returned.
func (s *Store) Load() (*Config, error) {
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}
