package daemon

import (
	"encoding/json"
	"sync"

	"github.com/b/mediapanel/pkg/media"
)

// Info is the get_info payload.
type Info struct {
	Visible       bool           `json:"visible"`
	CanGoNext     bool           `json:"can_go_next"`
	CanGoPrevious bool           `json:"can_go_previous"`
	Title         string         `json:"title"`
	Volume        int            `json:"volume"`
	Muted         bool           `json:"muted"`
	Playing       bool           `json:"playing"`
	Metadata      media.Metadata `json:"metadata"`
	Source        *string        `json:"source"`
}

// ParseInfo decodes a get_info response text.
func ParseInfo(text string) (Info, error) {
	var info Info
	err := json.Unmarshal([]byte(text), &info)
	return info, err
}

// Status records the last value of every observer callback. It
// implements aggregator.Observer.
type Status struct {
	mu   sync.Mutex
	info Info
}

func (s *Status) SetVisible(v bool) {
	s.mu.Lock()
	s.info.Visible = v
	s.mu.Unlock()
}

func (s *Status) SetCanGoNext(v bool) {
	s.mu.Lock()
	s.info.CanGoNext = v
	s.mu.Unlock()
}

func (s *Status) SetCanGoPrevious(v bool) {
	s.mu.Lock()
	s.info.CanGoPrevious = v
	s.mu.Unlock()
}

func (s *Status) SetTitle(title string) {
	s.mu.Lock()
	s.info.Title = title
	s.mu.Unlock()
}

func (s *Status) SetVolume(percent int, unmuted bool) {
	s.mu.Lock()
	s.info.Volume = percent
	s.info.Muted = !unmuted
	s.mu.Unlock()
}

func (s *Status) SetPlaying(v bool) {
	s.mu.Lock()
	s.info.Playing = v
	s.mu.Unlock()
}

// Snapshot returns the recorded values. Metadata and Source are left
// empty.
func (s *Status) Snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}
