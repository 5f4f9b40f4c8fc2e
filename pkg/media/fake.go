package media

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSession is returned by FakeProvider.Session for unknown ids.
var ErrNoSession = errors.New("no such session")

// FakeProvider is a deterministic in-memory Provider for tests.
type FakeProvider struct {
	mu       sync.Mutex
	names    []string
	sessions map[string]*FakeSession
	listErr  error
}

// NewFakeProvider returns an empty provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{sessions: make(map[string]*FakeSession)}
}

// Add registers a player session under BusPrefix+id and returns it.
func (p *FakeProvider) Add(id string, status Status, metadata map[string]any) *FakeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := &FakeSession{status: status, metadata: metadata, props: map[string]any{}}
	if _, ok := p.sessions[id]; !ok {
		p.names = append(p.names, BusPrefix+id)
	}
	p.sessions[id] = s
	return s
}

// AddName registers a bus name that is not a player.
func (p *FakeProvider) AddName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, name)
}

// Remove unregisters the session id.
func (p *FakeProvider) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, id)
	for i, n := range p.names {
		if n == BusPrefix+id {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// FailList makes ListSessions return err (nil to clear).
func (p *FakeProvider) FailList(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErr = err
}

func (p *FakeProvider) ListSessions() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	return append([]string(nil), p.names...), nil
}

func (p *FakeProvider) Session(id string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNoSession)
	}
	return s, nil
}

// FakeSession is a scripted Session. PlayPause toggles between Playing
// and Paused; other commands are only recorded.
type FakeSession struct {
	mu       sync.Mutex
	status   Status
	metadata map[string]any
	props    map[string]any
	sent     []Command
	err      error
}

// SetStatus changes the playback status.
func (s *FakeSession) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetMetadata replaces the raw metadata map.
func (s *FakeSession) SetMetadata(md map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = md
}

// SetProperty sets a Player interface property such as CanGoNext.
func (s *FakeSession) SetProperty(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[key] = value
}

// Fail makes every call return err (nil to clear).
func (s *FakeSession) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Sent returns the commands received so far.
func (s *FakeSession) Sent() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.sent...)
}

func (s *FakeSession) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

func (s *FakeSession) Property(iface, key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if iface == PlayerInterface && key == "PlaybackStatus" {
		return s.status.String(), nil
	}
	v, ok := s.props[key]
	if !ok {
		return nil, fmt.Errorf("property %s.%s not set", iface, key)
	}
	return v, nil
}

func (s *FakeSession) Metadata() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]any, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out, nil
}

func (s *FakeSession) Send(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, cmd)
	if cmd == PlayPause {
		if s.status == Playing {
			s.status = Paused
		} else {
			s.status = Playing
		}
	}
	return nil
}
