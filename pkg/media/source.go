package media

import (
	"sort"
	"time"

	"github.com/b/mediapanel/pkg/title"
)

// Source is one observed playback session.
type Source struct {
	ID       string
	Status   Status
	Metadata Metadata
	// LastActivity is when the source was last elected; zero if never.
	LastActivity time.Time

	session Session
}

// NewSource wraps a session handle. Metadata is fetched by the registry.
func NewSource(id string, session Session) *Source {
	return &Source{ID: id, Metadata: Metadata{}, session: session}
}

// Session returns the underlying session handle.
func (s *Source) Session() Session { return s.session }

// Title is the cleaned raw title used for blacklist checks and formatting.
func (s *Source) Title() string { return title.Clean(s.Metadata.Title()) }

// Active reports whether the source has ever been elected.
func (s *Source) Active() bool { return !s.LastActivity.IsZero() }

// Sources is a live source set ordered by ascending id.
type Sources []*Source

// Find returns the source with id, or nil.
func (ss Sources) Find(id string) *Source {
	if id == "" {
		return nil
	}
	i := sort.Search(len(ss), func(i int) bool { return ss[i].ID >= id })
	if i < len(ss) && ss[i].ID == id {
		return ss[i]
	}
	return nil
}

func (ss Sources) sort() {
	sort.Slice(ss, func(i, j int) bool { return ss[i].ID < ss[j].ID })
}
