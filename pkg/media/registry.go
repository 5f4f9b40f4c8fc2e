package media

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/b/mediapanel/pkg/config"
	"github.com/b/mediapanel/pkg/title"
)

// Enricher may replace a source's raw title before it is checked and
// formatted (for example by resolving a placeholder stream title).
type Enricher interface {
	Enrich(id string, md Metadata, cfg *config.Config)
}

// Registry builds the live source set from a Provider.
type Registry struct {
	provider Provider
	enricher Enricher
	logger   *slog.Logger
}

// NewRegistry creates a registry. enricher may be nil.
func NewRegistry(provider Provider, enricher Enricher, logger *slog.Logger) *Registry {
	return &Registry{provider: provider, enricher: enricher, logger: logger}
}

// Refresh lists the bus, drops blacklisted sessions, keeps surviving
// previous sources and creates new ones. It reports whether previousID
// is still part of the returned set.
//
// If the session list cannot be read, previous is returned unchanged
// together with the error.
func (r *Registry) Refresh(cfg *config.Config, previous Sources, previousID string) (Sources, bool, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	names, err := r.provider.ListSessions()
	if err != nil {
		return previous, previous.Find(previousID) != nil, fmt.Errorf("listing sessions: %w", err)
	}

	seen := make(map[string]bool, len(names))
	next := make(Sources, 0, len(names))
	for _, name := range names {
		id, ok := strings.CutPrefix(name, BusPrefix)
		if !ok {
			continue
		}
		if strings.TrimSpace(id) == "" || seen[id] {
			continue
		}
		seen[id] = true
		if title.MatchAnyGlob(cfg.SourceBlacklist, id) {
			continue
		}

		if existing := previous.Find(id); existing != nil {
			r.sync(existing, cfg)
			if title.IsKeywordBlacklisted(existing.Title(), cfg) {
				r.logger.Debug("dropping keyword-blacklisted source", "source", id)
				continue
			}
			next = append(next, existing)
			continue
		}

		if source := r.create(id, cfg); source != nil {
			next = append(next, source)
		}
	}

	next.sort()
	return next, next.Find(previousID) != nil, nil
}

// create is the source factory. It returns nil when the session cannot
// be read or is blacklisted by artist or keyword.
func (r *Registry) create(id string, cfg *config.Config) *Source {
	session, err := r.provider.Session(id)
	if err != nil {
		r.logger.Debug("cannot open session", "source", id, "error", err)
		return nil
	}
	source := NewSource(id, session)
	if err := r.fetchMetadata(source, cfg); err != nil {
		r.logger.Debug("cannot read metadata", "source", id, "error", err)
		return nil
	}
	source.Status = r.status(source)

	for _, artist := range source.Metadata.Artists() {
		if title.MatchAnyGlob(cfg.ArtistBlacklist, artist) {
			r.logger.Debug("rejecting artist-blacklisted source", "source", id, "artist", artist)
			return nil
		}
	}
	if title.IsKeywordBlacklisted(source.Title(), cfg) {
		r.logger.Debug("rejecting keyword-blacklisted source", "source", id)
		return nil
	}
	return source
}

// sync re-reads status and metadata of a known source. A failed read
// keeps the previous values for this cycle.
func (r *Registry) sync(source *Source, cfg *config.Config) {
	if err := r.fetchMetadata(source, cfg); err != nil {
		r.logger.Debug("keeping stale metadata", "source", source.ID, "error", err)
	}
	source.Status = r.status(source)
}

// UpdateMetadata re-reads the metadata of one source.
func (r *Registry) UpdateMetadata(source *Source, cfg *config.Config) error {
	return r.fetchMetadata(source, cfg)
}

func (r *Registry) fetchMetadata(source *Source, cfg *config.Config) error {
	raw, err := source.session.Metadata()
	if err != nil {
		return err
	}
	md := ParseMetadata(raw, r.logger)
	if r.enricher != nil {
		r.enricher.Enrich(source.ID, md, cfg)
	}
	source.Metadata = md
	return nil
}

func (r *Registry) status(source *Source) Status {
	status, err := source.session.Status()
	if err != nil {
		r.logger.Debug("cannot read status", "source", source.ID, "error", err)
		return Stopped
	}
	return status
}
