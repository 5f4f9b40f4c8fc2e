// Package dlna resolves the real title of DLNA streams that a player
// only reports as a placeholder, by querying an external DLNA browsing
// tool configured as dlna_command.
//
// The tool is expected to support:
//
//	<cmd> list-servers                                -> [{"path": "http://host:port/..."}]
//	<cmd> search -s <server> -sq <url> -st path       -> [{"name": "..."}]
package dlna

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/b/mediapanel/pkg/config"
	"github.com/b/mediapanel/pkg/media"
)

const (
	// DefaultPlayer is the session id whose placeholder titles are resolved.
	DefaultPlayer = "vlc"
	// Placeholder is the title the player reports for DLNA streams.
	Placeholder = "audio stream"

	lookupTimeout = 5 * time.Second
	// DefaultWait is how long Enrich blocks on a lookup before leaving it
	// to finish in the background.
	DefaultWait = 250 * time.Millisecond
)

// CommandFunc runs an external command and returns its stdout.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Resolver implements media.Enricher.
type Resolver struct {
	cache  Cache
	run    CommandFunc
	player string
	wait   time.Duration
	logger *slog.Logger

	// lookups collapses concurrent resolution of the same url.
	lookups singleflight.Group
}

// NewResolver creates a resolver backed by cache. run may be nil to use
// os/exec.
func NewResolver(cache Cache, run CommandFunc, logger *slog.Logger) *Resolver {
	if run == nil {
		run = execOutput
	}
	return &Resolver{cache: cache, run: run, player: DefaultPlayer, wait: DefaultWait, logger: logger}
}

// Enrich replaces a placeholder title with the title found on the DLNA
// server serving the stream url. A lookup that outlasts the wait budget
// keeps running and its result is served from the cache on a later call.
func (r *Resolver) Enrich(id string, md media.Metadata, cfg *config.Config) {
	if id != r.player || cfg == nil || cfg.DLNACommand == "" {
		return
	}
	streamURL := md.URL()
	if streamURL == "" || md.Title() != Placeholder {
		return
	}

	if cached, ok := r.cache.Get(streamURL); ok {
		md.SetTitle(cached)
		return
	}
	if !strings.HasPrefix(streamURL, "http://") {
		return
	}

	command := cfg.DLNACommand
	results := r.lookups.DoChan(streamURL, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		resolved, err := r.Lookup(ctx, command, streamURL)
		if err == nil && resolved != "" {
			r.cache.Put(streamURL, resolved)
		}
		return resolved, err
	})

	timer := time.NewTimer(r.wait)
	defer timer.Stop()
	select {
	case res := <-results:
		if res.Err != nil {
			r.logger.Debug("dlna lookup failed", "url", streamURL, "error", res.Err)
			return
		}
		if resolved := res.Val.(string); resolved != "" {
			md.SetTitle(resolved)
		}
	case <-timer.C:
		r.logger.Debug("dlna lookup still running", "url", streamURL)
	}
}

type server struct {
	Path string `json:"path"`
}

type item struct {
	Name string `json:"name"`
}

// Lookup finds the server whose host matches streamURL and searches it
// for the stream. It returns "" when no server or item matches.
func (r *Resolver) Lookup(ctx context.Context, command, streamURL string) (string, error) {
	host := hostOf(streamURL)
	if host == "" {
		return "", fmt.Errorf("no host in %q", streamURL)
	}

	out, err := r.run(ctx, command, "list-servers")
	if err != nil {
		return "", fmt.Errorf("list-servers: %w", err)
	}
	var servers []server
	if err := json.Unmarshal(out, &servers); err != nil {
		return "", fmt.Errorf("parsing list-servers output: %w", err)
	}

	match := ""
	for _, s := range servers {
		if hostOf(s.Path) == host {
			match = s.Path
			break
		}
	}
	if match == "" {
		return "", nil
	}

	out, err = r.run(ctx, command, "search", "-s", match, "-sq", streamURL, "-st", "path")
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}
	var items []item
	if err := json.Unmarshal(out, &items); err != nil {
		return "", fmt.Errorf("parsing search output: %w", err)
	}
	if len(items) == 0 {
		return "", nil
	}
	return items[0].Name, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
