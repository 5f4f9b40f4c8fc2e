package aggregator

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/b/mediapanel/pkg/clock"
	"github.com/b/mediapanel/pkg/config"
	"github.com/b/mediapanel/pkg/media"
	"github.com/b/mediapanel/pkg/perf"
	"github.com/b/mediapanel/pkg/title"
)

// DefaultSettleDelay is how long a player gets to react to a transport
// command before the state is re-read.
const DefaultSettleDelay = 100 * time.Millisecond

// ErrNoSource is returned by transport operations when nothing is elected.
var ErrNoSource = errors.New("no source elected")

// Options configures a Controller.
type Options struct {
	Store    *config.Store
	Provider media.Provider
	Enricher media.Enricher // optional
	Volume   VolumeReader   // optional
	Observer Observer       // optional
	Refresh  Refresher      // optional
	Clock    clock.Clock    // defaults to clock.Real()
	Logger   *slog.Logger

	// HideDelay defaults to DefaultHideDelay when zero.
	HideDelay time.Duration
	// SettleDelay is waited after a transport command; zero waits not at all.
	SettleDelay time.Duration
	// MaxTitleLength overrides max_title_length from the config when > 0.
	MaxTitleLength int
}

// Controller owns the aggregator state. All methods are safe for
// concurrent use; the update cycle and command handlers are serialized.
type Controller struct {
	store     *config.Store
	registry  *media.Registry
	volume    VolumeReader
	observer  Observer
	refresher Refresher
	clock     clock.Clock
	logger    *slog.Logger
	settle    time.Duration
	maxTitle  int

	mu          sync.Mutex
	sources     media.Sources
	currentID   string
	scroll      int
	firstUpdate bool
	hide        *HideTimer
}

// NewController creates a controller. No configuration is read until
// the first Update.
func NewController(opts Options) *Controller {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.HideDelay == 0 {
		opts.HideDelay = DefaultHideDelay
	}
	return &Controller{
		store:       opts.Store,
		registry:    media.NewRegistry(opts.Provider, opts.Enricher, opts.Logger),
		volume:      opts.Volume,
		observer:    opts.Observer,
		refresher:   opts.Refresh,
		clock:       opts.Clock,
		logger:      opts.Logger,
		settle:      opts.SettleDelay,
		maxTitle:    opts.MaxTitleLength,
		firstUpdate: true,
		hide:        NewHideTimer(opts.HideDelay),
	}
}

// Update runs one cycle and reports whether the elected source changed.
// Without a loadable configuration it does nothing and returns false.
func (c *Controller) Update() bool {
	defer perf.Start("update").Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update()
}

func (c *Controller) update() bool {
	cfg := c.store.Current()
	if cfg == nil {
		loaded, err := c.store.Load()
		if err != nil {
			c.logger.Debug("no configuration, skipping update", "path", c.store.Path(), "error", err)
			return false
		}
		cfg = loaded
	}

	if c.volume != nil {
		if percent, unmuted, err := c.volume.Volume(); err != nil {
			c.logger.Debug("volume query failed", "error", err)
		} else {
			c.observer.SetVolume(percent, unmuted)
		}
	}

	sources, _, err := c.registry.Refresh(cfg, c.sources, c.currentID)
	if err != nil {
		c.logger.Warn("refreshing sources", "error", err)
	}
	c.sources = sources

	now := c.clock.Now()
	currentID, changed := media.Select(c.sources, c.currentID, now)
	if currentID != c.currentID {
		c.logger.Debug("elected source changed", "from", c.currentID, "to", currentID)
	}
	c.currentID = currentID
	changed = changed || c.firstUpdate
	c.firstUpdate = false

	if changed {
		c.scroll = 0
	}

	source := c.sources.Find(c.currentID)
	if source == nil {
		if changed {
			c.hide.Begin(now)
		}
		if c.hide.Tick(now) {
			c.observer.SetVisible(false)
		}
		return changed
	}

	if err := c.registry.UpdateMetadata(source, cfg); err != nil {
		c.logger.Debug("reading metadata", "source", source.ID, "error", err)
	}
	session := source.Session()
	if status, err := session.Status(); err == nil {
		source.Status = status
	}

	c.observer.SetCanGoNext(media.BoolProperty(session, media.PlayerInterface, "CanGoNext"))
	c.observer.SetCanGoPrevious(media.BoolProperty(session, media.PlayerInterface, "CanGoPrevious"))
	c.observer.SetPlaying(source.Status == media.Playing)

	formatted := title.Format(source.Title(), source.Metadata.Artists(), cfg)
	width := cfg.MaxTitleLength
	if c.maxTitle > 0 {
		width = c.maxTitle
	}
	var display string
	display, c.scroll = title.Window(formatted, width, c.scroll)
	c.observer.SetTitle(display)

	c.observer.SetVisible(true)
	c.hide.Show()
	if c.refresher != nil {
		c.refresher.Refresh()
	}
	return changed
}

// Next skips to the next track of the elected source.
func (c *Controller) Next() error { return c.transport(media.Next) }

// Previous goes back to the previous track of the elected source.
func (c *Controller) Previous() error { return c.transport(media.Previous) }

// PlayPause toggles playback of the elected source.
func (c *Controller) PlayPause() error { return c.transport(media.PlayPause) }

func (c *Controller) transport(cmd media.Command) error {
	c.mu.Lock()
	source := c.sources.Find(c.currentID)
	if source == nil {
		c.mu.Unlock()
		return ErrNoSource
	}
	err := source.Session().Send(cmd)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("sending %s to %s: %w", cmd, source.ID, err)
	}

	c.clock.Sleep(c.settle)
	c.Update()
	return nil
}

// ReloadConfig re-reads the configuration document. On success the
// source set is cleared and a hide begins, so the next cycle starts
// from the new rules. The returned message describes the outcome.
func (c *Controller) ReloadConfig() (string, error) {
	path := c.store.Path()
	if _, err := c.store.Load(); err != nil {
		return fmt.Sprintf("Failed to load config file at '%s': %v", path, err), err
	}

	c.mu.Lock()
	c.sources = nil
	c.currentID = ""
	c.hide.Begin(c.clock.Now())
	c.mu.Unlock()

	return fmt.Sprintf("Config file at '%s' loaded successfully", path), nil
}

// Current returns the elected source id and a copy of its metadata.
// Both are empty when nothing is elected.
func (c *Controller) Current() (string, media.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	source := c.sources.Find(c.currentID)
	if source == nil {
		return "", nil
	}
	return source.ID, maps.Clone(source.Metadata)
}

// HideState returns the visibility state machine's state.
func (c *Controller) HideState() HideState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hide.State()
}
