package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/b/mediapanel/pkg/aggregator"
	"github.com/b/mediapanel/pkg/clock"
)

const (
	// DefaultName prefixes lifecycle messages.
	DefaultName = "mediapanel"
	// DefaultUpdateInterval is the period of the update loop.
	DefaultUpdateInterval = 2 * time.Second
)

// ControllerFactory builds a fresh controller reporting to observer.
// It is called on every start.
type ControllerFactory func(observer aggregator.Observer) *aggregator.Controller

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Name          string // defaults to DefaultName
	NewController ControllerFactory
	Clock         clock.Clock   // defaults to clock.Real()
	Interval      time.Duration // defaults to DefaultUpdateInterval
	Logger        *slog.Logger
}

// Service owns the aggregator lifecycle behind the command table. While
// running it holds one controller and the goroutine driving its update
// cycle; stopping discards both.
type Service struct {
	name          string
	newController ControllerFactory
	clock         clock.Clock
	interval      time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	ctrl   *aggregator.Controller
	status *Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a stopped service.
func NewService(opts ServiceOptions) *Service {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultUpdateInterval
	}
	return &Service{
		name:          opts.Name,
		newController: opts.NewController,
		clock:         opts.Clock,
		interval:      opts.Interval,
		logger:        opts.Logger,
	}
}

// Handle executes one normalized command. It matches Server.OnCommand.
func (s *Service) Handle(command string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch command {
	case CmdHelp:
		return HelpText(), false
	case CmdStart:
		return s.start(), false
	case CmdRestart:
		if s.ctrl != nil {
			s.stop()
		}
		return s.start(), false
	}

	if !IsCommand(command) {
		return fmt.Sprintf("'%s' is not a valid command", command), true
	}
	if s.ctrl == nil {
		return s.name + " is not running", false
	}

	switch command {
	case CmdStop:
		return s.stop(), false
	case CmdGetInfo:
		return s.info()
	case CmdReloadConfig:
		msg, err := s.ctrl.ReloadConfig()
		if err != nil {
			s.logger.Warn("config reload failed", "error", err)
		}
		return msg, err != nil
	case CmdPlayPause:
		return s.transport(s.ctrl.PlayPause)
	case CmdNext:
		return s.transport(s.ctrl.Next)
	case CmdPrevious:
		return s.transport(s.ctrl.Previous)
	}
	return "", false
}

// Running reports whether the update loop is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl != nil
}

// Shutdown stops the service if it is running.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.stop()
	}
}

// ConfigChanged reloads the configuration of a running service. It is
// meant to be driven by a file watcher.
func (s *Service) ConfigChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	msg, err := s.ctrl.ReloadConfig()
	if err != nil {
		s.logger.Warn("config reload failed", "error", err)
		return
	}
	s.logger.Info(msg)
}

func (s *Service) start() string {
	if s.ctrl != nil {
		return s.name + " is already running"
	}

	status := &Status{}
	ctrl := s.newController(status)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.ctrl, s.status, s.cancel, s.done = ctrl, status, cancel, done

	// The first cycle runs before start returns, so get_info right
	// after start already reflects the sessions on the bus.
	s.tick(ctrl)
	go s.run(ctx, ctrl, done)

	msg := s.name + " has been started"
	s.logger.Info(msg)
	return msg
}

// stop cancels the update loop and waits for it to exit. Caller holds mu
// and has checked that the service is running.
func (s *Service) stop() string {
	s.cancel()
	<-s.done
	s.ctrl, s.status, s.cancel, s.done = nil, nil, nil, nil

	msg := s.name + " stopped"
	s.logger.Info(msg)
	return msg
}

func (s *Service) run(ctx context.Context, ctrl *aggregator.Controller, done chan struct{}) {
	defer close(done)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctrl)
		}
	}
}

// tick runs one update cycle. A panicking cycle is logged and the loop
// continues with the next tick.
func (s *Service) tick(ctrl *aggregator.Controller) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("update cycle panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	ctrl.Update()
}

func (s *Service) info() (string, bool) {
	info := s.status.Snapshot()
	if id, md := s.ctrl.Current(); id != "" {
		info.Source = &id
		info.Metadata = md
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Sprintf("encoding info: %v", err), true
	}
	return string(data), false
}

func (s *Service) transport(send func() error) (string, bool) {
	err := send()
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, aggregator.ErrNoSource):
		s.logger.Debug("transport command ignored", "reason", err)
		return "", false
	default:
		s.logger.Warn("transport command failed", "error", err)
		return err.Error(), true
	}
}
