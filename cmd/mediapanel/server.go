package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/b/mediapanel/pkg/aggregator"
	"github.com/b/mediapanel/pkg/config"
	"github.com/b/mediapanel/pkg/daemon"
	"github.com/b/mediapanel/pkg/dlna"
	"github.com/b/mediapanel/pkg/paths"
	"github.com/b/mediapanel/pkg/sessionbus"
	"github.com/b/mediapanel/pkg/volume"
)

const notifyTimeout = 2 * time.Second

func runServer(opts options, logger *slog.Logger) error {
	bus, err := sessionbus.Connect()
	if err != nil {
		return err
	}
	defer bus.Close()

	store := config.NewStore(opts.configPath)
	resolver := dlna.NewResolver(dlna.NewMapCache(), nil, logger)
	mixer := volume.NewAmixer("", nil)
	refresher := daemon.NewCommandRefresher(opts.refreshSignal, logger)

	svc := daemon.NewService(daemon.ServiceOptions{
		NewController: func(observer aggregator.Observer) *aggregator.Controller {
			ctrlOpts := aggregator.Options{
				Store:       store,
				Provider:    bus,
				Enricher:    resolver,
				Volume:      mixer,
				Observer:    observer,
				Logger:      logger,
				SettleDelay: aggregator.DefaultSettleDelay,
			}
			if refresher != nil {
				ctrlOpts.Refresh = refresher
			}
			return aggregator.NewController(ctrlOpts)
		},
		Logger: logger,
	})
	defer svc.Shutdown()

	endpoint := opts.endpoint()
	srv := daemon.NewServer(endpoint, paths.PidPath(), logger)
	srv.OnCommand = svc.Handle

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx)
	})
	g.Go(func() error {
		if err := config.Watch(ctx, store.Path(), logger, svc.ConfigChanged); err != nil {
			// Reloading still works through the reload_config command.
			logger.Warn("config auto-reload disabled", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-srv.Ready():
		}
		if opts.start {
			text, _ := svc.Handle(daemon.CmdStart)
			logger.Debug("autostart", "result", text)
		}
		if opts.notify {
			body := fmt.Sprintf("%s server running on %s", daemon.DefaultName, endpoint)
			if _, err := bus.NewNotifier(daemon.DefaultName).Notify(daemon.DefaultName, body, notifyTimeout); err != nil {
				logger.Warn("startup notification failed", "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}
