// mediapanel aggregates the playback sessions on the desktop bus into a
// single "now playing" display for status bars.
//
// Usage:
//
//	mediapanel server [-s] [-n]     run the command server
//	mediapanel client [command]     send one command, or prompt interactively
//	mediapanel                      same as client
//	mediapanel port                 print the TCP port the server uses
//	mediapanel config_path          print the configuration file path
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/b/mediapanel/pkg/daemon"
	"github.com/b/mediapanel/pkg/paths"
)

type options struct {
	start         bool
	notify        bool
	debug         bool
	socket        string
	port          int
	configPath    string
	refreshSignal string
	width         int
	timeout       time.Duration
}

func (o options) endpoint() daemon.Endpoint {
	if o.socket != "" {
		return daemon.UnixEndpoint(o.socket)
	}
	return daemon.TCPEndpoint(o.port)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(int(exit))
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the process with a status code after the message has
// already been printed.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("mediapanel", pflag.ContinueOnError)
	fs.BoolVarP(&opts.start, "start", "s", false, "start the aggregator as soon as the server is up")
	fs.BoolVarP(&opts.notify, "notify", "n", false, "send a desktop notification once the server is up")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	fs.StringVar(&opts.socket, "socket", "", "listen on / connect to this unix socket instead of TCP")
	fs.IntVar(&opts.port, "port", daemon.DefaultPort, "loopback TCP port")
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default "+paths.ConfigPath()+")")
	fs.StringVar(&opts.refreshSignal, "refresh-signal", daemon.DefaultRefreshCommand, "command run after each update that shows a source (empty disables)")
	fs.IntVar(&opts.width, "width", 0, "pad the status line to this many cells")
	fs.DurationVar(&opts.timeout, "timeout", daemon.DefaultTimeout, "client response timeout")
	return fs
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.configPath == "" {
		opts.configPath = paths.ConfigPath()
	}

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"client"}
	}

	switch mode := rest[0]; mode {
	case "server":
		return runServer(opts, newLogger(stderr, opts.debug))
	case "client":
		return runClient(opts, rest[1:], stdout, stderr)
	case "port":
		fmt.Fprintln(stdout, opts.port)
		return nil
	case "config_path":
		fmt.Fprintln(stdout, opts.configPath)
		return nil
	default:
		return fmt.Errorf("unknown mode %q: want server, client, port or config_path", mode)
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
