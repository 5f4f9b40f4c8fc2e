// mediapanel-bridge is a browser native-messaging host. It reads
// framed {"command": ...} messages on stdin, forwards each to the
// mediapanel server and writes the answer back on stdout.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/b/mediapanel/pkg/bridge"
	"github.com/b/mediapanel/pkg/daemon"
)

// request is a message from the browser.
type request struct {
	Command string `json:"command"`
}

// reply is the message sent back for every request.
type reply struct {
	Command  string `json:"command"`
	Response string `json:"response"`
	Failed   bool   `json:"failed"`
}

type caller interface {
	Call(command string) (daemon.Response, error)
}

// dialer connects lazily and reconnects after a broken connection.
type dialer struct {
	endpoint daemon.Endpoint
	timeout  time.Duration
	client   *daemon.Client
}

func (d *dialer) Call(command string) (daemon.Response, error) {
	if d.client == nil {
		c, err := daemon.Dial(d.endpoint, d.timeout)
		if err != nil {
			return daemon.Response{}, err
		}
		d.client = c
	}
	resp, err := d.client.Call(command)
	if err != nil && !errors.Is(err, daemon.ErrTimeout) {
		d.client.Close()
		d.client = nil
	}
	return resp, err
}

func (d *dialer) Close() {
	if d.client != nil {
		d.client.Close()
	}
}

func main() {
	var socket string
	var port int
	var timeout time.Duration
	var debug bool

	fs := pflag.NewFlagSet("mediapanel-bridge", pflag.ContinueOnError)
	fs.StringVar(&socket, "socket", "", "connect to this unix socket instead of TCP")
	fs.IntVar(&port, "port", daemon.DefaultPort, "server TCP port")
	fs.DurationVar(&timeout, "timeout", daemon.DefaultTimeout, "response timeout")
	fs.BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	endpoint := daemon.TCPEndpoint(port)
	if socket != "" {
		endpoint = daemon.UnixEndpoint(socket)
	}
	d := &dialer{endpoint: endpoint, timeout: timeout}
	defer d.Close()

	if err := serve(bridge.NewReader(os.Stdin), bridge.NewWriter(os.Stdout), d, logger); err != nil {
		logger.Error("bridge stopped", "error", err)
		os.Exit(1)
	}
}

// serve answers messages until in is closed. A closed input is a clean
// exit.
func serve(in *bridge.Reader, out *bridge.Writer, c caller, logger *slog.Logger) error {
	for {
		var req request
		err := in.Read(&req)
		if errors.Is(err, bridge.ErrClosed) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return err
			}
			logger.Warn("dropping malformed message", "error", err)
			continue
		}

		if err := out.Write(handle(c, req.Command, logger)); err != nil {
			return err
		}
	}
}

func handle(c caller, raw string, logger *slog.Logger) reply {
	command := daemon.NormalizeCommand(raw)
	r := reply{Command: command}
	if !daemon.IsCommand(command) {
		r.Response = fmt.Sprintf("'%s' is not a valid command", command)
		r.Failed = true
		return r
	}

	resp, err := c.Call(command)
	switch {
	case resp.Failed:
		r.Response, r.Failed = resp.Text, true
	case err != nil:
		logger.Debug("forwarding failed", "command", command, "error", err)
		r.Response, r.Failed = err.Error(), true
	default:
		r.Response = resp.Text
	}
	return r
}
