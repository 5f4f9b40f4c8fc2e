package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

const writeTimeout = time.Second

// ErrAlreadyRunning is returned by Serve when the pidfile belongs to a
// live process.
var ErrAlreadyRunning = errors.New("server already running")

// Server answers command requests on an endpoint. Requests from all
// connections are handled one at a time.
type Server struct {
	endpoint Endpoint
	pidPath  string
	logger   *slog.Logger

	// OnCommand executes a normalized, non-empty command and returns the
	// response text and whether it describes a failure.
	OnCommand func(command string) (text string, failed bool)

	dispatchMu sync.Mutex
	conns      sync.WaitGroup

	ready chan struct{}
	addr  net.Addr
}

// NewServer creates a server for endpoint. If pidPath is not empty the
// server refuses to start while another live process owns it.
func NewServer(endpoint Endpoint, pidPath string, logger *slog.Logger) *Server {
	return &Server{
		endpoint: endpoint,
		pidPath:  pidPath,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the listening address. Valid after Ready is closed.
func (s *Server) Addr() net.Addr { return s.addr }

// Serve listens and answers requests until ctx is cancelled, then waits
// for open connections to finish their current request.
func (s *Server) Serve(ctx context.Context) error {
	if s.pidPath != "" {
		if err := s.claimPidfile(); err != nil {
			return err
		}
		defer os.Remove(s.pidPath)
	}

	if s.endpoint.Network == "unix" {
		// Safe now that we own the pidfile.
		os.Remove(s.endpoint.Address)
	}
	listener, err := net.Listen(s.endpoint.Network, s.endpoint.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.endpoint, err)
	}
	defer func() {
		listener.Close()
		if s.endpoint.Network == "unix" {
			os.Remove(s.endpoint.Address)
		}
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.addr = listener.Addr()
	close(s.ready)
	s.logger.Info("command server listening", "endpoint", s.endpoint.String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConn(ctx, conn)
		}()
	}

	s.conns.Wait()
	return nil
}

// claimPidfile writes our pid to the pidfile unless it names a process
// that is still alive. Unparseable or dead entries are overwritten.
func (s *Server) claimPidfile() error {
	if pid, ok := readPid(s.pidPath); ok && processAlive(pid) {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("writing pidfile %s: %w", s.pidPath, err)
	}
	return nil
}

func readPid(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid, err == nil && pid > 0
}

// processAlive probes pid with signal 0. FindProcess cannot fail on Unix.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// handleConn answers requests on conn until the client disconnects or
// ctx is cancelled. Reads wake every PollInterval to notice shutdown.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := newDecoder(conn)
	enc := newEncoder(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(PollInterval))
		var req Request
		if err := dec.Decode(&req); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Debug("dropping connection", "error", err)
			}
			return
		}

		resp := s.dispatch(req)
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := enc.Encode(resp); err != nil {
			s.logger.Debug("failed to write response", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{ID: req.ID}
	command := NormalizeCommand(req.Command)
	if command == "" || s.OnCommand == nil {
		return resp
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	resp.Text, resp.Failed = s.OnCommand(command)
	s.logger.Debug("command handled", "command", command, "failed", resp.Failed)
	return resp
}
