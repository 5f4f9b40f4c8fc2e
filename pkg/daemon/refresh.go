package daemon

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultRefreshCommand pokes waybar to re-run its custom modules.
const DefaultRefreshCommand = "pkill -RTMIN+8 waybar"

const refreshTimeout = time.Second

// CommandRefresher runs a shell-free command line after every cycle
// that shows a source, so a status bar can re-query the daemon.
type CommandRefresher struct {
	argv   []string
	logger *slog.Logger
}

// NewCommandRefresher splits command on whitespace. It returns nil for
// an empty command.
func NewCommandRefresher(command string, logger *slog.Logger) *CommandRefresher {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil
	}
	return &CommandRefresher{argv: argv, logger: logger}
}

// Refresh runs the command. A non-zero exit (no bar running) is
// logged at debug level only.
func (r *CommandRefresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...).Run(); err != nil {
		r.logger.Debug("refresh command failed", "command", strings.Join(r.argv, " "), "error", err)
	}
}
