// Package volume reads and sets the master volume through amixer.
package volume

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultControl is the mixer control queried by default.
const DefaultControl = "Master"

const commandTimeout = 2 * time.Second

// ErrNoReading is returned when amixer output has neither a Right nor a
// Mono channel line.
var ErrNoReading = errors.New("no volume reading in amixer output")

// CommandFunc runs an external command and returns its stdout.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Amixer talks to ALSA through the amixer binary.
type Amixer struct {
	control string
	run     CommandFunc
}

// NewAmixer returns a provider for control. An empty control means
// DefaultControl; a nil run uses os/exec.
func NewAmixer(control string, run CommandFunc) *Amixer {
	if control == "" {
		control = DefaultControl
	}
	if run == nil {
		run = execOutput
	}
	return &Amixer{control: control, run: run}
}

// Volume returns the volume percentage, clamped to 0..100, and whether
// the channel is unmuted.
func (a *Amixer) Volume() (int, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := a.run(ctx, "amixer", "get", a.control)
	if err != nil {
		return 0, false, fmt.Errorf("amixer get %s: %w", a.control, err)
	}
	return Parse(string(out))
}

// SetVolume sets the volume to percent, clamped to 0..100.
func (a *Amixer) SetVolume(percent int) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	percent = clamp(percent)
	if _, err := a.run(ctx, "amixer", "set", a.control, strconv.Itoa(percent)+"%"); err != nil {
		return fmt.Errorf("amixer set %s: %w", a.control, err)
	}
	return nil
}

// Parse extracts the reading from `amixer get` output. The first line
// mentioning "Right:" is used, falling back to "Mono:".
//
//	Front Right: Playback 42000 [64%] [on]
//	Mono: Playback 31 [48%] [-12.00dB] [off]
func Parse(output string) (int, bool, error) {
	line, ok := channelLine(output, "Right: ")
	if !ok {
		line, ok = channelLine(output, "Mono: ")
	}
	if !ok {
		return 0, false, ErrNoReading
	}

	fields := bracketed(line)
	if len(fields) == 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrNoReading, line)
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(fields[0], "%"))
	if err != nil {
		return 0, false, fmt.Errorf("parsing volume %q: %w", fields[0], err)
	}
	return clamp(percent), fields[len(fields)-1] == "on", nil
}

func channelLine(output, marker string) (string, bool) {
	for line := range strings.SplitSeq(output, "\n") {
		if strings.Contains(line, marker) {
			return line, true
		}
	}
	return "", false
}

// bracketed returns the contents of every [..] group in s.
func bracketed(s string) []string {
	var out []string
	for {
		start := strings.IndexByte(s, '[')
		if start < 0 {
			return out
		}
		end := strings.IndexByte(s[start:], ']')
		if end < 0 {
			return out
		}
		out = append(out, s[start+1:start+end])
		s = s[start+end+1:]
	}
}

func clamp(percent int) int {
	return max(0, min(100, percent))
}
