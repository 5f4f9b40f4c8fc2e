package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/b/mediapanel/pkg/daemon"
	"github.com/b/mediapanel/pkg/paths"
)

type fakeCaller struct {
	calls     []string
	responses map[string]daemon.Response
	err       error
}

func (f *fakeCaller) Call(command string) (daemon.Response, error) {
	f.calls = append(f.calls, command)
	return f.responses[command], f.err
}

func TestRunModes(t *testing.T) {
	t.Setenv("MEDIAPANEL_CONFIG_DIR", "/etc/xdg")
	paths.ResetForTest()
	t.Cleanup(paths.ResetForTest)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"port"}, "3000\n"},
		{[]string{"--port", "4100", "port"}, "4100\n"},
		{[]string{"config_path"}, "/etc/xdg/mediapanel-config.json\n"},
		{[]string{"--config", "/tmp/x.yaml", "config_path"}, "/tmp/x.yaml\n"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		if err := run(tt.args, &stdout, &stderr); err != nil {
			t.Fatalf("run(%q) error: %v", tt.args, err)
		}
		if stdout.String() != tt.want {
			t.Errorf("run(%q) printed %q, want %q", tt.args, stdout.String(), tt.want)
		}
	}
}

func TestRunRejectsBadMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"dance"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("run(dance) = %v, want an unknown mode error", err)
	}
}

func TestRunDefaultsToClient(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "absent.sock")
	tests := []struct {
		name string
		args []string
	}{
		{"no mode", []string{"--socket", socket}},
		{"explicit client", []string{"--socket", socket, "client", "next"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), "failed to connect") {
				t.Errorf("run(%q) = %v, want a client connect error", tt.args, err)
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	c := &fakeCaller{responses: map[string]daemon.Response{
		"start":    {Text: "mediapanel has been started"},
		"next":     {},
		"get_info": {Text: "broken", Failed: true},
	}}

	var stdout, stderr bytes.Buffer
	if err := runOnce(c, "start", 0, &stdout, &stderr); err != nil {
		t.Fatalf("runOnce(start) error: %v", err)
	}
	if stdout.String() != "mediapanel has been started\n" {
		t.Errorf("stdout = %q", stdout.String())
	}

	stdout.Reset()
	if err := runOnce(c, "next", 0, &stdout, &stderr); err != nil || stdout.Len() != 0 {
		t.Errorf("runOnce(next) = %v, printed %q", err, stdout.String())
	}

	err := runOnce(c, "dance", 0, &stdout, &stderr)
	var exit exitError
	if !errors.As(err, &exit) || exit != 2 {
		t.Errorf("runOnce(dance) = %v, want exit 2", err)
	}
	if !strings.Contains(stderr.String(), "'dance' is not a valid command") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if len(c.calls) != 2 {
		t.Errorf("calls = %v, invalid command must not be sent", c.calls)
	}

	stderr.Reset()
	if err := runOnce(c, "get_info", 0, &stdout, &stderr); !errors.As(err, &exit) || exit != 1 {
		t.Errorf("runOnce(get_info) = %v, want exit 1", err)
	}
}

func TestRunOnceStatus(t *testing.T) {
	c := &fakeCaller{responses: map[string]daemon.Response{
		"get_info": {Text: `{"visible":true,"title":"Band  |  Song","playing":true}`},
	}}
	var stdout, stderr bytes.Buffer
	if err := runOnce(c, "status", 0, &stdout, &stderr); err != nil {
		t.Fatalf("runOnce(status) error: %v", err)
	}
	if got, want := stdout.String(), playingIcon+" Band  |  Song\n"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}

	c.responses["get_info"] = daemon.Response{Text: "mediapanel is not running"}
	stdout.Reset()
	if err := runOnce(c, "status", 4, &stdout, &stderr); err != nil {
		t.Fatalf("runOnce(status) error: %v", err)
	}
	if stdout.String() != "    \n" {
		t.Errorf("status while stopped = %q, want blank padding", stdout.String())
	}
}

func TestRunScript(t *testing.T) {
	c := &fakeCaller{responses: map[string]daemon.Response{
		"start": {Text: "mediapanel has been started"},
		"stop":  {Text: "mediapanel stopped"},
	}}
	var stdout, stderr bytes.Buffer
	in := strings.NewReader("start\n\n bogus \nSTOP\n")
	if err := runScript(c, in, &stdout, &stderr); err != nil {
		t.Fatalf("runScript() error: %v", err)
	}
	if stdout.String() != "mediapanel has been started\nmediapanel stopped\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "'bogus' is not a valid command") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name  string
		info  daemon.Info
		width int
		want  string
	}{
		{"hidden", daemon.Info{Title: "Song"}, 0, ""},
		{"paused", daemon.Info{Visible: true, Title: "Song"}, 0, pausedIcon + " Song"},
		{"playing", daemon.Info{Visible: true, Playing: true, Title: "Song"}, 0, playingIcon + " Song"},
		{"hidden padded", daemon.Info{}, 3, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLine(tt.info, tt.width); got != tt.want {
				t.Errorf("statusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusLineWidth(t *testing.T) {
	info := daemon.Info{Visible: true, Playing: true, Title: "A very long title that will not fit"}
	for _, width := range []int{8, 20, 60} {
		if got := runewidth.StringWidth(statusLine(info, width)); got != width {
			t.Errorf("statusLine(width=%d) is %d cells wide", width, got)
		}
	}
}

func typeLine(m tea.Model, s string) (tea.Model, tea.Cmd) {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestPromptForwardsCommands(t *testing.T) {
	c := &fakeCaller{responses: map[string]daemon.Response{
		"get_info": {Text: `{"visible":false}`},
	}}
	var m tea.Model = newPromptModel(c)

	m, cmd := typeLine(m, " GET_INFO")
	if cmd == nil {
		t.Fatal("enter on a valid command returned no command")
	}
	m, _ = m.Update(cmd())
	if len(c.calls) != 1 || c.calls[0] != "get_info" {
		t.Errorf("calls = %v", c.calls)
	}
	if view := m.View(); !strings.Contains(view, `{"visible":false}`) || !strings.Contains(view, promptText) {
		t.Errorf("View() = %q", view)
	}
}

func TestPromptLocalCommands(t *testing.T) {
	c := &fakeCaller{}
	var m tea.Model = newPromptModel(c)

	m, _ = typeLine(m, "help")
	if !strings.Contains(m.View(), "Available commands:") {
		t.Errorf("help not answered locally: %q", m.View())
	}

	m, _ = typeLine(m, "dance")
	if !strings.Contains(m.View(), "'dance' is not a valid command") {
		t.Errorf("invalid command not reported: %q", m.View())
	}

	m, cmd := typeLine(m, "c")
	if cmd == nil {
		t.Error("clear returned no command")
	}
	if got := len(m.(promptModel).lines); got != 0 {
		t.Errorf("clear left %d lines", got)
	}
	if len(c.calls) != 0 {
		t.Errorf("local commands reached the server: %v", c.calls)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestPromptShowsTimeouts(t *testing.T) {
	c := &fakeCaller{
		responses: map[string]daemon.Response{"next": {Text: "next: timed out after 1000ms", Failed: true}},
		err:       daemon.ErrTimeout,
	}
	var m tea.Model = newPromptModel(c)
	m, cmd := typeLine(m, "next")
	m, _ = m.Update(cmd())
	if !strings.Contains(m.View(), "next: timed out after 1000ms") {
		t.Errorf("View() = %q", m.View())
	}
}
