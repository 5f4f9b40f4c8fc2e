package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/b/mediapanel/pkg/daemon"
)

// statusCommand is answered by the client itself from get_info.
const statusCommand = "status"

var failedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d70000", Dark: "#ff5f5f"})

// caller is the part of daemon.Client the client modes use.
type caller interface {
	Call(command string) (daemon.Response, error)
}

func runClient(opts options, args []string, stdout, stderr io.Writer) error {
	if !isTerminal(os.Stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	client, err := daemon.Dial(opts.endpoint(), opts.timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	if len(args) > 0 {
		return runOnce(client, daemon.NormalizeCommand(args[0]), opts.width, stdout, stderr)
	}
	if isTerminal(os.Stdin) {
		_, err := tea.NewProgram(newPromptModel(client)).Run()
		return err
	}
	return runScript(client, os.Stdin, stdout, stderr)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runOnce sends a single command, printing failures to stderr.
func runOnce(c caller, command string, width int, stdout, stderr io.Writer) error {
	if command == statusCommand {
		resp, err := c.Call(daemon.CmdGetInfo)
		if err != nil && !resp.Failed {
			return err
		}
		info, perr := daemon.ParseInfo(resp.Text)
		if resp.Failed || perr != nil {
			// Not running or unreachable: an empty line keeps the bar tidy.
			info = daemon.Info{}
		}
		fmt.Fprintln(stdout, statusLine(info, width))
		return nil
	}

	if !daemon.IsCommand(command) {
		fmt.Fprintln(stderr, failedStyle.Render(fmt.Sprintf("'%s' is not a valid command", command)))
		return exitError(2)
	}

	resp, err := c.Call(command)
	if err != nil && !resp.Failed {
		return err
	}
	if resp.Failed {
		fmt.Fprintln(stderr, failedStyle.Render(resp.Text))
		return exitError(1)
	}
	if resp.Text != "" {
		fmt.Fprintln(stdout, resp.Text)
	}
	return nil
}

// runScript sends one command per input line, for piped use.
func runScript(c caller, in io.Reader, stdout, stderr io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		command := daemon.NormalizeCommand(scanner.Text())
		if command == "" {
			continue
		}
		if err := runOnce(c, command, 0, stdout, stderr); err != nil {
			if _, ok := err.(exitError); !ok {
				return err
			}
		}
	}
	return scanner.Err()
}
