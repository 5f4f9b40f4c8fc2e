package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/b/mediapanel/pkg/daemon"
)

const promptText = " : "

type outputLine struct {
	text   string
	failed bool
}

// responseMsg carries a server answer back into the update loop.
type responseMsg struct {
	resp daemon.Response
	err  error
}

// promptModel is the interactive client: it reads command names,
// answers help and clear locally and forwards the rest.
type promptModel struct {
	input  textinput.Model
	client caller
	lines  []outputLine
	busy   bool
}

func newPromptModel(c caller) promptModel {
	input := textinput.New()
	input.Prompt = promptText
	input.Placeholder = "help"
	input.Focus()
	return promptModel{input: input, client: c}
}

// Init implements tea.Model
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			command := daemon.NormalizeCommand(m.input.Value())
			m.input.Reset()
			return m.submit(command)
		}

	case responseMsg:
		m.busy = false
		switch {
		case msg.resp.Failed:
			m.lines = append(m.lines, outputLine{text: msg.resp.Text, failed: true})
		case msg.err != nil:
			m.lines = append(m.lines, outputLine{text: msg.err.Error(), failed: true})
		case msg.resp.Text != "":
			m.lines = append(m.lines, outputLine{text: msg.resp.Text})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) submit(command string) (tea.Model, tea.Cmd) {
	switch {
	case command == "":
		return m, nil
	case command == "clear" || command == "c":
		m.lines = nil
		return m, tea.ClearScreen
	case command == daemon.CmdHelp:
		m.lines = append(m.lines, outputLine{text: daemon.HelpText() + "\n - clear"})
		return m, nil
	case !daemon.IsCommand(command):
		m.lines = append(m.lines, outputLine{text: fmt.Sprintf("'%s' is not a valid command", command), failed: true})
		return m, nil
	}

	m.busy = true
	c := m.client
	return m, func() tea.Msg {
		resp, err := c.Call(command)
		return responseMsg{resp: resp, err: err}
	}
}

// View implements tea.Model
func (m promptModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		if line.failed {
			b.WriteString(failedStyle.Render(line.text))
		} else {
			b.WriteString(line.text)
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	return b.String()
}
