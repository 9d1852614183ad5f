package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	callStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type field struct {
	label string
	def   string
}

// fields are the knobs of one probe, in input order.
var fields = []field{
	{label: "guest buffer length", def: "16"},
	{label: "host writes bytes", def: "40"},
	{label: "host returns", def: "40"},
	{label: "host address length", def: "16"},
}

type modelState int

const (
	stateSelectCall modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	report   *probeReport
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type probeResultMsg struct {
	err    error
	report probeReport
}

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{state: stateSelectCall}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectCall && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectCall && m.selected < len(probeCalls)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectCall:
				m.prepareInputs()
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				return m, m.runProbe

			case stateShowResult:
				m.reset()
			}

		case "tab", "shift+tab":
			if m.state == stateInputArgs {
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelectCall {
				m.reset()
			}
		}

	case probeResultMsg:
		m.err = msg.err
		m.report = &msg.report
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectCall
	m.inputs = nil
	m.report = nil
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.def
		ti.Prompt = fmt.Sprintf("%-20s ", f.label+":")
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) value(i int) (int64, error) {
	s := strings.TrimSpace(m.inputs[i].Value())
	if s == "" {
		s = fields[i].def
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fields[i].label, err)
	}
	return v, nil
}

func (m *interactiveModel) runProbe() tea.Msg {
	var vals [4]int64
	for i := range vals {
		v, err := m.value(i)
		if err != nil {
			return probeResultMsg{err: err}
		}
		vals[i] = v
	}
	if vals[0] < 0 || vals[0] > probeBlockSize {
		return probeResultMsg{err: fmt.Errorf("buffer length must be in [0, %d]", probeBlockSize)}
	}

	p := probe{
		call:    probeCalls[m.selected],
		bufLen:  int(vals[0]),
		fill:    int(max(vals[1], 0)),
		ret:     vals[2],
		addrLen: uint32(vals[3]),
	}
	rep, err := runProbe(context.Background(), p)
	return probeResultMsg{report: rep, err: err}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostcall inspector"))
	b.WriteString(" adversarial host\n\n")

	call := probeCalls[m.selected].num.String()

	switch m.state {
	case stateSelectCall:
		b.WriteString("Select a call:\n\n")
		for i, c := range probeCalls {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + c.num.String()))
			} else {
				b.WriteString("  " + callStyle.Render(c.num.String()))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter script host • q quit"))

	case stateInputArgs:
		b.WriteString(fmt.Sprintf("Scripting the host for %s\n\n", callStyle.Render(call)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", callStyle.Render(call)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			m.renderReport(&b)
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) renderReport(b *strings.Builder) {
	rep := m.report
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	words := make([]string, len(rep.argv))
	for i, w := range rep.argv {
		words[i] = strconv.FormatUint(w, 10)
	}
	row("argv", strings.Join(words, " "))

	outcome := string(rep.res.Outcome())
	switch {
	case !rep.res.Present:
		row("outcome", warnStyle.Render(outcome))
		row("reason", warnStyle.Render(fmt.Sprint(rep.res.DiscardReason())))
	case rep.res.Err != nil:
		row("outcome", errorStyle.Render(outcome))
		row("errno", errorStyle.Render(rep.res.Err.Error()))
	default:
		row("outcome", resultStyle.Render(outcome))
		row("value", resultStyle.Render(strconv.FormatInt(rep.res.Value, 10)))
	}
	if rep.buf != nil {
		row("buffer", fmt.Sprintf("% x", rep.buf))
	}
	row("address", fmt.Sprintf("% x (len %d)", rep.addr, rep.addrLen))
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
