package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/attackmap/internal/emoji"
	"github.com/yildizm/attackmap/internal/formatter"
	"github.com/yildizm/attackmap/internal/matcher"
	"github.com/yildizm/attackmap/internal/runner"
)

// Model is the interactive TUI for mapping behavior descriptions to
// techniques. Pressing Enter submits the current query; a submission
// while a match is still in flight replaces it.
type Model struct {
	runner *runner.Runner

	view View
	input textinput.Model
	spin  spinner.Model
	bar   progress.Model
	body  viewport.Model

	task    *runner.Task
	percent int
	history []string
	err     error

	width  int
	height int
	ready  bool

	quitting bool
	styles   *Styles
}

// NewModel creates the TUI model around a runner.
func NewModel(r *runner.Runner) *Model {
	styles := GetStyles()

	input := textinput.New()
	input.Placeholder = "Describe the attacker behavior..."
	input.CharLimit = 512
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Progress

	bar := progress.New(progress.WithDefaultGradient())

	return &Model{
		runner: r,
		view:   ViewQuery,
		input:  input,
		spin:   spin,
		bar:    bar,
		styles: styles,
	}
}

// Run starts the interactive TUI and blocks until the user quits.
func Run(ctx context.Context, r *runner.Runner) error {
	program := tea.NewProgram(NewModel(r), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and key presses
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case matchProgressMsg:
		return m.handleProgress(msg)
	case matchCompleteMsg:
		return m.handleComplete(msg)
	case matchErrorMsg:
		return m.handleError(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.input.Width = max(20, msg.Width-8)
	m.bar.Width = min(50, msg.Width-8)

	bodyHeight := max(3, msg.Height-9)
	if !m.ready {
		m.body = viewport.New(msg.Width-4, bodyHeight)
		m.ready = true
	} else {
		m.body.Width = msg.Width - 4
		m.body.Height = bodyHeight
	}
	if len(m.history) > 0 {
		m.body.SetContent(strings.Join(m.history, "\n"))
		m.body.GotoBottom()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		if m.view == ViewHelp {
			m.view = ViewQuery
			return m, nil
		}
		if m.task != nil {
			m.task.Cancel()
			return m, nil
		}
		return m.quit()
	case "ctrl+h":
		m.view = ViewHelp
		return m, nil
	case "enter":
		if m.view == ViewQuery {
			return m.submit()
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.body, cmd = m.body.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit starts a match for the current input. The runner cancels any
// request still in flight, so the task we track is always the latest.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	task, err := m.runner.Submit(context.Background(), m.input.Value())
	if err != nil {
		m.err = err
		return m, nil
	}

	m.task = task
	m.percent = 0
	m.err = nil

	return m, tea.Batch(m.spin.Tick, waitForProgress(task))
}

func (m *Model) handleProgress(msg matchProgressMsg) (tea.Model, tea.Cmd) {
	if msg.task != m.task {
		return m, nil
	}
	m.percent = msg.percent
	return m, waitForProgress(msg.task)
}

func (m *Model) handleComplete(msg matchCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.task != m.task {
		return m, nil
	}
	m.task = nil
	// Completed results accumulate in the scrollback; only the task in
	// flight can be superseded.
	m.history = append(m.history, m.renderResult(msg.result))
	if m.ready {
		m.body.SetContent(strings.Join(m.history, "\n"))
		m.body.GotoBottom()
	}
	return m, nil
}

func (m *Model) handleError(msg matchErrorMsg) (tea.Model, tea.Cmd) {
	if msg.task != m.task {
		return m, nil
	}
	m.task = nil
	if errors.Is(msg.err, runner.ErrSuperseded) {
		// The replacing task is already being tracked.
		return m, nil
	}
	m.err = msg.err
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.runner.Shutdown()
	return m, tea.Quit
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return m.styles.Success.Render("Goodbye! " + emoji.GetEmoji("success"))
	}

	if m.view == ViewHelp {
		return m.renderHelp()
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render(emoji.GetEmoji("shield") + " AttackMap"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Map attacker behavior to ATT&CK techniques"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Focused.Render(m.input.View()))
	b.WriteString("\n\n")

	switch {
	case m.task != nil:
		b.WriteString(fmt.Sprintf("%s %s\n%s\n",
			m.spin.View(),
			m.styles.Progress.Render(m.stageLabel()),
			m.bar.ViewAs(float64(m.percent)/100)))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(emoji.GetEmoji("error") + " " + m.err.Error()))
		b.WriteString("\n")
	case len(m.history) > 0 && m.ready:
		b.WriteString(m.body.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.styles.Muted.Render("Type a behavior description and press Enter."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Enter: match • Esc: cancel/quit • Ctrl+H: help • Ctrl+C: quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// stageLabel names the pipeline stage for the current milestone.
func (m *Model) stageLabel() string {
	switch {
	case m.percent >= matcher.ProgressCorpusLoaded:
		return "Ranking techniques..."
	case m.percent >= matcher.ProgressQueryEmbedded:
		return "Loading technique corpus..."
	default:
		return "Embedding query..."
	}
}

func (m *Model) renderResult(result *matcher.Result) string {
	f := formatter.NewTerminal(!IsColorDisabled())
	output, err := f.Format(result)
	if err != nil {
		return m.styles.Error.Render("failed to format result: " + err.Error())
	}
	return string(output)
}

func (m *Model) renderHelp() string {
	rows := []string{
		m.styles.Header.Render(emoji.GetEmoji("help") + " Help"),
		"",
		"Enter     submit the query; replaces a match in flight",
		"Esc       cancel the running match, or quit",
		"Ctrl+H    show this help",
		"Ctrl+C    quit",
		"↑/↓       scroll results",
		"",
		m.styles.Muted.Render("Press Esc to go back"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	box := m.styles.Box.Width(min(m.width-4, 60))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
