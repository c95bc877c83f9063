// Package tui provides the interactive log viewer behind `blackbox logs -i`.
// It is a single bubbletea model wrapping a viewport over the captured log,
// with incremental search and top/bottom navigation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/triagehq/blackbox/internal/util"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle     = lipgloss.NewStyle().Reverse(true)
	errorLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the log viewer state. Create it with New and hand it to
// tea.NewProgram.
type Model struct {
	title    string
	lines    []string
	viewport viewport.Model
	ready    bool

	searching bool
	query     string
	matches   int
}

// New creates a viewer over the given log content.
func New(title, content string) Model {
	return Model{
		title: title,
		lines: strings.Split(strings.TrimRight(content, "\n"), "\n"),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.query = ""
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateSearch handles key input while the search prompt is active.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.query = ""
		m.matches = 0
	case "enter":
		m.searching = false
	case "backspace":
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.query += string(msg.Runes)
		}
	}
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m, nil
}

// renderContent styles the log lines, highlighting search matches and
// tinting ERROR entries.
func (m *Model) renderContent() string {
	m.matches = 0
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	rendered := make([]string, len(m.lines))
	for i, line := range m.lines {
		out := line
		if m.query != "" && strings.Contains(line, m.query) {
			m.matches++
			out = strings.ReplaceAll(out, m.query, matchStyle.Render(m.query))
		} else if strings.Contains(line, "| ERROR:") {
			out = errorLineStyle.Render(out)
		}
		rendered[i] = util.TruncateWidth(out, width)
	}
	return strings.Join(rendered, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

func (m Model) headerView() string {
	return headerStyle.Render(fmt.Sprintf("%s — %d lines", m.title, len(m.lines)))
}

func (m Model) footerView() string {
	if m.searching {
		return footerStyle.Render("/" + m.query)
	}
	if m.query != "" {
		return footerStyle.Render(fmt.Sprintf("%d matches for %q · / search · g/G top/bottom · q quit", m.matches, m.query))
	}
	return footerStyle.Render("/ search · g/G top/bottom · q quit")
}
