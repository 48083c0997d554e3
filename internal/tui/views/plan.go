package views

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Plan shows the compiled install plan at the end of the wizard
type Plan struct {
	modName string
	files   []domain.FileEntry
	list    viewport.Model
	width   int
	height  int
}

// NewPlan creates a new plan view
func NewPlan(modName string, files []domain.FileEntry) Plan {
	m := Plan{
		modName: modName,
		files:   files,
		list:    viewport.New(80, 16),
		width:   80,
		height:  24,
	}
	m.list.SetContent(renderPlan(files))
	return m
}

// FileCount returns the number of plan entries
func (m Plan) FileCount() int {
	return len(m.files)
}

// Files returns the plan entries
func (m Plan) Files() []domain.FileEntry {
	return m.files
}

// Init implements tea.Model
func (m Plan) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Plan) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width
		if h := msg.Height - 8; h > 0 {
			m.list.Height = h
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Plan) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	output := titleStyle.Render("Install Plan") + "\n"
	output += infoStyle.Render(fmt.Sprintf("%s: %d entries", m.modName, len(m.files))) + "\n\n"

	if len(m.files) == 0 {
		return output + "  Nothing will be installed.\n"
	}
	return output + m.list.View() + "\n"
}

func renderPlan(files []domain.FileEntry) string {
	var b strings.Builder
	for _, f := range files {
		arrow := f.Source
		if f.Destination != f.Source {
			arrow = fmt.Sprintf("%s -> %s", f.Source, f.Destination)
		}
		fmt.Fprintf(&b, "  [%3d] %-6s %s\n", f.Priority, f.Kind, arrow)
	}
	return b.String()
}
