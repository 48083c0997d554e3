package views

import (
	"fmt"
	"maps"
	"strings"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const descriptionHeight = 6

// row is one plugin line of the step, in presentation order
type row struct {
	group  int
	plugin int
	typ    domain.PluginType
}

// Step is the wizard page for the current install step of a session
type Step struct {
	step     *domain.InstallStep
	index    int
	rows     []row
	headers  map[int]bool // Row indexes that start a new group
	selected map[core.Selection]bool
	cursor   int
	err      error
	desc     viewport.Model
	width    int
	height   int
}

// NewStep builds the page for the session's current step with the default
// selections preselected
func NewStep(s *core.Session) (Step, error) {
	step, ok := s.CurrentStep()
	if !ok {
		return Step{}, fmt.Errorf("%w: no step awaiting selections", domain.ErrInvalidSelection)
	}

	m := Step{
		step:     step,
		index:    s.StepIndex(),
		headers:  make(map[int]bool),
		selected: make(map[core.Selection]bool),
		desc:     viewport.New(80, descriptionHeight),
		width:    80,
		height:   24,
	}

	for _, g := range core.SortedGroups(step) {
		m.headers[len(m.rows)] = true
		for _, p := range core.SortedPlugins(&step.Groups[g]) {
			typ, err := s.PluginType(g, p)
			if err != nil {
				return Step{}, err
			}
			m.rows = append(m.rows, row{group: g, plugin: p, typ: typ})
		}
	}

	defaults, err := core.DefaultSelections(s)
	if err != nil {
		return Step{}, err
	}
	for _, sel := range defaults {
		m.selected[sel] = true
	}

	m.syncDescription()
	return m, nil
}

// Name returns the step name
func (m Step) Name() string {
	return m.step.Name
}

// Index returns the step's position in the script
func (m Step) Index() int {
	return m.index
}

// Cursor returns the index of the highlighted row
func (m Step) Cursor() int {
	return m.cursor
}

// PluginCount returns the number of plugin rows on the page
func (m Step) PluginCount() int {
	return len(m.rows)
}

// Current returns the highlighted plugin, or nil when the step has no plugins
func (m Step) Current() *domain.Plugin {
	if len(m.rows) == 0 {
		return nil
	}
	r := m.rows[m.cursor]
	return &m.step.Groups[r.group].Plugins[r.plugin]
}

// IsSelected reports whether a plugin is currently selected
func (m Step) IsSelected(group, plugin int) bool {
	return m.selected[core.Selection{Group: group, Plugin: plugin}]
}

// Err returns the last validation error shown on the page
func (m Step) Err() error {
	return m.err
}

// MoveUp moves the cursor to the previous plugin, wrapping around
func (m Step) MoveUp() Step {
	if len(m.rows) == 0 {
		return m
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(m.rows) - 1
	}
	m.syncDescription()
	return m
}

// MoveDown moves the cursor to the next plugin, wrapping around
func (m Step) MoveDown() Step {
	if len(m.rows) == 0 {
		return m
	}
	m.cursor++
	if m.cursor >= len(m.rows) {
		m.cursor = 0
	}
	m.syncDescription()
	return m
}

// Home moves the cursor to the first plugin
func (m Step) Home() Step {
	m.cursor = 0
	m.syncDescription()
	return m
}

// End moves the cursor to the last plugin
func (m Step) End() Step {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
	}
	m.syncDescription()
	return m
}

// Toggle flips the highlighted plugin following its group's rule: ExactlyOne and
// AtMostOne behave like radio buttons, SelectAll plugins stay selected, and
// NotUsable or Required plugins cannot be changed.
func (m Step) Toggle() Step {
	if len(m.rows) == 0 {
		return m
	}
	r := m.rows[m.cursor]
	group := &m.step.Groups[r.group]
	key := core.Selection{Group: r.group, Plugin: r.plugin}
	m.err = nil

	if r.typ == domain.PluginNotUsable || r.typ == domain.PluginRequired || group.Type == domain.SelectAll {
		return m
	}

	selected := maps.Clone(m.selected)
	switch group.Type {
	case domain.SelectExactlyOne, domain.SelectAtMostOne:
		if selected[key] {
			if group.Type == domain.SelectAtMostOne {
				delete(selected, key)
			}
			break
		}
		for p := range group.Plugins {
			delete(selected, core.Selection{Group: r.group, Plugin: p})
		}
		selected[key] = true
	default:
		if selected[key] {
			delete(selected, key)
		} else {
			selected[key] = true
		}
	}
	m.selected = selected
	return m
}

// Confirm validates the selections against every group's rule and returns them
// in document order. On failure the error is kept for display.
func (m Step) Confirm() (Step, []core.Selection, error) {
	var selections []core.Selection
	for g := range m.step.Groups {
		for p := range m.step.Groups[g].Plugins {
			if m.IsSelected(g, p) {
				selections = append(selections, core.Selection{Group: g, Plugin: p})
			}
		}
	}

	types := make(map[core.Selection]domain.PluginType, len(m.rows))
	for _, r := range m.rows {
		types[core.Selection{Group: r.group, Plugin: r.plugin}] = r.typ
	}
	typeOf := func(g, p int) domain.PluginType {
		return types[core.Selection{Group: g, Plugin: p}]
	}

	if err := core.ValidateStepSelection(m.step, selections, typeOf); err != nil {
		m.err = err
		return m, nil, err
	}
	m.err = nil
	return m, selections, nil
}

// Init implements tea.Model
func (m Step) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Navigation keys are interpreted by the wizard,
// which calls the movement methods; the description pane scrolls on its own.
func (m Step) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.desc.Width = msg.Width
	}

	var cmd tea.Cmd
	m.desc, cmd = m.desc.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Step) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	groupStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252"))

	ruleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.step.Name) + "\n")

	if len(m.rows) == 0 {
		b.WriteString(itemStyle.Render("Nothing to choose on this page.") + "\n")
	}

	for i, r := range m.rows {
		group := &m.step.Groups[r.group]
		if m.headers[i] {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(groupStyle.Render(group.Name) + " " + ruleStyle.Render("("+groupRule(group.Type)+")") + "\n")
		}

		cursor := "  "
		style := itemStyle
		switch {
		case i == m.cursor:
			cursor = "▸ "
			style = selectedStyle
		case r.typ == domain.PluginNotUsable:
			style = disabledStyle
		}

		line := fmt.Sprintf("%s%s %s", cursor, checkbox(group.Type, m.IsSelected(r.group, r.plugin)), group.Plugins[r.plugin].Name)
		if marker := typeMarker(r.typ); marker != "" {
			line += " " + marker
		}
		b.WriteString(style.Render(line) + "\n")
	}

	if len(m.rows) > 0 {
		b.WriteString("\n" + m.desc.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}

	return b.String()
}

func (m *Step) syncDescription() {
	plugin := m.Current()
	if plugin == nil {
		m.desc.SetContent("")
		return
	}

	text := strings.TrimSpace(plugin.Description)
	if text == "" {
		text = "No description."
	}
	if plugin.Image != "" {
		text += "\n\nImage: " + plugin.Image
	}
	m.desc.SetContent(lipgloss.NewStyle().Width(m.desc.Width).Render(text))
	m.desc.GotoTop()
}

func checkbox(t domain.GroupType, on bool) string {
	radio := t == domain.SelectExactlyOne || t == domain.SelectAtMostOne
	switch {
	case radio && on:
		return "(•)"
	case radio:
		return "( )"
	case on:
		return "[x]"
	default:
		return "[ ]"
	}
}

func groupRule(t domain.GroupType) string {
	switch t {
	case domain.SelectAtLeastOne:
		return "choose at least one"
	case domain.SelectAtMostOne:
		return "choose at most one"
	case domain.SelectExactlyOne:
		return "choose one"
	case domain.SelectAll:
		return "all required"
	default:
		return "choose any"
	}
}

func typeMarker(t domain.PluginType) string {
	switch t {
	case domain.PluginRequired:
		return "(required)"
	case domain.PluginRecommended:
		return "(recommended)"
	case domain.PluginNotUsable:
		return "(not usable)"
	case domain.PluginCouldBeUsable:
		return "(could be usable)"
	default:
		return ""
	}
}
