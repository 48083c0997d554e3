package tui

import (
	"errors"
	"fmt"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned by Run when the user quits before the plan is accepted
var ErrCancelled = errors.New("installation cancelled")

// App is the install wizard model. It drives one session step by step and shows
// the install plan once the session finishes.
type App struct {
	session   *core.Session
	keys      *KeyMap
	step      views.Step
	plan      *views.Plan
	err       error
	cancelled bool
	accepted  bool
	showHelp  bool
	width     int
	height    int
}

// NewApp starts the session if needed and opens the first visible step
func NewApp(session *core.Session, keys *KeyMap) (App, error) {
	if keys == nil {
		keys = NewKeyMap("")
	}
	a := App{
		session: session,
		keys:    keys,
		width:   80,
		height:  24,
	}

	if session.State() == core.SessionNotStarted {
		if err := session.Start(); err != nil {
			return a, err
		}
	}
	if err := a.refresh(); err != nil {
		return a, err
	}
	return a, nil
}

// Step returns the page for the current step
func (a App) Step() views.Step {
	return a.step
}

// Finished reports whether the session has produced a plan
func (a App) Finished() bool {
	return a.plan != nil
}

// Cancelled reports whether the user quit the wizard
func (a App) Cancelled() bool {
	return a.cancelled
}

// Accepted reports whether the user accepted the final plan
func (a App) Accepted() bool {
	return a.accepted
}

// Plan returns the compiled plan, nil until the session finishes
func (a App) Plan() []domain.FileEntry {
	if a.plan == nil {
		return nil
	}
	return a.plan.Files()
}

// Err returns the last session error
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keys.IsHelp(msg) {
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.plan != nil {
		switch {
		case a.keys.IsNext(msg):
			a.accepted = true
			return a, tea.Quit
		case a.keys.IsBack(msg):
			return a.back()
		case a.keys.IsQuit(msg):
			a.cancelled = true
			return a, tea.Quit
		}
		return a.updateCurrentView(msg)
	}

	switch {
	case a.keys.IsQuit(msg):
		a.cancelled = true
		return a, tea.Quit
	case a.keys.IsUp(msg):
		a.step = a.step.MoveUp()
	case a.keys.IsDown(msg):
		a.step = a.step.MoveDown()
	case a.keys.IsHome(msg):
		a.step = a.step.Home()
	case a.keys.IsEnd(msg):
		a.step = a.step.End()
	case a.keys.IsToggle(msg):
		a.step = a.step.Toggle()
	case a.keys.IsNext(msg):
		return a.next()
	case a.keys.IsBack(msg):
		return a.back()
	default:
		return a.updateCurrentView(msg)
	}
	return a, nil
}

func (a App) next() (tea.Model, tea.Cmd) {
	step, selections, err := a.step.Confirm()
	a.step = step
	if err != nil {
		return a, nil
	}

	if err := a.session.Advance(selections); err != nil {
		a.err = err
		return a, nil
	}
	if err := a.refresh(); err != nil {
		// Undo the advance so the page on screen matches the session again
		a.err = err
		if backErr := a.session.Back(); backErr != nil {
			a.err = errors.Join(err, backErr)
		}
		return a, nil
	}
	a.err = nil
	return a, nil
}

func (a App) back() (tea.Model, tea.Cmd) {
	if !a.session.CanGoBack() {
		return a, nil
	}
	if err := a.session.Back(); err != nil {
		a.err = err
		return a, nil
	}
	a.err = a.refresh()
	return a, nil
}

// refresh rebuilds the page for the session's current position
func (a *App) refresh() error {
	a.plan = nil
	if a.session.State() == core.SessionFinished {
		files, err := a.session.InstallPlan()
		if err != nil {
			return err
		}
		plan := views.NewPlan(a.session.Script().ModName.Name, files)
		a.plan = &plan
		a.resize()
		return nil
	}

	step, err := views.NewStep(a.session)
	if err != nil {
		return err
	}
	a.step = step
	a.resize()
	return nil
}

func (a *App) resize() {
	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	if a.plan != nil {
		m, _ := a.plan.Update(size)
		plan := m.(views.Plan)
		a.plan = &plan
		return
	}
	m, _ := a.step.Update(size)
	a.step = m.(views.Step)
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var m tea.Model

	if a.plan != nil {
		m, cmd = a.plan.Update(msg)
		plan := m.(views.Plan)
		a.plan = &plan
		return a, cmd
	}

	m, cmd = a.step.Update(msg)
	a.step = m.(views.Step)
	return a, cmd
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	script := a.session.Script()
	header := titleStyle.Render(script.ModName.Name)

	progress := ""
	if a.plan == nil {
		progress = progressStyle.Render(fmt.Sprintf("Step %d of %d", a.step.Index()+1, len(script.InstallSteps)))
	}

	content := ""
	switch {
	case a.showHelp:
		content = a.keys.FullHelp()
	case a.plan != nil:
		content = a.plan.View()
	default:
		content = a.step.View()
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content += "\n" + errStyle.Render(fmt.Sprintf("Error: %v", a.err))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	help := a.keys.NavigationHelp()
	if a.plan != nil {
		help = "enter: install  b: back  q: quit"
	}
	footer := footerStyle.Render(help)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, progress, content, footer)
}

// Run shows the wizard for a session and returns the accepted install plan.
// Quitting before accepting returns ErrCancelled.
func Run(session *core.Session, keys *KeyMap) ([]domain.FileEntry, error) {
	app, err := NewApp(session, keys)
	if err != nil {
		return nil, err
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := final.(App)
	if result.err != nil {
		return nil, result.err
	}
	if result.cancelled || !result.accepted {
		return nil, ErrCancelled
	}
	return result.Plan(), nil
}
