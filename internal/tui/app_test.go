package tui_test

import (
	"errors"
	"testing"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plugin(name, source string, typ domain.PluginType, flags ...domain.Flag) domain.Plugin {
	return domain.Plugin{
		Name:           name,
		Description:    name + " description",
		Files:          []domain.FileEntry{{Source: source, Destination: source}},
		ConditionFlags: flags,
		TypeDescriptor: domain.PluginTypeDescriptor{Fixed: typ},
	}
}

// wizardScript has a radio step that picks a texture size and a second step
// shown only for the high resolution option
func wizardScript() *domain.Fomod {
	return &domain.Fomod{
		ModName:       domain.ModName{Name: "Texture Pack"},
		RequiredFiles: []domain.FileEntry{{Source: "core.esp", Destination: "core.esp"}},
		InstallSteps: []domain.InstallStep{
			{
				Name: "Resolution",
				Groups: []domain.Group{{
					Name:  "Size",
					Type:  domain.SelectExactlyOne,
					Order: domain.OrderExplicit,
					Plugins: []domain.Plugin{
						plugin("1K", "1k", domain.PluginOptional, domain.Flag{Name: "res", Value: "1k"}),
						plugin("4K", "4k", domain.PluginOptional, domain.Flag{Name: "res", Value: "4k"}),
					},
				}},
			},
			{
				Name: "High Resolution Extras",
				Visible: &domain.Dependencies{
					Flags: []domain.FlagDependency{{Flag: "res", Value: "4k"}},
				},
				Groups: []domain.Group{{
					Name:    "Extras",
					Type:    domain.SelectAny,
					Plugins: []domain.Plugin{plugin("Parallax", "parallax", domain.PluginOptional)},
				}},
			},
		},
	}
}

func newApp(t *testing.T) tui.App {
	t.Helper()
	app, err := tui.NewApp(core.NewSession(wizardScript(), &core.StaticFacts{}), tui.NewKeyMap("vim"))
	require.NoError(t, err)
	return app
}

func press(t *testing.T, app tui.App, msgs ...tea.KeyMsg) (tui.App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = app.Update(msg)
		app = m.(tui.App)
	}
	return app, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

var (
	keyNext   = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown   = runeKey('j')
	keyToggle = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyBack   = runeKey('b')
	keyQuit   = runeKey('q')
)

func TestNewApp_InitialState(t *testing.T) {
	app := newApp(t)

	assert.False(t, app.Finished())
	assert.Equal(t, "Resolution", app.Step().Name())
	assert.Contains(t, app.View(), "Texture Pack")
	assert.Contains(t, app.View(), "Step 1 of 2")
}

func TestApp_DefaultRouteSkipsHiddenStep(t *testing.T) {
	app := newApp(t)

	// 1K is preselected as the first usable plugin of an ExactlyOne group
	app, _ = press(t, app, keyNext)
	require.True(t, app.Finished())
	assert.Equal(t, []string{"1k", "core.esp"}, planSources(app.Plan()))
	assert.Contains(t, app.View(), "Install Plan")

	app, cmd := press(t, app, keyNext)
	assert.True(t, isQuit(cmd))
	assert.True(t, app.Accepted())
	assert.False(t, app.Cancelled())
}

func TestApp_RadioToggleShowsExtrasStep(t *testing.T) {
	app := newApp(t)

	app, _ = press(t, app, keyDown, keyToggle)
	assert.True(t, app.Step().IsSelected(0, 1))
	assert.False(t, app.Step().IsSelected(0, 0))

	app, _ = press(t, app, keyNext)
	require.False(t, app.Finished())
	assert.Equal(t, "High Resolution Extras", app.Step().Name())

	app, _ = press(t, app, keyToggle, keyNext)
	require.True(t, app.Finished())
	assert.Equal(t, []string{"4k", "core.esp", "parallax"}, planSources(app.Plan()))
}

func TestApp_BackReturnsToPreviousStep(t *testing.T) {
	app := newApp(t)

	app, _ = press(t, app, keyDown, keyToggle, keyNext)
	assert.Equal(t, "High Resolution Extras", app.Step().Name())

	app, _ = press(t, app, keyBack)
	assert.Equal(t, "Resolution", app.Step().Name())

	// Back on the first step is a no-op
	app, _ = press(t, app, keyBack)
	assert.Equal(t, "Resolution", app.Step().Name())
	assert.NoError(t, app.Err())
}

func TestApp_QuitCancels(t *testing.T) {
	app := newApp(t)

	app, cmd := press(t, app, keyQuit)
	assert.True(t, isQuit(cmd))
	assert.True(t, app.Cancelled())
	assert.Nil(t, app.Plan())
}

func TestApp_HelpToggle(t *testing.T) {
	app := newApp(t)

	app, _ = press(t, app, runeKey('?'))
	assert.Contains(t, app.View(), "Quit without installing")

	app, _ = press(t, app, runeKey('?'))
	assert.NotContains(t, app.View(), "Quit without installing")
}

func TestNewApp_ModuleDependenciesFail(t *testing.T) {
	script := wizardScript()
	script.ModuleDependencies = &domain.Dependencies{
		Files: []domain.FileDependency{{File: "TexturePackBase.esp", State: domain.FileActive}},
	}

	_, err := tui.NewApp(core.NewSession(script, &core.StaticFacts{}), nil)
	assert.ErrorIs(t, err, domain.ErrModuleDependencies)
}

var errIndexOffline = errors.New("mod index offline")

// offlineFacts fails every file lookup
type offlineFacts struct {
	core.StaticFacts
}

func (offlineFacts) CheckFile(string, domain.FileState) (bool, error) {
	return false, errIndexOffline
}

func TestApp_PlanFailureStaysOnStep(t *testing.T) {
	script := wizardScript()
	script.ConditionalFileInstalls = []domain.Pattern{{
		Dependencies: domain.Dependencies{
			Files: []domain.FileDependency{{File: "Base.esp", State: domain.FileActive}},
		},
		Files: []domain.FileEntry{{Source: "patch.esp", Destination: "patch.esp"}},
	}}

	app, err := tui.NewApp(core.NewSession(script, &offlineFacts{}), tui.NewKeyMap("vim"))
	require.NoError(t, err)

	app, _ = press(t, app, keyNext)
	assert.ErrorIs(t, app.Err(), errIndexOffline)
	assert.False(t, app.Finished())
	assert.Equal(t, "Resolution", app.Step().Name())
	assert.Contains(t, app.View(), "mod index offline")

	// Retrying reports the same failure, not a stale session state
	app, _ = press(t, app, keyNext)
	assert.ErrorIs(t, app.Err(), errIndexOffline)
	assert.NotErrorIs(t, app.Err(), domain.ErrInvalidSelection)
	assert.Equal(t, "Resolution", app.Step().Name())
}

func planSources(files []domain.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Source
	}
	return out
}
