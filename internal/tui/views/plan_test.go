package views_test

import (
	"testing"

	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestPlan_View(t *testing.T) {
	files := []domain.FileEntry{
		{Kind: domain.KindFile, Source: "core.esp", Destination: "core.esp"},
		{Kind: domain.KindFolder, Source: "textures/4k", Destination: "textures", Priority: 2},
	}
	plan := views.NewPlan("Texture Pack", files)

	assert.Equal(t, 2, plan.FileCount())
	assert.Equal(t, files, plan.Files())

	view := plan.View()
	assert.Contains(t, view, "Texture Pack: 2 entries")
	assert.Contains(t, view, "core.esp")
	assert.Contains(t, view, "textures/4k -> textures")
	assert.Contains(t, view, "folder")
}

func TestPlan_Empty(t *testing.T) {
	plan := views.NewPlan("Nothing", nil)
	assert.Contains(t, plan.View(), "Nothing will be installed")
}

func TestPlan_Resize(t *testing.T) {
	plan := views.NewPlan("Pack", []domain.FileEntry{{Source: "a", Destination: "a"}})

	m, _ := plan.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	updated := m.(views.Plan)
	assert.Equal(t, 1, updated.FileCount())
	assert.Contains(t, updated.View(), "a")
}
