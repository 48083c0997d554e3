package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the wizard
type KeyMap struct {
	mode string
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	return &KeyMap{mode: mode}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyUp {
		return true
	}
	return k.mode == "vim" && msg.String() == "k"
}

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyDown {
		return true
	}
	return k.mode == "vim" && msg.String() == "j"
}

// IsHome returns true if the key should go to the first plugin
func (k *KeyMap) IsHome(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyHome {
		return true
	}
	return k.mode == "vim" && msg.String() == "g"
}

// IsEnd returns true if the key should go to the last plugin
func (k *KeyMap) IsEnd(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEnd {
		return true
	}
	return k.mode == "vim" && msg.String() == "G"
}

// IsToggle returns true if the key toggles the highlighted plugin
func (k *KeyMap) IsToggle(msg tea.KeyMsg) bool {
	return msg.String() == " " || msg.Type == tea.KeySpace
}

// IsNext returns true if the key confirms the step and moves on
func (k *KeyMap) IsNext(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.String() == "n"
}

// IsBack returns true if the key returns to the previous step
func (k *KeyMap) IsBack(msg tea.KeyMsg) bool {
	return msg.String() == "b"
}

// IsQuit returns true if the key abandons the wizard
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc
}

// IsHelp returns true if the key should show help
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool {
	return msg.String() == "?"
}

// NavigationHelp returns help text for the footer
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  space: toggle  n/enter: next  b: back  q: quit  ?: help"
	}
	return "↑/↓: navigate  space: toggle  enter: next  b: back  q: quit  ?: help"
}

// FullHelp returns complete help text
func (k *KeyMap) FullHelp() string {
	if k.mode == "vim" {
		return `Navigation:
  j/k     Move down/up
  g/G     Go to first/last plugin

Actions:
  space   Toggle plugin
  n/enter Confirm step
  b       Previous step
  ?       Help
  q       Quit without installing`
	}

	return `Navigation:
  ↑/↓     Move up/down
  Home    Go to first plugin
  End     Go to last plugin

Actions:
  Space   Toggle plugin
  Enter   Confirm step
  b       Previous step
  ?       Help
  q       Quit without installing`
}
