package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/fomod/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameCmd_Structure(t *testing.T) {
	assert.Equal(t, "game", gameCmd.Use)
	assert.NotEmpty(t, gameCmd.Long)

	names := make([]string, 0, len(gameCmd.Commands()))
	for _, c := range gameCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "remove", "list", "set-default", "clear-default"}, names)

	for _, name := range []string{"name", "version", "mod-path", "default"} {
		assert.NotNil(t, gameAddCmd.Flags().Lookup(name), name)
	}
}

func TestGameCmd_AddWritesGamesFile(t *testing.T) {
	resetGlobals(t)

	out, err := runCLI(t, "game", "add", "skyrim-se", "--name", "Skyrim Special Edition", "--version", "1.6.1170", "--default")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved game Skyrim Special Edition (skyrim-se)")
	assert.Contains(t, out, "Default game set to: skyrim-se")

	games, err := config.LoadGames(configDir)
	require.NoError(t, err)
	require.Contains(t, games, "skyrim-se")
	assert.Equal(t, "1.6.1170", games["skyrim-se"].Version)

	cfg, err := config.Load(configDir)
	require.NoError(t, err)
	assert.Equal(t, "skyrim-se", cfg.DefaultGame)
}

func TestGameCmd_ListJSON(t *testing.T) {
	resetGlobals(t)

	_, err := runCLI(t, "game", "add", "oblivion")
	require.NoError(t, err)
	_, err = runCLI(t, "game", "add", "fallout4", "--name", "Fallout 4", "--default")
	require.NoError(t, err)

	out, err := runCLI(t, "game", "list", "--json")
	require.NoError(t, err)

	var games []gameJSON
	require.NoError(t, json.Unmarshal([]byte(out), &games))
	require.Len(t, games, 2)
	assert.Equal(t, gameJSON{ID: "fallout4", Name: "Fallout 4", Default: true}, games[0])
	assert.Equal(t, gameJSON{ID: "oblivion", Name: "oblivion"}, games[1])
}

func TestGameCmd_ListEmpty(t *testing.T) {
	resetGlobals(t)

	out, err := runCLI(t, "game", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No games configured")
}

func TestGameCmd_RemoveClearsDefault(t *testing.T) {
	resetGlobals(t)

	_, err := runCLI(t, "game", "add", "skyrim-se", "--default")
	require.NoError(t, err)

	out, err := runCLI(t, "game", "remove", "skyrim-se")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed game skyrim-se")

	cfg, err := config.Load(configDir)
	require.NoError(t, err)
	assert.Empty(t, cfg.DefaultGame)

	_, err = runCLI(t, "game", "remove", "skyrim-se")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game not found: skyrim-se")
}

func TestGameCmd_SetAndClearDefault(t *testing.T) {
	resetGlobals(t)
	writeGames(t)

	_, err := runCLI(t, "game", "set-default", "morrowind")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game not found: morrowind")

	out, err := runCLI(t, "game", "set-default", "skyrim-se")
	require.NoError(t, err)
	assert.Contains(t, out, "Default game set to: Skyrim Special Edition (skyrim-se)")

	// The default game now scopes index commands without --game
	_, err = runCLI(t, "index", "add", "ussep", "Unofficial Patch.esp")
	require.NoError(t, err)

	out, err = runCLI(t, "game", "clear-default")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared default game (was: skyrim-se)")

	out, err = runCLI(t, "game", "clear-default")
	require.NoError(t, err)
	assert.Contains(t, out, "No default game was set")
}

func TestGameCmd_SetDefaultWithConfigFile(t *testing.T) {
	resetGlobals(t)
	writeGames(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keybindings: standard\n"), 0644))
	configFile = path

	_, err := runCLI(t, "game", "set-default", "skyrim-se")
	require.NoError(t, err)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "skyrim-se", cfg.DefaultGame)
	assert.Equal(t, "standard", cfg.Keybindings)
	assert.NoFileExists(t, filepath.Join(configDir, "config.yaml"))
}

func TestPlanCmd_GameVersionFromGamesFile(t *testing.T) {
	resetGlobals(t)
	mod := writeMod(t, `<config>
  <moduleName>Versioned</moduleName>
  <conditionalFileInstalls>
    <patterns>
      <pattern>
        <dependencies><gameDependency version="1.6.0"/></dependencies>
        <files><file source="ae.esp"/></files>
      </pattern>
    </patterns>
  </conditionalFileInstalls>
</config>`)

	_, err := runCLI(t, "game", "add", "old", "--version", "1.5.97")
	require.NoError(t, err)
	_, err = runCLI(t, "game", "add", "new", "--version", "1.6.1170")
	require.NoError(t, err)

	out, err := runCLI(t, "plan", mod, "--json", "-g", "old")
	require.NoError(t, err)
	assert.Empty(t, planSources(decodePlan(t, out)))

	out, err = runCLI(t, "plan", mod, "--json", "-g", "new")
	require.NoError(t, err)
	assert.Equal(t, []string{"ae.esp"}, planSources(decodePlan(t, out)))
}
