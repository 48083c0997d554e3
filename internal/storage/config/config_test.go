package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/storage/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "vim", cfg.Keybindings)
	assert.Empty(t, cfg.DefaultGame)
	assert.Empty(t, cfg.InstallerVersion)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
default_game: skyrim-se
profile: survival
log_level: debug
keybindings: standard
installer_version: 0.14.0
database_path: /var/lib/fomod/index.db
fact_cache_size: 64
`
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "skyrim-se", cfg.DefaultGame)
	assert.Equal(t, "survival", cfg.Profile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "standard", cfg.Keybindings)
	assert.Equal(t, "0.14.0", cfg.InstallerVersion)
	assert.Equal(t, "/var/lib/fomod/index.db", cfg.DatabasePath)
	assert.Equal(t, 64, cfg.FactCacheSize)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("default_game: fallout4\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "fallout4", cfg.DefaultGame)
	assert.Equal(t, "vim", cfg.Keybindings)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: [unclosed"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := &config.Config{
		DefaultGame: "skyrim-se",
		LogLevel:    "info",
		Keybindings: "standard",
	}
	require.NoError(t, cfg.Save(dir))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.DefaultGame, loaded.DefaultGame)
	assert.Equal(t, cfg.LogLevel, loaded.LogLevel)
	assert.Equal(t, cfg.Keybindings, loaded.Keybindings)
}

func TestLoadGames_Empty(t *testing.T) {
	dir := t.TempDir()
	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestLoadGames_FromFile(t *testing.T) {
	dir := t.TempDir()
	gamesPath := filepath.Join(dir, "games.yaml")

	content := `
games:
  skyrim-se:
    name: Skyrim Special Edition
    mod_path: /games/skyrim/Data
    version: 1.6.1170.0
  fallout4:
    name: Fallout 4
`
	require.NoError(t, os.WriteFile(gamesPath, []byte(content), 0644))

	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	require.Len(t, games, 2)

	skyrim := games["skyrim-se"]
	require.NotNil(t, skyrim)
	assert.Equal(t, "skyrim-se", skyrim.ID)
	assert.Equal(t, "Skyrim Special Edition", skyrim.Name)
	assert.Equal(t, "/games/skyrim/Data", skyrim.ModPath)
	assert.Equal(t, "1.6.1170.0", skyrim.Version)

	assert.Empty(t, games["fallout4"].Version)
	assert.Equal(t, []string{"fallout4", "skyrim-se"}, config.GameIDs(games))
}

func TestLoadGames_ExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir := t.TempDir()
	content := `
games:
  skyrim-se:
    name: Skyrim Special Edition
    mod_path: ~/games/skyrim/Data
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "games.yaml"), []byte(content), 0644))

	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "games/skyrim/Data"), games["skyrim-se"].ModPath)
}

func TestSaveGame_AndDelete(t *testing.T) {
	dir := t.TempDir()
	game := &domain.Game{ID: "oblivion", Name: "Oblivion", Version: "1.2.0416"}

	require.NoError(t, config.SaveGame(dir, game))
	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	require.Contains(t, games, "oblivion")
	assert.Equal(t, "1.2.0416", games["oblivion"].Version)

	require.NoError(t, config.DeleteGame(dir, "oblivion"))
	games, err = config.LoadGames(dir)
	require.NoError(t, err)
	assert.NotContains(t, games, "oblivion")

	err = config.DeleteGame(dir, "oblivion")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	log := config.NewLogger("error", false, &buf)
	assert.Equal(t, zerolog.ErrorLevel, log.GetLevel())

	log = config.NewLogger("error", true, &buf)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = config.NewLogger("shouting", false, &buf)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log = config.NewLogger("info", false, &buf)
	log.Info().Str("game", "skyrim-se").Msg("loaded")
	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "skyrim-se")
}
