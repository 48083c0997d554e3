package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/storage/cache"
	"github.com/DonovanMods/fomod/internal/storage/config"
	"github.com/DonovanMods/fomod/internal/storage/db"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir  string // Directory for configuration files
	DataDir    string // Directory for the mod index
	ConfigFile string // Explicit config file; overrides ConfigDir/config.yaml
	Logger     *zerolog.Logger
}

// Service wires configuration, the mod index and the installer together
type Service struct {
	config  *config.Config
	db      *db.DB
	archive *ArchiveReader
	games   map[string]*domain.Game
	log     zerolog.Logger

	configDir  string
	configFile string
}

// Script is a loaded install script and the archive metadata it came with
type Script struct {
	Files *ScriptFiles
	Fomod *domain.Fomod
	Info  *domain.ModInfo // Nil when the archive has no info.xml
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	var (
		appConfig *config.Config
		err       error
	)
	if cfg.ConfigFile != "" {
		appConfig, err = config.LoadFile(cfg.ConfigFile)
	} else {
		appConfig, err = config.Load(cfg.ConfigDir)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	dbPath := appConfig.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "fomod.db")
	}
	database, err := db.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	games, err := config.LoadGames(cfg.ConfigDir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading games: %w", err)
	}

	log.Debug().Str("database", database.Path()).Int("games", len(games)).Msg("service ready")

	return &Service{
		config:     appConfig,
		db:         database,
		archive:    NewArchiveReader(),
		games:      games,
		log:        log,
		configDir:  cfg.ConfigDir,
		configFile: cfg.ConfigFile,
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Config returns the loaded application configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Logger returns the service logger
func (s *Service) Logger() zerolog.Logger {
	return s.log
}

// GetGame retrieves a configured game by ID
func (s *Service) GetGame(gameID string) (*domain.Game, error) {
	game, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}
	return game, nil
}

// ListGames returns all configured games, sorted by ID
func (s *Service) ListGames() []*domain.Game {
	games := make([]*domain.Game, 0, len(s.games))
	for _, id := range config.GameIDs(s.games) {
		games = append(games, s.games[id])
	}
	return games
}

// AddGame adds or replaces a game in games.yaml
func (s *Service) AddGame(game *domain.Game) error {
	if err := config.SaveGame(s.configDir, game); err != nil {
		return err
	}
	s.games[game.ID] = game
	s.log.Debug().Str("game", game.ID).Msg("game saved")
	return nil
}

// RemoveGame drops a game from games.yaml, clearing it as the default. Its mod
// index entries are kept so re-adding the game restores them.
func (s *Service) RemoveGame(gameID string) error {
	if err := config.DeleteGame(s.configDir, gameID); err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
		}
		return err
	}
	delete(s.games, gameID)

	if s.config.DefaultGame == gameID {
		return s.SetDefaultGame("")
	}
	return nil
}

// SetDefaultGame stores the game used when --game is not given. An empty ID
// clears it.
func (s *Service) SetDefaultGame(gameID string) error {
	if gameID != "" {
		if _, err := s.GetGame(gameID); err != nil {
			return err
		}
	}
	s.config.DefaultGame = gameID
	if s.configFile != "" {
		return s.config.SaveFile(s.configFile)
	}
	return s.config.Save(s.configDir)
}

// ResolveGame returns the game named by gameID, falling back to the configured
// default game. An empty result with a nil error means no game is in play.
func (s *Service) ResolveGame(gameID string) (*domain.Game, error) {
	if gameID == "" {
		gameID = s.config.DefaultGame
	}
	if gameID == "" {
		return nil, nil
	}
	return s.GetGame(gameID)
}

// ResolveProfile returns profile, or the configured profile, or the default
func (s *Service) ResolveProfile(profile string) string {
	if profile != "" {
		return profile
	}
	return domain.ProfileOrDefault(s.config.Profile)
}

// LoadScript reads and loads the install script of a mod archive, directory or
// ModuleConfig.xml file
func (s *Service) LoadScript(path string) (*Script, error) {
	files, err := s.archive.Open(path)
	if err != nil {
		return nil, err
	}

	fomod, err := LoadScript(files.Config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	script := &Script{Files: files, Fomod: fomod}
	if files.Info != nil {
		script.Info = LoadInfo(files.Info)
	}

	s.log.Debug().
		Str("origin", files.Origin).
		Str("module", fomod.ModName.Name).
		Int("steps", len(fomod.InstallSteps)).
		Msg("install script loaded")

	return script, nil
}

// Facts returns the mod-index fact provider for a game profile, wrapped in a
// fact cache. game may be nil when no game is configured.
func (s *Service) Facts(game *domain.Game, profile string) *cache.FactCache {
	facts := NewIndexFacts(s.db, game, s.ResolveProfile(profile), s.config.InstallerVersion)
	size := s.config.FactCacheSize
	if size == 0 {
		size = cache.DefaultSize
	}
	return cache.New(facts, size)
}

// NewSession creates an install session for a script over the given provider
func (s *Service) NewSession(script *domain.Fomod, facts FactProvider, opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithLogger(s.log)}, opts...)
	return NewSession(script, facts, opts...)
}

// IndexMod records a mod and the archive-relative files it deployed
func (s *Service) IndexMod(gameID, profile string, mod *domain.InstalledMod, files []string) error {
	profile = s.ResolveProfile(profile)
	mod.GameID = gameID
	mod.ProfileName = profile
	if mod.InstalledAt.IsZero() {
		mod.InstalledAt = time.Now()
	}

	if err := s.db.SaveInstalledMod(mod); err != nil {
		return err
	}
	// Re-indexing a mod replaces its file list
	if err := s.db.DeleteDeployedFiles(gameID, profile, mod.ID); err != nil {
		return err
	}
	for _, f := range files {
		if err := s.db.SaveDeployedFile(gameID, profile, f, mod.ID); err != nil {
			return err
		}
	}

	s.log.Debug().Str("mod", mod.ID).Int("files", len(files)).Msg("mod indexed")
	return nil
}

// SetModEnabled enables or disables an indexed mod
func (s *Service) SetModEnabled(gameID, profile, modID string, enabled bool) error {
	return s.db.SetModEnabled(modID, gameID, s.ResolveProfile(profile), enabled)
}

// RemoveMod drops an indexed mod and its files
func (s *Service) RemoveMod(gameID, profile, modID string) error {
	return s.db.DeleteInstalledMod(modID, gameID, s.ResolveProfile(profile))
}

// GetMod returns one indexed mod
func (s *Service) GetMod(gameID, profile, modID string) (*domain.InstalledMod, error) {
	return s.db.GetInstalledMod(modID, gameID, s.ResolveProfile(profile))
}

// ListMods returns the indexed mods of a game profile
func (s *Service) ListMods(gameID, profile string) ([]domain.InstalledMod, error) {
	return s.db.GetInstalledMods(gameID, s.ResolveProfile(profile))
}

// ModFiles returns the files recorded for an indexed mod
func (s *Service) ModFiles(gameID, profile, modID string) ([]string, error) {
	return s.db.GetDeployedFilesForMod(gameID, s.ResolveProfile(profile), modID)
}

// FileState reports the state of an archive-relative file in a game profile
func (s *Service) FileState(gameID, profile, path string) (domain.FileState, error) {
	return s.db.FileState(gameID, s.ResolveProfile(profile), path)
}
