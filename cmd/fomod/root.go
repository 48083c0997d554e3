package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"
	"github.com/DonovanMods/fomod/internal/storage/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user quits the wizard.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir   string
	configFile  string
	dataDir     string
	gameID      string
	profileName string
	verbose     bool
	jsonOutput  bool
	noColor     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fomod",
	Short: "FOMOD installer - run mod install scripts from the terminal",
	Long: `fomod reads the FOMOD install script (fomod/ModuleConfig.xml) of a mod archive,
walks its install steps and prints the resulting install plan.

Plans can be produced interactively with 'fomod wizard' or non-interactively with
'fomod plan'. File dependencies are answered from a local mod index managed with
'fomod index'.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !colorEnabled() {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/fomod)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "explicit config file (overrides <config>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/fomod)")
	rootCmd.PersistentFlags().StringVarP(&gameID, "game", "g", "", "game ID whose mod index answers file dependencies")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile within the game (default: configured profile)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (inspect, plan, wizard, index)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

// colorGreen returns s with green ANSI when color is enabled, otherwise s.
func colorGreen(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiGreen + s + ansiReset
}

// colorRed returns s with red ANSI when color is enabled, otherwise s.
func colorRed(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiRed + s + ansiReset
}

// colorYellow returns s with yellow ANSI when color is enabled, otherwise s.
func colorYellow(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiYellow + s + ansiReset
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}

	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "fomod")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "fomod")
	}

	if configFile != "" {
		path, err := config.ParseConfigPath(configFile)
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("--config-file: %w", err)
		}
		cfg.ConfigFile = path
	}

	// The log level lives in the config file the service is about to load
	level := ""
	if appConfig, err := loadAppConfig(cfg); err == nil {
		level = appConfig.LogLevel
	}
	logger := config.NewLogger(level, verbose, os.Stderr)
	cfg.Logger = &logger

	return cfg, nil
}

func loadAppConfig(cfg core.ServiceConfig) (*config.Config, error) {
	if cfg.ConfigFile != "" {
		return config.LoadFile(cfg.ConfigFile)
	}
	return config.Load(cfg.ConfigDir)
}

// requireGame resolves the game to operate on, falling back to the configured default
func requireGame(service *core.Service) (*domain.Game, error) {
	game, err := service.ResolveGame(gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("no game specified; use --game or -g flag, or set default_game in config.yaml")
	}
	return game, nil
}
