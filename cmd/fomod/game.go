package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/spf13/cobra"
)

var (
	gameName    string
	gameVersion string
	gameModPath string
	gameDefault bool
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Game management commands",
	Long: `Commands for managing the games in games.yaml.

A game scopes the mod index, and its version answers gameDependency checks in
install scripts.`,
}

var gameAddCmd = &cobra.Command{
	Use:   "add <game-id>",
	Short: "Add or update a game",
	Long: `Add a game to games.yaml, or update an existing one.

Example:
  fomod game add skyrim-se --name "Skyrim Special Edition" --version 1.6.1170 --default`,
	Args: cobra.ExactArgs(1),
	RunE: runGameAdd,
}

var gameRemoveCmd = &cobra.Command{
	Use:   "remove <game-id>",
	Short: "Remove a game",
	Long:  `Remove a game from games.yaml. Its mod index entries are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGameRemove,
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured games",
	Args:  cobra.NoArgs,
	RunE:  runGameList,
}

var gameSetDefaultCmd = &cobra.Command{
	Use:   "set-default <game-id>",
	Short: "Set the default game",
	Long: `Set the default game so you don't have to specify --game for every command.

Example:
  fomod game set-default skyrim-se`,
	Args: cobra.ExactArgs(1),
	RunE: runGameSetDefault,
}

var gameClearDefaultCmd = &cobra.Command{
	Use:   "clear-default",
	Short: "Clear the default game setting",
	Args:  cobra.NoArgs,
	RunE:  runGameClearDefault,
}

func init() {
	gameAddCmd.Flags().StringVar(&gameName, "name", "", "display name (default: game ID)")
	gameAddCmd.Flags().StringVar(&gameVersion, "version", "", "installed game version for gameDependency checks")
	gameAddCmd.Flags().StringVar(&gameModPath, "mod-path", "", "where the game's mods are deployed (informational)")
	gameAddCmd.Flags().BoolVar(&gameDefault, "default", false, "also make this the default game")

	gameCmd.AddCommand(gameAddCmd, gameRemoveCmd, gameListCmd, gameSetDefaultCmd, gameClearDefaultCmd)
	rootCmd.AddCommand(gameCmd)
}

func runGameAdd(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game := &domain.Game{
		ID:      args[0],
		Name:    gameName,
		ModPath: gameModPath,
		Version: gameVersion,
	}
	if game.Name == "" {
		game.Name = game.ID
	}

	if err := service.AddGame(game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}
	cmd.Printf("Saved game %s (%s)\n", game.Name, game.ID)

	if gameDefault {
		if err := service.SetDefaultGame(game.ID); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		cmd.Printf("Default game set to: %s\n", game.ID)
	}
	return nil
}

func runGameRemove(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.RemoveGame(args[0]); err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			return fmt.Errorf("game not found: %s", args[0])
		}
		return err
	}

	cmd.Printf("Removed game %s\n", args[0])
	return nil
}

type gameJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	ModPath string `json:"mod_path,omitempty"`
	Default bool   `json:"default"`
}

func runGameList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	defaultGame := service.Config().DefaultGame
	games := service.ListGames()

	out := make([]gameJSON, 0, len(games))
	for _, g := range games {
		out = append(out, gameJSON{ID: g.ID, Name: g.Name, Version: g.Version, ModPath: g.ModPath, Default: g.ID == defaultGame})
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, out)
	}

	if len(out) == 0 {
		fmt.Fprintln(w, "No games configured")
		fmt.Fprintln(w, "Use 'fomod game add <game-id>' to add one")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tDEFAULT")
	fmt.Fprintln(tw, "--\t----\t-------\t-------")
	for _, g := range out {
		mark := ""
		if g.Default {
			mark = colorGreen("*")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, truncate(g.Name, 40), g.Version, mark)
	}
	return tw.Flush()
}

func runGameSetDefault(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.SetDefaultGame(args[0]); err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			return fmt.Errorf("game not found: %s", args[0])
		}
		return fmt.Errorf("saving config: %w", err)
	}

	game, _ := service.GetGame(args[0])
	cmd.Printf("Default game set to: %s (%s)\n", game.Name, game.ID)
	return nil
}

func runGameClearDefault(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	old := service.Config().DefaultGame
	if old == "" {
		cmd.Println("No default game was set")
		return nil
	}
	if err := service.SetDefaultGame(""); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Cleared default game (was: %s)\n", old)
	return nil
}
