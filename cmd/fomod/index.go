package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/spf13/cobra"
)

var (
	indexModName    string
	indexModVersion string
	indexDisabled   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the mod index used for file dependencies",
	Long: `The mod index records which mods are installed for a game profile and which
files each one deployed. fileDependency conditions read it: a file owned by an
enabled mod is Active, by a disabled mod Inactive, and an unowned file Missing.

Index commands need a game from games.yaml (--game or default_game).`,
}

var indexAddCmd = &cobra.Command{
	Use:   "add <mod-id> <file>...",
	Short: "Record a mod and the files it deployed",
	Long: `Record a mod in the index with the archive-relative files it deployed.
Adding an indexed mod again replaces its details and file list.

Examples:
  fomod index add ussep "Unofficial Skyrim Special Edition Patch.esp" --name USSEP
  fomod index add skyui interface/skyui_se.swf SkyUI_SE.esp --disabled`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexAdd,
}

var indexRemoveCmd = &cobra.Command{
	Use:   "remove <mod-id>",
	Short: "Remove a mod and its files from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexRemove,
}

var indexEnableCmd = &cobra.Command{
	Use:   "enable <mod-id>",
	Short: "Mark an indexed mod enabled so its files are Active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setIndexedModEnabled(cmd, args[0], true)
	},
}

var indexDisableCmd = &cobra.Command{
	Use:   "disable <mod-id>",
	Short: "Mark an indexed mod disabled so its files are Inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setIndexedModEnabled(cmd, args[0], false)
	},
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed mods",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexShowCmd = &cobra.Command{
	Use:   "show <mod-id>",
	Short: "Show an indexed mod and its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexShow,
}

var indexStateCmd = &cobra.Command{
	Use:   "state <file>...",
	Short: "Show the state fileDependency conditions see for files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexState,
}

func init() {
	indexAddCmd.Flags().StringVar(&indexModName, "name", "", "display name (default: mod ID)")
	indexAddCmd.Flags().StringVar(&indexModVersion, "version", "", "mod version")
	indexAddCmd.Flags().BoolVar(&indexDisabled, "disabled", false, "record the mod as disabled")

	indexCmd.AddCommand(indexAddCmd, indexRemoveCmd, indexEnableCmd, indexDisableCmd, indexListCmd, indexShowCmd, indexStateCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	mod := &domain.InstalledMod{
		ID:      args[0],
		Name:    indexModName,
		Version: indexModVersion,
		Enabled: !indexDisabled,
	}
	if mod.Name == "" {
		mod.Name = mod.ID
	}

	files := args[1:]
	if err := service.IndexMod(game.ID, profileName, mod, files); err != nil {
		return fmt.Errorf("indexing %s: %w", mod.ID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s (%d file%s) for %s [%s]\n",
		mod.ID, len(files), plural(len(files), "", "s"), game.ID, service.ResolveProfile(profileName))
	return nil
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	if err := service.RemoveMod(game.ID, profileName, args[0]); err != nil {
		if errors.Is(err, domain.ErrModNotFound) {
			return fmt.Errorf("mod %s is not indexed for %s", args[0], game.ID)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the index\n", args[0])
	return nil
}

func setIndexedModEnabled(cmd *cobra.Command, modID string, enabled bool) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	if err := service.SetModEnabled(game.ID, profileName, modID, enabled); err != nil {
		if errors.Is(err, domain.ErrModNotFound) {
			return fmt.Errorf("mod %s is not indexed for %s", modID, game.ID)
		}
		return err
	}

	status := "Disabled"
	if enabled {
		status = "Enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", status, modID)
	return nil
}

type indexedModJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	Enabled bool     `json:"enabled"`
	Files   []string `json:"files"`
}

func runIndexList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	mods, err := service.ListMods(game.ID, profileName)
	if err != nil {
		return err
	}

	out := make([]indexedModJSON, 0, len(mods))
	for _, m := range mods {
		files, err := service.ModFiles(game.ID, profileName, m.ID)
		if err != nil {
			return err
		}
		if files == nil {
			files = []string{}
		}
		out = append(out, indexedModJSON{ID: m.ID, Name: m.Name, Version: m.Version, Enabled: m.Enabled, Files: files})
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, out)
	}

	if len(out) == 0 {
		fmt.Fprintf(w, "No mods indexed for %s [%s]\n", game.ID, service.ResolveProfile(profileName))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tFILES\tSTATUS")
	fmt.Fprintln(tw, "--\t----\t-------\t-----\t------")
	for _, m := range out {
		status := colorGreen("enabled")
		if !m.Enabled {
			status = colorYellow("disabled")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.ID, truncate(m.Name, 40), m.Version, len(m.Files), status)
	}
	return tw.Flush()
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	mod, err := service.GetMod(game.ID, profileName, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrModNotFound) {
			return fmt.Errorf("mod %s is not indexed for %s", args[0], game.ID)
		}
		return err
	}
	files, err := service.ModFiles(game.ID, profileName, mod.ID)
	if err != nil {
		return err
	}
	if files == nil {
		files = []string{}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, indexedModJSON{ID: mod.ID, Name: mod.Name, Version: mod.Version, Enabled: mod.Enabled, Files: files})
	}

	status := colorGreen("enabled")
	if !mod.Enabled {
		status = colorYellow("disabled")
	}
	fmt.Fprintf(w, "%s (%s) %s\n", mod.Name, mod.ID, status)
	if mod.Version != "" {
		fmt.Fprintf(w, "  Version: %s\n", mod.Version)
	}
	fmt.Fprintf(w, "  Indexed: %s\n", mod.InstalledAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Files: %d\n", len(files))
	for _, f := range files {
		fmt.Fprintf(w, "    %s\n", f)
	}
	return nil
}

type fileStateJSON struct {
	Path  string `json:"path"`
	State string `json:"state"`
}

func runIndexState(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	game, err := requireGame(service)
	if err != nil {
		return err
	}

	states := make([]fileStateJSON, 0, len(args))
	for _, path := range args {
		state, err := service.FileState(game.ID, profileName, path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		states = append(states, fileStateJSON{Path: path, State: state.String()})
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, states)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%s\n", s.Path, colorState(s.State))
	}
	return tw.Flush()
}

func colorState(state string) string {
	switch state {
	case domain.FileActive.String():
		return colorGreen(state)
	case domain.FileInactive.String():
		return colorYellow(state)
	default:
		return colorRed(state)
	}
}
