package main

import (
	"errors"
	"fmt"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/tui"

	"github.com/spf13/cobra"
)

var (
	wizardFlags       []string
	wizardFiles       []string
	wizardGameVersion string
)

var wizardCmd = &cobra.Command{
	Use:   "wizard <path>",
	Short: "Walk a mod's install steps interactively",
	Long: `Open the interactive install wizard for a mod archive, directory or ModuleConfig.xml.

Each visible step lists its groups and plugins. Required and Recommended plugins
are preselected. Confirm the last step to review the install plan, then accept it
to print the plan. Quitting exits with status 2 and prints nothing.

Keys follow the keybindings setting in config.yaml (vim or standard).`,
	Args: cobra.ExactArgs(1),
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().StringArrayVar(&wizardFlags, "flag", nil, "seed a condition flag as name=value (repeatable)")
	wizardCmd.Flags().StringArrayVar(&wizardFiles, "file", nil, "set a file state as path=Active|Inactive|Missing instead of using the mod index (repeatable)")
	wizardCmd.Flags().StringVar(&wizardGameVersion, "game-version", "", "game version for gameDependency checks")

	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	flags, err := parseFlagPairs(wizardFlags)
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	script, err := service.LoadScript(args[0])
	if err != nil {
		return err
	}

	facts, err := buildFacts(service, factOptions{gameVersion: wizardGameVersion, files: wizardFiles})
	if err != nil {
		return err
	}

	session := service.NewSession(script.Fomod, facts, core.WithFlags(flags))
	plan, err := tui.Run(session, tui.NewKeyMap(service.Config().Keybindings))
	if errors.Is(err, tui.ErrCancelled) {
		return ErrCancelled
	}
	if err != nil {
		return err
	}

	return writePlan(cmd.OutOrStdout(), session, plan)
}
