package main

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/spf13/cobra"
)

var (
	planSelect      []string
	planDefaults    bool
	planFlags       []string
	planFiles       []string
	planGameVersion string
)

var planCmd = &cobra.Command{
	Use:   "plan <path>",
	Short: "Compute an install plan without the wizard",
	Long: `Run a mod's install script non-interactively and print the ordered install plan.

Choices are given with --select "Step/Group/Plugin" (repeatable). Names match
exactly first, then case-insensitively. Steps without a --select fail unless
--defaults is set, which preselects Required and Recommended plugins and the
first usable plugin of groups that need one. With --defaults, --select replaces
the default choice for the groups it names.

File dependencies are answered from the mod index of --game/--profile unless
--file overrides are given.

Examples:
  fomod plan mod.zip --defaults
  fomod plan mod.zip --select "Main/Textures/2K" --select "Main/Patches/USSEP"
  fomod plan mod.zip --defaults --file "Unofficial Patch.esp=Active" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringArrayVar(&planSelect, "select", nil, "select a plugin as Step/Group/Plugin (repeatable)")
	planCmd.Flags().BoolVar(&planDefaults, "defaults", false, "use default choices for steps and groups not selected explicitly")
	planCmd.Flags().StringArrayVar(&planFlags, "flag", nil, "seed a condition flag as name=value (repeatable)")
	planCmd.Flags().StringArrayVar(&planFiles, "file", nil, "set a file state as path=Active|Inactive|Missing instead of using the mod index (repeatable)")
	planCmd.Flags().StringVar(&planGameVersion, "game-version", "", "game version for gameDependency checks")

	rootCmd.AddCommand(planCmd)
}

// stepChoices maps step name -> group name -> plugin names
type stepChoices map[string]map[string][]string

func parseSelections(args []string) (stepChoices, error) {
	choices := make(stepChoices)
	for _, arg := range args {
		parts := strings.SplitN(arg, "/", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid selection %q; expected Step/Group/Plugin", arg)
		}
		step, group, plugin := parts[0], parts[1], parts[2]
		if choices[step] == nil {
			choices[step] = make(map[string][]string)
		}
		choices[step][group] = append(choices[step][group], plugin)
	}
	return choices, nil
}

// forStep returns the choices for a step, matching its name exactly first,
// then case-insensitively
func (c stepChoices) forStep(name string) (map[string][]string, bool) {
	if groups, ok := c[name]; ok {
		return groups, true
	}
	for stepName, groups := range c {
		if strings.EqualFold(stepName, name) {
			return groups, true
		}
	}
	return nil, false
}

// cliChooser builds the selections for each step from --select and --defaults.
// Group rules are enforced before the session sees the selections.
func cliChooser(choices stepChoices, useDefaults bool, used map[string]bool) core.Chooser {
	return func(s *core.Session, step *domain.InstallStep) ([]core.Selection, error) {
		named, ok := choices.forStep(step.Name)
		if ok {
			used[strings.ToLower(step.Name)] = true
		}

		var selected []core.Selection
		switch {
		case ok:
			explicit, err := core.SelectionsByName(s.StepIndex(), step, named)
			if err != nil {
				return nil, err
			}
			if useDefaults {
				defaults, err := core.DefaultSelections(s)
				if err != nil {
					return nil, err
				}
				selected = mergeSelections(defaults, explicit)
			} else {
				selected = explicit
			}
		case useDefaults:
			defaults, err := core.DefaultSelections(s)
			if err != nil {
				return nil, err
			}
			selected = defaults
		case len(step.Groups) > 0:
			return nil, fmt.Errorf("no selection given; use --select %q or --defaults", step.Name+"/<group>/<plugin>")
		}

		if err := s.ValidateSelection(selected); err != nil {
			return nil, err
		}
		return selected, nil
	}
}

// mergeSelections replaces the defaults of every group named explicitly
func mergeSelections(defaults, explicit []core.Selection) []core.Selection {
	named := make(map[int]bool)
	for _, sel := range explicit {
		named[sel.Group] = true
	}
	merged := make([]core.Selection, 0, len(defaults)+len(explicit))
	for _, sel := range defaults {
		if !named[sel.Group] {
			merged = append(merged, sel)
		}
	}
	return append(merged, explicit...)
}

func runPlan(cmd *cobra.Command, args []string) error {
	choices, err := parseSelections(planSelect)
	if err != nil {
		return err
	}
	flags, err := parseFlagPairs(planFlags)
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

	facts, err := buildFacts(service, factOptions{gameVersion: planGameVersion, files: planFiles})
	if err != nil {
		return err
	}

	session := service.NewSession(script.Fomod, facts, core.WithFlags(flags))
	used := make(map[string]bool)
	plan, err := core.RunSession(session, cliChooser(choices, planDefaults, used))
	if err != nil {
		return err
	}

	log := service.Logger()
	for name := range choices {
		if !used[strings.ToLower(name)] {
			log.Warn().Str("step", name).Msg("selection for a step that was not shown")
		}
	}

	return writePlan(cmd.OutOrStdout(), session, plan)
}
