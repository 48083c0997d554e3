package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Show the structure of an install script",
	Long: `Show the module name, install steps, groups and plugins of a mod's install script.
<path> may be a .zip archive, an extracted mod directory or a ModuleConfig.xml file.

Examples:
  fomod inspect SkyUI_5_2_SE.zip
  fomod inspect ./extracted-mod --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspectJSON struct {
	Module             string            `json:"module"`
	Info               *domain.ModInfo   `json:"info,omitempty"`
	RequiredFiles      int               `json:"required_files"`
	ConditionalFiles   int               `json:"conditional_patterns"`
	ModuleDependencies bool              `json:"module_dependencies"`
	Steps              []inspectStepJSON `json:"steps"`
}

type inspectStepJSON struct {
	Name        string             `json:"name"`
	Conditional bool               `json:"conditional"`
	Groups      []inspectGroupJSON `json:"groups"`
}

type inspectGroupJSON struct {
	Name    string              `json:"name"`
	Type    string              `json:"type"`
	Plugins []inspectPluginJSON `json:"plugins"`
}

type inspectPluginJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Files int    `json:"files"`
	Flags int    `json:"flags"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	script, err := service.LoadScript(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeInspectJSON(out, script)
	}
	writeInspect(out, script)
	return nil
}

func typeLabel(d domain.PluginTypeDescriptor) string {
	if d.IsConditional() {
		return fmt.Sprintf("conditional, default %s", d.Conditional.DefaultType)
	}
	return d.Fixed.String()
}

func writeInspect(w io.Writer, script *core.Script) {
	f := script.Fomod
	fmt.Fprintf(w, "Module: %s\n", f.ModName.Name)
	if info := script.Info; info != nil {
		if info.Author != "" {
			fmt.Fprintf(w, "  Author: %s\n", info.Author)
		}
		if info.Version != "" {
			fmt.Fprintf(w, "  Version: %s\n", info.Version)
		}
		if info.Website != "" {
			fmt.Fprintf(w, "  Website: %s\n", info.Website)
		}
	}
	if verbose {
		fmt.Fprintf(w, "  Source: %s\n", script.Files.Origin)
	}
	if f.ModuleDependencies != nil {
		fmt.Fprintf(w, "  Requires: %s\n", describeDependencies(f.ModuleDependencies))
	}
	fmt.Fprintf(w, "  Required files: %d\n", len(f.RequiredFiles))
	fmt.Fprintf(w, "  Conditional patterns: %d\n", len(f.ConditionalFileInstalls))

	if len(f.InstallSteps) == 0 {
		fmt.Fprintln(w, "\nNo install steps.")
		return
	}

	for i := range f.InstallSteps {
		step := &f.InstallSteps[i]
		fmt.Fprintf(w, "\nStep %d: %s", i+1, step.Name)
		if step.Visible != nil {
			fmt.Fprintf(w, " %s", colorYellow("(when "+describeDependencies(step.Visible)+")"))
		}
		fmt.Fprintln(w)

		for _, g := range core.SortedGroups(step) {
			group := &step.Groups[g]
			fmt.Fprintf(w, "  %s [%s]\n", group.Name, group.Type)
			for _, p := range core.SortedPlugins(group) {
				plugin := &group.Plugins[p]
				fmt.Fprintf(w, "    - %s (%s)\n", truncate(plugin.Name, 60), typeLabel(plugin.TypeDescriptor))
			}
		}
	}
}

func writeInspectJSON(w io.Writer, script *core.Script) error {
	f := script.Fomod
	out := inspectJSON{
		Module:             f.ModName.Name,
		Info:               script.Info,
		RequiredFiles:      len(f.RequiredFiles),
		ConditionalFiles:   len(f.ConditionalFileInstalls),
		ModuleDependencies: f.ModuleDependencies != nil,
		Steps:              []inspectStepJSON{},
	}

	for i := range f.InstallSteps {
		step := &f.InstallSteps[i]
		stepOut := inspectStepJSON{Name: step.Name, Conditional: step.Visible != nil, Groups: []inspectGroupJSON{}}
		for _, g := range core.SortedGroups(step) {
			group := &step.Groups[g]
			groupOut := inspectGroupJSON{Name: group.Name, Type: group.Type.String(), Plugins: []inspectPluginJSON{}}
			for _, p := range core.SortedPlugins(group) {
				plugin := &group.Plugins[p]
				groupOut.Plugins = append(groupOut.Plugins, inspectPluginJSON{
					Name:  plugin.Name,
					Type:  typeLabel(plugin.TypeDescriptor),
					Files: len(plugin.Files),
					Flags: len(plugin.ConditionFlags),
				})
			}
			stepOut.Groups = append(stepOut.Groups, groupOut)
		}
		out.Steps = append(out.Steps, stepOut)
	}

	return writeJSON(w, out)
}

// describeDependencies renders a dependency node as a one-line expression
func describeDependencies(d *domain.Dependencies) string {
	var parts []string
	for _, fd := range d.Files {
		parts = append(parts, fmt.Sprintf("%s is %s", fd.File, fd.State))
	}
	for _, fl := range d.Flags {
		parts = append(parts, fmt.Sprintf("%s=%q", fl.Flag, fl.Value))
	}
	if d.GameVersion != "" {
		parts = append(parts, "game >= "+d.GameVersion)
	}
	if d.InstallerVersion != "" {
		parts = append(parts, "installer >= "+d.InstallerVersion)
	}
	if len(parts) == 0 {
		return "nothing"
	}
	sep := " and "
	if d.Operator == domain.OperatorOr {
		sep = " or "
	}
	return strings.Join(parts, sep)
}
