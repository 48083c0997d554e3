package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/DonovanMods/fomod/internal/core"
	"github.com/DonovanMods/fomod/internal/domain"
)

// planJSON is the JSON shape printed by plan and wizard
type planJSON struct {
	Module       string             `json:"module"`
	Files        []domain.FileEntry `json:"files"`
	Flags        map[string]string  `json:"flags"`
	SkippedSteps []string           `json:"skipped_steps"`
}

// factOptions are the command-line overrides for dependency facts
type factOptions struct {
	gameVersion string
	files       []string // path=State
}

// buildFacts returns the provider answering dependency checks: the mod index of
// the selected game, or a static set when file states are given explicitly
func buildFacts(service *core.Service, opts factOptions) (core.FactProvider, error) {
	game, err := service.ResolveGame(gameID)
	if err != nil {
		return nil, err
	}
	if opts.gameVersion != "" {
		g := domain.Game{ID: gameID}
		if game != nil {
			g = *game
		}
		g.Version = opts.gameVersion
		game = &g
	}

	if len(opts.files) == 0 {
		return service.Facts(game, profileName), nil
	}

	files, err := parseFileStates(opts.files)
	if err != nil {
		return nil, err
	}
	static := &core.StaticFacts{
		Files:            files,
		InstallerVersion: service.Config().InstallerVersion,
	}
	if game != nil {
		static.GameVersion = game.Version
	}
	return static, nil
}

// parseFlagPairs parses name=value pairs; the value may be empty
func parseFlagPairs(pairs []string) (map[string]string, error) {
	flags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid flag %q; expected name=value", pair)
		}
		flags[name] = value
	}
	return flags, nil
}

// parseFileStates parses path=State pairs into normalized paths
func parseFileStates(pairs []string) (map[string]domain.FileState, error) {
	files := make(map[string]domain.FileState, len(pairs))
	for _, pair := range pairs {
		path, stateStr, ok := strings.Cut(pair, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid file state %q; expected path=Active|Inactive|Missing", pair)
		}
		state, ok := domain.ParseFileState(stateStr)
		if !ok {
			return nil, fmt.Errorf("invalid file state %q; expected Active, Inactive or Missing", stateStr)
		}
		files[domain.NormalizePath(path)] = state
	}
	return files, nil
}

// writePlan prints a finished session's plan as a table or JSON
func writePlan(w io.Writer, s *core.Session, plan []domain.FileEntry) error {
	script := s.Script()

	if jsonOutput {
		out := planJSON{
			Module:       script.ModName.Name,
			Files:        plan,
			Flags:        s.Flags(),
			SkippedSteps: []string{},
		}
		if out.Files == nil {
			out.Files = []domain.FileEntry{}
		}
		for _, i := range s.SkippedSteps() {
			out.SkippedSteps = append(out.SkippedSteps, script.InstallSteps[i].Name)
		}
		return writeJSON(w, out)
	}

	if len(plan) == 0 {
		fmt.Fprintln(w, "Nothing to install.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tKIND\tSOURCE\tDESTINATION")
	fmt.Fprintln(tw, "--------\t----\t------\t-----------")
	for _, f := range plan {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.Priority, f.Kind, f.Source, f.Destination)
	}
	tw.Flush()

	if verbose {
		fmt.Fprintf(w, "\nTotal: %d entr%s\n", len(plan), plural(len(plan), "y", "ies"))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// truncate shortens s to max runes, adding an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
