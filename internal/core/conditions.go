package core

import (
	"fmt"

	"github.com/DonovanMods/fomod/internal/domain"
)

// check is one deferred fact query of a Dependencies node
type check func(FactProvider) (bool, error)

// Evaluate reports whether deps holds against facts. A nil node imposes no
// constraint. Checks run in document order: file dependencies, flag dependencies,
// then the game and installer version. And short-circuits on the first failure and
// is vacuously true; Or short-circuits on the first success and is vacuously false.
func Evaluate(deps *domain.Dependencies, facts FactProvider) (bool, error) {
	if deps == nil {
		return true, nil
	}

	for _, c := range checks(deps) {
		ok, err := c(facts)
		if err != nil {
			return false, err
		}
		switch deps.Operator {
		case domain.OperatorOr:
			if ok {
				return true, nil
			}
		default:
			if !ok {
				return false, nil
			}
		}
	}

	return deps.Operator != domain.OperatorOr, nil
}

func checks(deps *domain.Dependencies) []check {
	list := make([]check, 0, len(deps.Files)+len(deps.Flags)+2)

	for _, fd := range deps.Files {
		list = append(list, func(f FactProvider) (bool, error) {
			ok, err := f.CheckFile(fd.File, fd.State)
			if err != nil {
				return false, fmt.Errorf("checking file %s is %s: %w", fd.File, fd.State, err)
			}
			return ok, nil
		})
	}

	for _, fl := range deps.Flags {
		list = append(list, func(f FactProvider) (bool, error) {
			ok, err := f.CheckFlag(fl.Flag, fl.Value)
			if err != nil {
				return false, fmt.Errorf("checking flag %s: %w", fl.Flag, err)
			}
			return ok, nil
		})
	}

	if v := deps.GameVersion; v != "" {
		list = append(list, func(f FactProvider) (bool, error) {
			ok, err := f.CheckGameVersion(v)
			if err != nil {
				return false, fmt.Errorf("checking game version %s: %w", v, err)
			}
			return ok, nil
		})
	}

	if v := deps.InstallerVersion; v != "" {
		list = append(list, func(f FactProvider) (bool, error) {
			ok, err := f.CheckInstallerVersion(v)
			if err != nil {
				return false, fmt.Errorf("checking installer version %s: %w", v, err)
			}
			return ok, nil
		})
	}

	return list
}

// ResolvePluginType returns the effective type of a plugin under the current facts:
// its fixed type, or the type of the first pattern that holds, else the default.
func ResolvePluginType(plugin *domain.Plugin, facts FactProvider) (domain.PluginType, error) {
	desc := plugin.TypeDescriptor
	if !desc.IsConditional() {
		return desc.Fixed, nil
	}

	for i := range desc.Conditional.Patterns {
		pattern := &desc.Conditional.Patterns[i]
		ok, err := Evaluate(&pattern.Dependencies, facts)
		if err != nil {
			return desc.Conditional.DefaultType, fmt.Errorf("resolving type of %s: %w", plugin.Name, err)
		}
		if ok {
			return pattern.Type, nil
		}
	}
	return desc.Conditional.DefaultType, nil
}
