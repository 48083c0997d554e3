package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/DonovanMods/fomod/internal/domain"

	"golang.org/x/text/cases"
)

// Chooser returns the selections for a step. Used by RunSession.
type Chooser func(s *Session, step *domain.InstallStep) ([]Selection, error)

// RunSession starts the session if needed, asks choose for every visible step and
// returns the install plan
func RunSession(s *Session, choose Chooser) ([]domain.FileEntry, error) {
	if s.State() == SessionNotStarted {
		if err := s.Start(); err != nil {
			return nil, err
		}
	}

	for {
		step, ok := s.CurrentStep()
		if !ok {
			break
		}
		selected, err := choose(s, step)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}
		if err := s.Advance(selected); err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return s.InstallPlan()
}

// DefaultChooser selects DefaultSelections for every step
func DefaultChooser(s *Session, _ *domain.InstallStep) ([]Selection, error) {
	return DefaultSelections(s)
}

// DefaultSelections returns the selections a wizard preselects for the current
// step: Required and Recommended plugins, every usable plugin of a SelectAll group,
// and the first usable plugin of a group that needs one and has none.
func DefaultSelections(s *Session) ([]Selection, error) {
	step, ok := s.CurrentStep()
	if !ok {
		return nil, nil
	}

	var selected []Selection
	for g := range step.Groups {
		group := &step.Groups[g]

		var picked []int
		firstUsable := -1
		for _, p := range SortedPlugins(group) {
			t, err := s.PluginType(g, p)
			if err != nil {
				return nil, err
			}
			if t == domain.PluginNotUsable {
				continue
			}
			if firstUsable < 0 {
				firstUsable = p
			}
			if group.Type == domain.SelectAll || t == domain.PluginRequired || t == domain.PluginRecommended {
				picked = append(picked, p)
			}
		}

		switch group.Type {
		case domain.SelectExactlyOne, domain.SelectAtMostOne:
			if len(picked) > 1 {
				picked = picked[:1]
			}
		}
		switch group.Type {
		case domain.SelectExactlyOne, domain.SelectAtLeastOne:
			if len(picked) == 0 && firstUsable >= 0 {
				picked = []int{firstUsable}
			}
		}

		for _, p := range picked {
			selected = append(selected, Selection{Group: g, Plugin: p})
		}
	}
	return selected, nil
}

// TypeOf reports the effective type of plugin p in group g of a step. A nil
// TypeOf treats every plugin as usable.
type TypeOf func(g, p int) domain.PluginType

// ValidateGroupSelection checks a group's advisory cardinality rule. NotUsable
// plugins do not count: SelectAll needs every usable plugin, and ExactlyOne or
// AtLeastOne groups without a usable plugin accept an empty selection. The
// session never calls it; interactive callers do before advancing.
func ValidateGroupSelection(group *domain.Group, selected []int, typeOf func(p int) domain.PluginType) error {
	usable := func(p int) bool {
		return typeOf == nil || typeOf(p) != domain.PluginNotUsable
	}

	distinct := make(map[int]bool, len(selected))
	for _, p := range selected {
		distinct[p] = true
	}
	n := len(distinct)

	available := 0
	missing := 0
	for p := range group.Plugins {
		if !usable(p) {
			continue
		}
		available++
		if !distinct[p] {
			missing++
		}
	}

	var ok bool
	switch group.Type {
	case domain.SelectAtLeastOne:
		ok = n >= 1 || available == 0
	case domain.SelectAtMostOne:
		ok = n <= 1
	case domain.SelectExactlyOne:
		ok = n == 1 || (n == 0 && available == 0)
	case domain.SelectAll:
		ok = missing == 0
	default:
		ok = true
	}

	if !ok {
		return fmt.Errorf("%w: group %q is %s but %d of %d usable plugins are selected",
			domain.ErrCardinality, group.Name, group.Type, n, available)
	}
	return nil
}

// ValidateStepSelection runs ValidateGroupSelection for every group of a step
func ValidateStepSelection(step *domain.InstallStep, selected []Selection, typeOf TypeOf) error {
	byGroup := make(map[int][]int)
	for _, sel := range selected {
		byGroup[sel.Group] = append(byGroup[sel.Group], sel.Plugin)
	}
	for g := range step.Groups {
		var groupType func(p int) domain.PluginType
		if typeOf != nil {
			groupType = func(p int) domain.PluginType { return typeOf(g, p) }
		}
		if err := ValidateGroupSelection(&step.Groups[g], byGroup[g], groupType); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSelection checks selections for the current step against every group's
// rule, with plugin types resolved against the current flags
func (s *Session) ValidateSelection(selected []Selection) error {
	step, ok := s.CurrentStep()
	if !ok {
		return &domain.InvalidSelectionError{Step: -1, Group: -1, Plugin: -1, Msg: "no step awaiting selections"}
	}

	types := make(map[Selection]domain.PluginType)
	for g := range step.Groups {
		for p := range step.Groups[g].Plugins {
			t, err := s.PluginType(g, p)
			if err != nil {
				return err
			}
			types[Selection{Group: g, Plugin: p}] = t
		}
	}

	return ValidateStepSelection(step, selected, func(g, p int) domain.PluginType {
		return types[Selection{Group: g, Plugin: p}]
	})
}

// SelectionsByName maps group name -> plugin names to selections of a step.
// Names match exactly first, then case-insensitively.
func SelectionsByName(stepIndex int, step *domain.InstallStep, names map[string][]string) ([]Selection, error) {
	var selected []Selection
	for groupName, pluginNames := range names {
		g := indexByName(len(step.Groups), func(i int) string { return step.Groups[i].Name }, groupName)
		if g < 0 {
			return nil, &domain.InvalidSelectionError{
				Step: stepIndex, Group: -1, Plugin: -1,
				Msg: fmt.Sprintf("step %q has no group %q", step.Name, groupName),
			}
		}
		plugins := step.Groups[g].Plugins
		for _, pluginName := range pluginNames {
			p := indexByName(len(plugins), func(i int) string { return plugins[i].Name }, pluginName)
			if p < 0 {
				return nil, &domain.InvalidSelectionError{
					Step: stepIndex, Group: g, Plugin: -1,
					Msg: fmt.Sprintf("group %q has no plugin %q", groupName, pluginName),
				}
			}
			selected = append(selected, Selection{Group: g, Plugin: p})
		}
	}

	slices.SortFunc(selected, func(a, b Selection) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Plugin - b.Plugin
	})
	return selected, nil
}

func indexByName(n int, name func(int) string, want string) int {
	for i := 0; i < n; i++ {
		if name(i) == want {
			return i
		}
	}
	for i := 0; i < n; i++ {
		if strings.EqualFold(name(i), want) {
			return i
		}
	}
	return -1
}

// SortedPlugins returns plugin indexes in presentation order. Evaluation always
// uses document order.
func SortedPlugins(group *domain.Group) []int {
	names := make([]string, len(group.Plugins))
	for i := range group.Plugins {
		names[i] = group.Plugins[i].Name
	}
	return presentationOrder(names, group.Order)
}

// SortedGroups returns group indexes of a step in presentation order
func SortedGroups(step *domain.InstallStep) []int {
	names := make([]string, len(step.Groups))
	for i := range step.Groups {
		names[i] = step.Groups[i].Name
	}
	return presentationOrder(names, step.GroupOrder)
}

func presentationOrder(names []string, order domain.OrderType) []int {
	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	if order == domain.OrderExplicit {
		return idx
	}

	fold := cases.Fold()
	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = fold.String(n)
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		c := strings.Compare(folded[a], folded[b])
		if order == domain.OrderDescending {
			return -c
		}
		return c
	})
	return idx
}
