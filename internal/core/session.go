package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/rs/zerolog"
)

// SessionState is the position of a session in the install wizard
type SessionState int

const (
	SessionNotStarted SessionState = iota
	SessionAtStep
	SessionFinished
)

func (s SessionState) String() string {
	switch s {
	case SessionNotStarted:
		return "not started"
	case SessionAtStep:
		return "at step"
	case SessionFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Selection identifies a plugin of the current step by group and plugin index
type Selection struct {
	Group  int
	Plugin int
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the logger used for step transitions
func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithFlags seeds the flag state before the first step
func WithFlags(flags map[string]string) SessionOption {
	return func(s *Session) {
		maps.Copy(s.flags, flags)
	}
}

// snapshot is the install state before an Advance, restored by Back
type snapshot struct {
	step      int
	flags     map[string]string
	stepFiles int
	skipped   int
}

// Session walks the install steps of one script for one installation attempt.
// It owns the flag map and the accumulated file list; it is not safe for
// concurrent use, and an application previewing several archives needs one
// Session per archive.
type Session struct {
	script *domain.Fomod
	base   FactProvider
	log    zerolog.Logger

	state     SessionState
	step      int
	flags     map[string]string
	stepFiles []domain.FileEntry
	skipped   []int
	history   []snapshot
}

// NewSession creates a session over a loaded script. facts answers file and
// version queries; flags set by selected plugins take precedence over it.
func NewSession(script *domain.Fomod, facts FactProvider, opts ...SessionOption) *Session {
	s := &Session{
		script: script,
		base:   facts,
		log:    zerolog.Nop(),
		flags:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks module dependencies, records the required files and moves to the
// first visible step (or straight to finished when no step is visible).
func (s *Session) Start() error {
	if s.state != SessionNotStarted {
		return &domain.InvalidSelectionError{Step: -1, Group: -1, Plugin: -1, Msg: "session already started"}
	}

	ok, err := Evaluate(s.script.ModuleDependencies, s.facts())
	if err != nil {
		return fmt.Errorf("checking module dependencies: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleDependencies, s.script.ModName.Name)
	}

	s.log.Debug().
		Str("module", s.script.ModName.Name).
		Int("required_files", len(s.script.RequiredFiles)).
		Int("steps", len(s.script.InstallSteps)).
		Msg("session started")

	return s.moveTo(0)
}

// State returns the current session state
func (s *Session) State() SessionState {
	return s.state
}

// StepIndex returns the index of the current step, or -1 when not at a step
func (s *Session) StepIndex() int {
	if s.state != SessionAtStep {
		return -1
	}
	return s.step
}

// CurrentStep returns the visible step awaiting selections. ok is false when the
// session has not started or is finished.
func (s *Session) CurrentStep() (step *domain.InstallStep, ok bool) {
	if s.state != SessionAtStep {
		return nil, false
	}
	return &s.script.InstallSteps[s.step], true
}

// PluginType resolves the effective type of a plugin of the current step against
// the current flags
func (s *Session) PluginType(group, plugin int) (domain.PluginType, error) {
	p, err := s.plugin(group, plugin)
	if err != nil {
		return domain.PluginOptional, err
	}
	return ResolvePluginType(p, s.facts())
}

// Advance applies the user's selections for the current step and moves to the
// next visible step. Selected plugins are processed in document order, whatever
// the order of selected, so earlier plugins' flags are visible to later ones.
// Group cardinality is not checked here.
func (s *Session) Advance(selected []Selection) error {
	if s.state != SessionAtStep {
		return &domain.InvalidSelectionError{Step: -1, Group: -1, Plugin: -1, Msg: "no step awaiting selections"}
	}

	chosen := make(map[Selection]bool, len(selected))
	for _, sel := range selected {
		if _, err := s.plugin(sel.Group, sel.Plugin); err != nil {
			return err
		}
		chosen[sel] = true
	}

	s.history = append(s.history, s.snapshot())
	step := &s.script.InstallSteps[s.step]

	for g := range step.Groups {
		group := &step.Groups[g]
		for p := range group.Plugins {
			if !chosen[Selection{Group: g, Plugin: p}] {
				continue
			}
			if err := s.apply(group, &group.Plugins[p]); err != nil {
				s.restore()
				return err
			}
		}
	}

	s.log.Debug().Str("step", step.Name).Int("selected", len(chosen)).Msg("step completed")

	if err := s.moveTo(s.step + 1); err != nil {
		s.restore()
		return err
	}
	return nil
}

// Back returns to the step before the last Advance, discarding its effects
func (s *Session) Back() error {
	if len(s.history) == 0 {
		return &domain.InvalidSelectionError{Step: s.StepIndex(), Group: -1, Plugin: -1, Msg: "no previous step"}
	}
	s.restore()
	s.log.Debug().Int("step", s.step).Msg("returned to previous step")
	return nil
}

// CanGoBack reports whether Back would succeed
func (s *Session) CanGoBack() bool {
	return len(s.history) > 0
}

// Flags returns a copy of the current flag state
func (s *Session) Flags() map[string]string {
	return maps.Clone(s.flags)
}

// Files returns the required files followed by the files of selected plugins
func (s *Session) Files() []domain.FileEntry {
	files := slices.Clone(s.script.RequiredFiles)
	return append(files, s.stepFiles...)
}

// SkippedSteps returns the indexes of steps hidden by their visibility condition
func (s *Session) SkippedSteps() []int {
	return slices.Clone(s.skipped)
}

// Script returns the script this session installs
func (s *Session) Script() *domain.Fomod {
	return s.script
}

// InstallPlan resolves conditional installs against the final state and returns
// the ordered plan. The session must be finished.
func (s *Session) InstallPlan() ([]domain.FileEntry, error) {
	if s.state != SessionFinished {
		return nil, fmt.Errorf("%w: session is %s", domain.ErrSessionNotFinished, s.state)
	}

	conditional, err := ResolveConditional(s.script.ConditionalFileInstalls, s.facts())
	if err != nil {
		return nil, fmt.Errorf("resolving conditional installs: %w", err)
	}

	plan := CompileFiles(s.script.RequiredFiles, s.stepFiles, conditional)
	s.log.Debug().Int("files", len(plan)).Int("conditional", len(conditional)).Msg("install plan compiled")
	return plan, nil
}

func (s *Session) apply(group *domain.Group, plugin *domain.Plugin) error {
	t, err := ResolvePluginType(plugin, s.facts())
	if err != nil {
		return err
	}
	if t == domain.PluginNotUsable {
		s.log.Debug().Str("group", group.Name).Str("plugin", plugin.Name).Msg("selected plugin is not usable, skipping")
		return nil
	}

	s.stepFiles = append(s.stepFiles, plugin.Files...)
	for _, flag := range plugin.ConditionFlags {
		s.flags[flag.Name] = flag.Value
	}
	return nil
}

// moveTo advances to the first visible step at or after i
func (s *Session) moveTo(i int) error {
	steps := s.script.InstallSteps
	for ; i < len(steps); i++ {
		visible, err := Evaluate(steps[i].Visible, s.facts())
		if err != nil {
			return fmt.Errorf("checking visibility of step %q: %w", steps[i].Name, err)
		}
		if visible {
			s.state = SessionAtStep
			s.step = i
			return nil
		}
		s.skipped = append(s.skipped, i)
		s.log.Debug().Str("step", steps[i].Name).Msg("step not visible, skipping")
	}

	s.state = SessionFinished
	s.step = len(steps)
	return nil
}

func (s *Session) plugin(group, plugin int) (*domain.Plugin, error) {
	step, ok := s.CurrentStep()
	if !ok {
		return nil, &domain.InvalidSelectionError{Step: -1, Group: group, Plugin: plugin, Msg: "no step awaiting selections"}
	}
	if group < 0 || group >= len(step.Groups) {
		return nil, &domain.InvalidSelectionError{Step: s.step, Group: group, Plugin: -1, Msg: "group out of range"}
	}
	plugins := step.Groups[group].Plugins
	if plugin < 0 || plugin >= len(plugins) {
		return nil, &domain.InvalidSelectionError{Step: s.step, Group: group, Plugin: plugin, Msg: "plugin not in group"}
	}
	return &plugins[plugin], nil
}

func (s *Session) snapshot() snapshot {
	return snapshot{
		step:      s.step,
		flags:     maps.Clone(s.flags),
		stepFiles: len(s.stepFiles),
		skipped:   len(s.skipped),
	}
}

func (s *Session) restore() {
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	s.state = SessionAtStep
	s.step = last.step
	s.flags = last.flags
	s.stepFiles = s.stepFiles[:last.stepFiles]
	s.skipped = s.skipped[:last.skipped]
}

func (s *Session) facts() FactProvider {
	return sessionFacts{session: s}
}

// sessionFacts layers the session's flags over the base provider
type sessionFacts struct {
	session *Session
}

func (f sessionFacts) CheckFile(path string, state domain.FileState) (bool, error) {
	if f.session.base == nil {
		return state == domain.FileMissing, nil
	}
	return f.session.base.CheckFile(path, state)
}

func (f sessionFacts) CheckFlag(flag, value string) (bool, error) {
	if v, ok := f.session.flags[flag]; ok {
		return v == value, nil
	}
	if f.session.base == nil {
		return false, nil
	}
	return f.session.base.CheckFlag(flag, value)
}

func (f sessionFacts) CheckGameVersion(version string) (bool, error) {
	if f.session.base == nil {
		return false, nil
	}
	return f.session.base.CheckGameVersion(version)
}

func (f sessionFacts) CheckInstallerVersion(version string) (bool, error) {
	if f.session.base == nil {
		return false, nil
	}
	return f.session.base.CheckInstallerVersion(version)
}
