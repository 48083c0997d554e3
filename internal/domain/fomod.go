package domain

import "fmt"

// RGB is a module name colour
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as a 6-digit upper-case hex string
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ModName is the title shown at the top of the installer
type ModName struct {
	Name     string
	Position Position
	Colour   RGB
}

// ModImage is the header image of the installer
type ModImage struct {
	Path      string
	ShowImage bool
	ShowFade  bool
	Height    int // -1 means auto
}

// DefaultModImage returns the image used when moduleImage is omitted
func DefaultModImage() ModImage {
	return ModImage{
		Path:      "screenshot",
		ShowImage: true,
		ShowFade:  true,
		Height:    -1,
	}
}

// FileEntry is a single file or folder install directive
type FileEntry struct {
	Kind            FileKind `json:"kind"`
	Source          string   `json:"source"`
	Destination     string   `json:"destination"`
	Priority        int      `json:"priority"`
	AlwaysInstall   bool     `json:"always_install,omitempty"`
	InstallIfUsable bool     `json:"install_if_usable,omitempty"`
}

// FlagDependency is satisfied when flag currently maps to value
type FlagDependency struct {
	Flag  string
	Value string
}

// FileDependency is satisfied when the mod index reports State for File
type FileDependency struct {
	File  string // Archive-relative path
	State FileState
}

// Dependencies is a composite condition over files, flags and versions
type Dependencies struct {
	Operator         Operator
	Files            []FileDependency
	Flags            []FlagDependency
	GameVersion      string // Empty when absent
	InstallerVersion string // Empty when absent
}

// IsEmpty reports whether the node contains no checks at all
func (d *Dependencies) IsEmpty() bool {
	return len(d.Files) == 0 && len(d.Flags) == 0 && d.GameVersion == "" && d.InstallerVersion == ""
}

// Pattern pairs a condition with a plugin type or a set of files
type Pattern struct {
	Type         PluginType // Only meaningful inside a dependency type
	Dependencies Dependencies
	Files        []FileEntry
}

// Flag is a condition flag set when a plugin is selected
type Flag struct {
	Name  string
	Value string
}

// DependencyType resolves a plugin type from an ordered list of patterns
type DependencyType struct {
	DefaultType PluginType
	Patterns    []Pattern
}

// PluginTypeDescriptor is either a fixed type or a conditional one.
// Conditional is nil for fixed types.
type PluginTypeDescriptor struct {
	Fixed       PluginType
	Conditional *DependencyType
}

// IsConditional reports whether the type depends on the current facts
func (d PluginTypeDescriptor) IsConditional() bool {
	return d.Conditional != nil
}

// Plugin is a selectable option inside a group
type Plugin struct {
	Name           string
	Description    string
	Image          string // Empty when absent
	ConditionFlags []Flag
	Files          []FileEntry
	TypeDescriptor PluginTypeDescriptor
}

// Group is a set of plugins with an advisory selection rule
type Group struct {
	Name    string
	Type    GroupType
	Order   OrderType
	Plugins []Plugin
}

// InstallStep is one page of the install wizard
type InstallStep struct {
	Name       string
	Visible    *Dependencies // Nil means always shown
	GroupOrder OrderType
	Groups     []Group
}

// Fomod is the root of a loaded install script
type Fomod struct {
	ModName                 ModName
	ModImage                ModImage
	ModuleDependencies      *Dependencies
	RequiredFiles           []FileEntry
	StepOrder               OrderType
	InstallSteps            []InstallStep
	ConditionalFileInstalls []Pattern
}

// ModInfo is the optional metadata from fomod/info.xml
type ModInfo struct {
	Name        string   `json:"name,omitempty"`
	Author      string   `json:"author,omitempty"`
	Version     string   `json:"version,omitempty"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}
