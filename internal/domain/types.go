package domain

import "fmt"

// Position determines where the module name is drawn relative to the header image
type Position int

const (
	PositionRightOfImage Position = iota // Default
	PositionLeft
	PositionRight
)

func (p Position) String() string {
	switch p {
	case PositionLeft:
		return "Left"
	case PositionRight:
		return "Right"
	default:
		return "RightOfImage"
	}
}

// ParsePosition converts a schema string to Position
func ParsePosition(s string) (Position, bool) {
	switch s {
	case "Left":
		return PositionLeft, true
	case "Right":
		return PositionRight, true
	case "RightOfImage":
		return PositionRightOfImage, true
	default:
		return PositionRightOfImage, false
	}
}

// FileState is the state of an archive-relative file according to the mod index
type FileState int

const (
	FileMissing  FileState = iota // No installed mod owns the file
	FileInactive                  // Owned by a disabled mod
	FileActive                    // Owned by an enabled mod
)

func (s FileState) String() string {
	switch s {
	case FileMissing:
		return "Missing"
	case FileInactive:
		return "Inactive"
	case FileActive:
		return "Active"
	default:
		return "unknown"
	}
}

// ParseFileState converts a schema string to FileState
func ParseFileState(s string) (FileState, bool) {
	switch s {
	case "Missing":
		return FileMissing, true
	case "Inactive":
		return FileInactive, true
	case "Active":
		return FileActive, true
	default:
		return FileMissing, false
	}
}

// Operator combines the checks of a Dependencies node
type Operator int

const (
	OperatorAnd Operator = iota // Default
	OperatorOr
)

func (o Operator) String() string {
	if o == OperatorOr {
		return "Or"
	}
	return "And"
}

// ParseOperator converts a schema string to Operator
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "And":
		return OperatorAnd, true
	case "Or":
		return OperatorOr, true
	default:
		return OperatorAnd, false
	}
}

// GroupType is the advisory selection cardinality of a group
type GroupType int

const (
	SelectAny GroupType = iota
	SelectAtLeastOne
	SelectAtMostOne
	SelectExactlyOne
	SelectAll
)

func (t GroupType) String() string {
	switch t {
	case SelectAtLeastOne:
		return "SelectAtLeastOne"
	case SelectAtMostOne:
		return "SelectAtMostOne"
	case SelectExactlyOne:
		return "SelectExactlyOne"
	case SelectAll:
		return "SelectAll"
	default:
		return "SelectAny"
	}
}

// ParseGroupType converts a schema string to GroupType
func ParseGroupType(s string) (GroupType, bool) {
	switch s {
	case "SelectAny":
		return SelectAny, true
	case "SelectAtLeastOne":
		return SelectAtLeastOne, true
	case "SelectAtMostOne":
		return SelectAtMostOne, true
	case "SelectExactlyOne":
		return SelectExactlyOne, true
	case "SelectAll":
		return SelectAll, true
	default:
		return SelectAny, false
	}
}

// OrderType controls presentation order of steps, groups and plugins.
// It never changes evaluation order.
type OrderType int

const (
	OrderAscending OrderType = iota // Schema default
	OrderDescending
	OrderExplicit
)

func (o OrderType) String() string {
	switch o {
	case OrderDescending:
		return "Descending"
	case OrderExplicit:
		return "Explicit"
	default:
		return "Ascending"
	}
}

// ParseOrderType converts a schema string to OrderType
func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "Ascending":
		return OrderAscending, true
	case "Descending":
		return OrderDescending, true
	case "Explicit":
		return OrderExplicit, true
	default:
		return OrderAscending, false
	}
}

// PluginType describes how a plugin should be offered to the user
type PluginType int

const (
	PluginOptional PluginType = iota
	PluginRequired
	PluginRecommended
	PluginNotUsable
	PluginCouldBeUsable
)

func (t PluginType) String() string {
	switch t {
	case PluginRequired:
		return "Required"
	case PluginRecommended:
		return "Recommended"
	case PluginNotUsable:
		return "NotUsable"
	case PluginCouldBeUsable:
		return "CouldBeUsable"
	default:
		return "Optional"
	}
}

// ParsePluginType converts a schema string to PluginType
func ParsePluginType(s string) (PluginType, bool) {
	switch s {
	case "Optional":
		return PluginOptional, true
	case "Required":
		return PluginRequired, true
	case "Recommended":
		return PluginRecommended, true
	case "NotUsable":
		return PluginNotUsable, true
	case "CouldBeUsable":
		return PluginCouldBeUsable, true
	default:
		return PluginOptional, false
	}
}

// FileKind distinguishes file entries from folder entries
type FileKind int

const (
	KindFile FileKind = iota
	KindFolder
)

func (k FileKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// MarshalText encodes the kind as "file" or "folder"
func (k FileKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "file" or "folder"
func (k *FileKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*k = KindFile
	case "folder":
		*k = KindFolder
	default:
		return fmt.Errorf("unknown file kind %q", text)
	}
	return nil
}
