package domain

import (
	"path"
	"strings"
	"time"
)

// InstalledMod is a mod recorded in the mod index for a game profile
type InstalledMod struct {
	ID          string
	GameID      string
	ProfileName string
	Name        string
	Version     string
	Enabled     bool // Disabled mods make their files Inactive
	InstalledAt time.Time
}

// NormalizePath returns the canonical form of an archive-relative path used for
// file-state lookups: forward slashes, no leading "./" or "/", lower case.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.ToLower(strings.TrimPrefix(p, "/"))
}
