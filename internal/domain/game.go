package domain

// Game represents a moddable game the mod index tracks
type Game struct {
	ID      string // Unique slug, e.g., "skyrim-se"
	Name    string // Display name
	ModPath string // Where mods are deployed (informational)
	Version string // Installed game version, answers gameDependency checks
}

// DefaultProfile is used when no profile is configured
const DefaultProfile = "default"

// ProfileOrDefault returns the given profile name, or DefaultProfile if empty
func ProfileOrDefault(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
