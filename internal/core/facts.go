package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DonovanMods/fomod/internal/domain"

	"github.com/Masterminds/semver/v3"
)

// FactProvider answers the questions install-script dependencies can ask.
// Errors are returned unchanged to the caller of the evaluation.
type FactProvider interface {
	CheckFile(path string, state domain.FileState) (bool, error)
	CheckFlag(flag, value string) (bool, error)
	CheckGameVersion(version string) (bool, error)
	CheckInstallerVersion(version string) (bool, error)
}

// FileStateLookup reports the state of an archive-relative file.
// Implemented by the sqlite mod index.
type FileStateLookup interface {
	FileState(gameID, profileName, relativePath string) (domain.FileState, error)
}

// InstallerVersion is the version reported for fommDependency checks when the
// configuration does not override it
const InstallerVersion = "0.13.21"

// IndexFacts answers file checks from the mod index and version checks from the
// configured game and installer versions. It knows no flags.
type IndexFacts struct {
	lookup           FileStateLookup
	gameID           string
	profileName      string
	gameVersion      string
	installerVersion string
}

// NewIndexFacts creates a provider backed by a mod index for one game profile
func NewIndexFacts(lookup FileStateLookup, game *domain.Game, profileName, installerVersion string) *IndexFacts {
	if installerVersion == "" {
		installerVersion = InstallerVersion
	}
	f := &IndexFacts{
		lookup:           lookup,
		profileName:      domain.ProfileOrDefault(profileName),
		installerVersion: installerVersion,
	}
	if game != nil {
		f.gameID = game.ID
		f.gameVersion = game.Version
	}
	return f
}

// CheckFile implements FactProvider
func (f *IndexFacts) CheckFile(path string, state domain.FileState) (bool, error) {
	if f.lookup == nil {
		return state == domain.FileMissing, nil
	}
	actual, err := f.lookup.FileState(f.gameID, f.profileName, path)
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", path, err)
	}
	return actual == state, nil
}

// CheckFlag implements FactProvider. Flags only exist inside a session.
func (f *IndexFacts) CheckFlag(flag, value string) (bool, error) {
	return false, nil
}

// CheckGameVersion implements FactProvider
func (f *IndexFacts) CheckGameVersion(version string) (bool, error) {
	if f.gameVersion == "" {
		return false, nil
	}
	return VersionAtLeast(f.gameVersion, version), nil
}

// CheckInstallerVersion implements FactProvider
func (f *IndexFacts) CheckInstallerVersion(version string) (bool, error) {
	return VersionAtLeast(f.installerVersion, version), nil
}

// StaticFacts is a FactProvider over fixed maps. Files absent from Files are Missing.
type StaticFacts struct {
	Files            map[string]domain.FileState // Keys are normalized paths
	Flags            map[string]string
	GameVersion      string
	InstallerVersion string
}

// CheckFile implements FactProvider
func (s *StaticFacts) CheckFile(path string, state domain.FileState) (bool, error) {
	actual, ok := s.Files[domain.NormalizePath(path)]
	if !ok {
		actual = domain.FileMissing
	}
	return actual == state, nil
}

// CheckFlag implements FactProvider
func (s *StaticFacts) CheckFlag(flag, value string) (bool, error) {
	v, ok := s.Flags[flag]
	return ok && v == value, nil
}

// CheckGameVersion implements FactProvider
func (s *StaticFacts) CheckGameVersion(version string) (bool, error) {
	if s.GameVersion == "" {
		return false, nil
	}
	return VersionAtLeast(s.GameVersion, version), nil
}

// CheckInstallerVersion implements FactProvider
func (s *StaticFacts) CheckInstallerVersion(version string) (bool, error) {
	have := s.InstallerVersion
	if have == "" {
		have = InstallerVersion
	}
	return VersionAtLeast(have, version), nil
}

// VersionAtLeast reports whether have >= want. Game versions often carry a fourth
// component ("1.5.97.0"); the first three are compared as semver and any remaining
// numeric components break ties. Unparseable versions never satisfy a requirement.
func VersionAtLeast(have, want string) bool {
	haveCore, haveExtra := splitVersion(have)
	wantCore, wantExtra := splitVersion(want)

	hv, err := semver.NewVersion(haveCore)
	if err != nil {
		return false
	}
	wv, err := semver.NewVersion(wantCore)
	if err != nil {
		return false
	}

	if c := hv.Compare(wv); c != 0 {
		return c > 0
	}

	for i := 0; i < len(haveExtra) || i < len(wantExtra); i++ {
		h, w := extraAt(haveExtra, i), extraAt(wantExtra, i)
		if h != w {
			return h > w
		}
	}
	return true
}

// splitVersion separates the first three dot components from the rest
func splitVersion(v string) (string, []string) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) <= 3 {
		return strings.Join(parts, "."), nil
	}
	return strings.Join(parts[:3], "."), parts[3:]
}

func extraAt(extra []string, i int) int {
	if i >= len(extra) {
		return 0
	}
	n, err := strconv.Atoi(extra[i])
	if err != nil {
		return 0
	}
	return n
}
