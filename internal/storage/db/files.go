package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/DonovanMods/fomod/internal/domain"
)

// FileOwner represents the mod that owns a deployed file
type FileOwner struct {
	ModID   string
	Enabled bool
}

// SaveDeployedFile records that a file is deployed by a specific mod.
// Uses upsert to handle overwrites (new mod takes ownership). The path is stored
// normalized so lookups are case- and separator-insensitive.
func (d *DB) SaveDeployedFile(gameID, profileName, relativePath, modID string) error {
	_, err := d.Exec(`
		INSERT INTO deployed_files (game_id, profile_name, relative_path, mod_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id, profile_name, relative_path) DO UPDATE SET
			mod_id = excluded.mod_id,
			deployed_at = CURRENT_TIMESTAMP
	`, gameID, profileName, domain.NormalizePath(relativePath), modID)
	if err != nil {
		return fmt.Errorf("saving deployed file: %w", err)
	}
	return nil
}

// GetFileOwner returns the mod that owns a specific file path.
// Returns nil if no mod owns the file.
func (d *DB) GetFileOwner(gameID, profileName, relativePath string) (*FileOwner, error) {
	var owner FileOwner
	err := d.QueryRow(`
		SELECT f.mod_id, m.enabled
		FROM deployed_files f
		JOIN installed_mods m
			ON m.mod_id = f.mod_id AND m.game_id = f.game_id AND m.profile_name = f.profile_name
		WHERE f.game_id = ? AND f.profile_name = ? AND f.relative_path = ?
	`, gameID, profileName, domain.NormalizePath(relativePath)).Scan(&owner.ModID, &owner.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting file owner: %w", err)
	}
	return &owner, nil
}

// FileState classifies a file: Missing without an owner, Active when the owning
// mod is enabled, Inactive otherwise
func (d *DB) FileState(gameID, profileName, relativePath string) (domain.FileState, error) {
	owner, err := d.GetFileOwner(gameID, profileName, relativePath)
	if err != nil {
		return domain.FileMissing, err
	}
	switch {
	case owner == nil:
		return domain.FileMissing, nil
	case owner.Enabled:
		return domain.FileActive, nil
	default:
		return domain.FileInactive, nil
	}
}

// DeleteDeployedFiles removes all deployed file records for a specific mod.
func (d *DB) DeleteDeployedFiles(gameID, profileName, modID string) error {
	_, err := d.Exec(`
		DELETE FROM deployed_files
		WHERE game_id = ? AND profile_name = ? AND mod_id = ?
	`, gameID, profileName, modID)
	if err != nil {
		return fmt.Errorf("deleting deployed files: %w", err)
	}
	return nil
}

// GetDeployedFilesForMod returns all file paths deployed by a specific mod.
func (d *DB) GetDeployedFilesForMod(gameID, profileName, modID string) ([]string, error) {
	rows, err := d.Query(`
		SELECT relative_path FROM deployed_files
		WHERE game_id = ? AND profile_name = ? AND mod_id = ?
		ORDER BY relative_path
	`, gameID, profileName, modID)
	if err != nil {
		return nil, fmt.Errorf("querying deployed files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}
