package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DonovanMods/fomod/internal/domain"
)

// SaveInstalledMod inserts or updates an installed mod record
func (d *DB) SaveInstalledMod(mod *domain.InstalledMod) error {
	installedAt := mod.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	_, err := d.Exec(`
		INSERT INTO installed_mods (mod_id, game_id, profile_name, name, version, enabled, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mod_id, game_id, profile_name) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			enabled = excluded.enabled
	`, mod.ID, mod.GameID, mod.ProfileName, mod.Name, mod.Version, mod.Enabled, installedAt)
	if err != nil {
		return fmt.Errorf("saving installed mod: %w", err)
	}
	return nil
}

// GetInstalledMods returns all installed mods for a game/profile combination
func (d *DB) GetInstalledMods(gameID, profileName string) ([]domain.InstalledMod, error) {
	rows, err := d.Query(`
		SELECT mod_id, game_id, profile_name, name, version, enabled, installed_at
		FROM installed_mods
		WHERE game_id = ? AND profile_name = ?
		ORDER BY installed_at ASC, mod_id ASC
	`, gameID, profileName)
	if err != nil {
		return nil, fmt.Errorf("querying installed mods: %w", err)
	}
	defer rows.Close()

	var mods []domain.InstalledMod
	for rows.Next() {
		var mod domain.InstalledMod
		err := rows.Scan(
			&mod.ID, &mod.GameID, &mod.ProfileName,
			&mod.Name, &mod.Version, &mod.Enabled, &mod.InstalledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning installed mod: %w", err)
		}
		mods = append(mods, mod)
	}

	return mods, rows.Err()
}

// GetInstalledMod retrieves a single installed mod
func (d *DB) GetInstalledMod(modID, gameID, profileName string) (*domain.InstalledMod, error) {
	var mod domain.InstalledMod
	err := d.QueryRow(`
		SELECT mod_id, game_id, profile_name, name, version, enabled, installed_at
		FROM installed_mods
		WHERE mod_id = ? AND game_id = ? AND profile_name = ?
	`, modID, gameID, profileName).Scan(
		&mod.ID, &mod.GameID, &mod.ProfileName,
		&mod.Name, &mod.Version, &mod.Enabled, &mod.InstalledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrModNotFound
		}
		return nil, fmt.Errorf("querying installed mod: %w", err)
	}

	return &mod, nil
}

// SetModEnabled enables or disables a mod
func (d *DB) SetModEnabled(modID, gameID, profileName string, enabled bool) error {
	result, err := d.Exec(`
		UPDATE installed_mods SET enabled = ?
		WHERE mod_id = ? AND game_id = ? AND profile_name = ?
	`, enabled, modID, gameID, profileName)
	if err != nil {
		return fmt.Errorf("setting mod enabled: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrModNotFound
	}

	return nil
}

// DeleteInstalledMod removes an installed mod record and, by cascade, its files
func (d *DB) DeleteInstalledMod(modID, gameID, profileName string) error {
	result, err := d.Exec(`
		DELETE FROM installed_mods
		WHERE mod_id = ? AND game_id = ? AND profile_name = ?
	`, modID, gameID, profileName)
	if err != nil {
		return fmt.Errorf("deleting installed mod: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrModNotFound
	}

	return nil
}
