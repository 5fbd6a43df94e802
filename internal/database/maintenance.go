package database

import (
	"fmt"
)

// Maintenance operations. These are explicit, operator-invoked cleanups; the
// main run never calls them.

// CleanupOrphanAttributes deletes attribute records no vehicle references.
// Attributes are never deleted automatically during a run, so orphans
// accumulate as models leave the forecourt for good.
func (d *Database) CleanupOrphanAttributes() (int64, error) {
	result, err := d.db.Exec(`
		DELETE FROM vehicle_attributes
		WHERE id NOT IN (SELECT DISTINCT attribute_id FROM vehicles)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphan attributes: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted attributes: %w", err)
	}
	return count, nil
}

// MergeDuplicateIdentities collapses rows that share a registration mark into
// the oldest row: historically a vehicle could be keyed by its URL slug on
// one run and by its true plate on a later one, leaving two rows for one
// physical car. Image rows move to the kept row; the duplicates are deleted
// (cascading their remaining images).
func (d *Database) MergeDuplicateIdentities(source string) (int64, error) {
	rows, err := d.db.Query(`
		SELECT registration_mark FROM vehicles
		WHERE source = ? AND registration_mark IS NOT NULL AND registration_mark != ''
		GROUP BY registration_mark HAVING COUNT(*) > 1
	`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to find duplicate identities: %w", err)
	}

	var marks []string
	for rows.Next() {
		var mark string
		if err := rows.Scan(&mark); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan registration mark: %w", err)
		}
		marks = append(marks, mark)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var merged int64
	for _, mark := range marks {
		if err := d.mergeIdentity(source, mark); err != nil {
			return merged, err
		}
		merged++
	}
	return merged, nil
}

func (d *Database) mergeIdentity(source, mark string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	idRows, err := tx.Query(`
		SELECT id FROM vehicles
		WHERE source = ? AND registration_mark = ?
		ORDER BY created_at, id
	`, source, mark)
	if err != nil {
		return fmt.Errorf("failed to load duplicates for %s: %w", mark, err)
	}

	var ids []int64
	for idRows.Next() {
		var id int64
		if err := idRows.Scan(&id); err != nil {
			idRows.Close()
			return fmt.Errorf("failed to scan vehicle id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := idRows.Err(); err != nil {
		idRows.Close()
		return err
	}
	idRows.Close()

	if len(ids) < 2 {
		return nil
	}

	// Keep the oldest row; it carries the original sighting history.
	keep := ids[0]
	for _, duplicate := range ids[1:] {
		// Carry over images the kept row does not already have.
		if _, err := tx.Exec(`
			UPDATE OR IGNORE vehicle_images SET vehicle_id = ? WHERE vehicle_id = ?
		`, keep, duplicate); err != nil {
			return fmt.Errorf("failed to move images from %d: %w", duplicate, err)
		}
		if _, err := tx.Exec(`DELETE FROM vehicles WHERE id = ?`, duplicate); err != nil {
			return fmt.Errorf("failed to delete duplicate %d: %w", duplicate, err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE vehicles SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, keep); err != nil {
		return fmt.Errorf("failed to stamp merged vehicle %d: %w", keep, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge for %s: %w", mark, err)
	}

	fmt.Printf("Merged %d duplicate rows for %s\n", len(ids)-1, mark)
	return nil
}
