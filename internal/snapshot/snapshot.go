package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dealerscraper/internal/models"
)

// Write serializes every active vehicle (with images) into a single JSON
// document for the downstream frontend.
func Write(path, source string, vehicles []*models.VehicleRecord) error {
	snap := models.Snapshot{
		GeneratedAt: time.Now(),
		Source:      source,
		Count:       len(vehicles),
		Vehicles:    vehicles,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	fmt.Printf("💾 Snapshot of %d vehicles written to %s\n", snap.Count, path)
	return nil
}

// Read loads a previously written snapshot; used by the read API to report
// snapshot freshness.
func Read(path string) (*models.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap models.Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Age returns how long ago the snapshot at path was generated.
func Age(path string) (time.Duration, error) {
	snap, err := Read(path)
	if err != nil {
		return 0, err
	}
	return time.Since(snap.GeneratedAt), nil
}
