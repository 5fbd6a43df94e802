package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"dealerscraper/internal/models"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	price := 12500.0

	vehicles := []*models.VehicleRecord{
		{
			ID: 1, Source: "dealer", ExternalID: "ford-focus-123", Title: "Ford Focus",
			Price: &price, DriveSystem: "FWD", Trim: "ST-Line",
			FirstRegistrationDate: "01/03/2019", MOTExpiry: "12/05/2026", Active: true,
		},
		{ID: 2, Source: "dealer", ExternalID: "vauxhall-corsa-456", Title: "Vauxhall Corsa", Active: true},
	}

	if err := Write(path, "dealer", vehicles); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	snap, err := Read(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if snap.Source != "dealer" || snap.Count != 2 || len(snap.Vehicles) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Vehicles[0].Title != "Ford Focus" {
		t.Fatalf("unexpected first vehicle: %+v", snap.Vehicles[0])
	}
	if snap.Vehicles[0].Price == nil || *snap.Vehicles[0].Price != 12500 {
		t.Fatalf("expected price to round-trip, got %v", snap.Vehicles[0].Price)
	}
	if snap.Vehicles[0].Trim != "ST-Line" || snap.Vehicles[0].MOTExpiry != "12/05/2026" {
		t.Fatalf("expected trim and MOT expiry to round-trip, got %+v", snap.Vehicles[0])
	}
}

func TestWriteEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	if err := Write(path, "dealer", nil); err != nil {
		t.Fatalf("failed to write empty snapshot: %v", err)
	}

	snap, err := Read(path)
	if err != nil {
		t.Fatalf("failed to read empty snapshot: %v", err)
	}
	if snap.Count != 0 {
		t.Fatalf("expected count 0, got %d", snap.Count)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}

func TestAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := Write(path, "dealer", nil); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	age, err := Age(path)
	if err != nil {
		t.Fatalf("failed to read age: %v", err)
	}
	if age < 0 || age > time.Minute {
		t.Fatalf("implausible snapshot age %v", age)
	}
}
