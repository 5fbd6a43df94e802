package database

import (
	"testing"

	"dealerscraper/internal/models"
)

func TestFingerprintStable(t *testing.T) {
	a := testListing()
	b := testListing()

	if Fingerprint(a, "Focus", 2019) != Fingerprint(b, "Focus", 2019) {
		t.Fatalf("expected identical listings to fingerprint identically")
	}
}

func TestFingerprintIgnoresWhitespaceRuns(t *testing.T) {
	a := testListing()
	b := testListing()
	b.Title = "  Ford   Focus 1.0 EcoBoost ST-Line 5dr "

	if Fingerprint(a, "Focus", 2019) != Fingerprint(b, "Focus", 2019) {
		t.Fatalf("expected whitespace runs to be normalized away")
	}
}

func TestFingerprintDetectsChanges(t *testing.T) {
	base := testListing()
	baseHash := Fingerprint(base, "Focus", 2019)

	changed := testListing()
	changed.PriceNumeric = floatPtr(11995)
	if Fingerprint(changed, "Focus", 2019) == baseHash {
		t.Fatalf("expected price change to change the fingerprint")
	}

	if Fingerprint(base, "Focus", 2020) == baseHash {
		t.Fatalf("expected year change to change the fingerprint")
	}
}

func TestFingerprintFallsBackToShortDescription(t *testing.T) {
	full := &models.VehicleListing{Title: "Car", DescriptionFull: "text"}
	short := &models.VehicleListing{Title: "Car", DescriptionShort: "text"}

	if Fingerprint(full, "m", 2020) != Fingerprint(short, "m", 2020) {
		t.Fatalf("expected short description to substitute for a missing full one")
	}
}

func TestHasChanged(t *testing.T) {
	if !HasChanged("abc", "") {
		t.Fatalf("expected first sighting to count as changed")
	}
	if HasChanged("abc", "abc") {
		t.Fatalf("expected equal digests to count as unchanged")
	}
	if !HasChanged("abc", "def") {
		t.Fatalf("expected differing digests to count as changed")
	}
}
