package database

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"dealerscraper/internal/models"
)

var hashWhitespace = regexp.MustCompile(`\s+`)

// Fingerprint digests the fields that constitute a meaningful change to a
// listing: title, price, mileage, description, model, year, fuel type and
// transmission, whitespace-normalized and joined in fixed order. Two records
// with equal fingerprints need no write.
func Fingerprint(l *models.VehicleListing, model string, year int) string {
	price := ""
	if l.PriceNumeric != nil {
		price = strconv.FormatFloat(*l.PriceNumeric, 'f', 2, 64)
	}
	mileage := ""
	if l.MileageNumeric != nil {
		mileage = strconv.Itoa(*l.MileageNumeric)
	}
	description := l.DescriptionFull
	if description == "" {
		description = l.DescriptionShort
	}

	parts := []string{
		l.Title, price, mileage, description,
		model, strconv.Itoa(year), l.FuelType, l.Transmission,
	}
	for i, part := range parts {
		parts[i] = hashWhitespace.ReplaceAllString(strings.TrimSpace(part), " ")
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// HasChanged reports whether a record needs writing: always true when there
// is no previous digest, else true on digest inequality. Purely a write-skip
// optimization, never a correctness decision.
func HasChanged(current, previous string) bool {
	if previous == "" {
		return true
	}
	return current != previous
}
