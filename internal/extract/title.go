package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	doorsPattern     = regexp.MustCompile(`(?i)\b([2-7])\s*dr\b`)
	plateCodePattern = regexp.MustCompile(`(?i)\(\s*(\d{2})\s*plate\s*\)`)
	yearPattern      = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)
	driveToken       = regexp.MustCompile(`(?i)\b(awd|fwd|rwd|4wd|4x4|all4|quattro|xdrive|4matic)\b`)
)

// TitleFields holds everything derivable purely from a listing title.
type TitleFields struct {
	Doors       *int
	PlateCode   *int
	PlateYear   *int
	DriveSystem string
	Trim        string
	Year        *int
}

// ParseTitle derives doors, plate-age code and year, drivetrain token, trim
// keyword and a 4-digit year token from a listing title.
func (e *Extractor) ParseTitle(title string, trimVocabulary []string) TitleFields {
	var fields TitleFields

	if m := doorsPattern.FindStringSubmatch(title); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			fields.Doors = &n
		}
	}

	if m := plateCodePattern.FindStringSubmatch(title); len(m) > 1 {
		if code, err := strconv.Atoi(m[1]); err == nil {
			year := PlateYear(code)
			fields.PlateCode = &code
			fields.PlateYear = &year
		}
	}

	if m := driveToken.FindStringSubmatch(title); len(m) > 1 {
		fields.DriveSystem = NormalizeDriveSystem(m[1])
	}

	// Longest trim keyword wins so "ST-Line" beats "S".
	lowerTitle := strings.ToLower(title)
	for _, trim := range trimVocabulary {
		if containsWord(lowerTitle, strings.ToLower(trim)) && len(trim) > len(fields.Trim) {
			fields.Trim = trim
		}
	}

	if m := yearPattern.FindStringSubmatch(title); len(m) > 1 {
		if year, err := strconv.Atoi(m[1]); err == nil {
			fields.Year = &year
		}
	}

	return fields
}

// containsWord reports whether needle appears in haystack on word boundaries.
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
