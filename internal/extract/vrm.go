package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// UK plate shapes: current (AB12 CDE), prefix (A123 BCD) and suffix (ABC 123D).
const plateShape = `[A-Z]{2}[0-9]{2}\s?[A-Z]{3}|[A-Z][0-9]{1,3}\s?[A-Z]{3}|[A-Z]{3}\s?[0-9]{1,3}[A-Z]`

// The four VRM sources in priority order: hidden form field (name first),
// hidden form field with the attributes reversed, a script variable
// assignment, and finally any quoted plate-shaped token in the document.
var vrmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<input[^>]*name=["'](?:vrm|reg|registration)["'][^>]*value=["']\s*(` + plateShape + `)\s*["']`),
	regexp.MustCompile(`(?i)<input[^>]*value=["']\s*(` + plateShape + `)\s*["'][^>]*name=["'](?:vrm|reg|registration)["']`),
	regexp.MustCompile(`(?i)(?:vrm|registration)\s*[=:]\s*["']\s*(` + plateShape + `)\s*["']`),
	regexp.MustCompile(`["'](` + plateShape + `)["']`),
}

var currentPlate = regexp.MustCompile(`^[A-Z]{2}([0-9]{2})[A-Z]{3}$`)

// ExtractVRM finds a UK registration mark in a detail page. First matching
// pattern wins; the result is uppercased with internal whitespace removed.
// Returns "" when no pattern matches.
func ExtractVRM(html string) string {
	upper := strings.ToUpper(html)
	for _, re := range vrmPatterns {
		if m := re.FindStringSubmatch(upper); len(m) > 1 {
			return strings.ReplaceAll(m[1], " ", "")
		}
	}
	return ""
}

// PlateYear converts a 2-digit plate age-identifier code to a calendar year:
// codes up to 49 belong to the 2000s, the rest to the 1900s.
func PlateYear(code int) int {
	if code <= 49 {
		return 2000 + code
	}
	return 1900 + code
}

// PlateYearFromVRM derives the registration year from a current-format VRM.
// September-period codes (51-99 within a current plate) have 50 subtracted
// before the year rule applies. Returns nil for legacy plate formats.
func PlateYearFromVRM(vrm string) *int {
	m := currentPlate.FindStringSubmatch(strings.ToUpper(strings.ReplaceAll(vrm, " ", "")))
	if len(m) < 2 {
		return nil
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	if code > 49 {
		code -= 50
	}
	year := PlateYear(code)
	return &year
}
