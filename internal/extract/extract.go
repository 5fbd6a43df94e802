package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field names understood by Extract.
const (
	FieldColour       = "colour"
	FieldMileage      = "mileage"
	FieldEngineSize   = "engine size"
	FieldTransmission = "transmission"
	FieldFuelType     = "fuel type"
	FieldBodyStyle    = "body style"
	FieldDriveSystem  = "drive system"
)

// Extractor pulls individual vehicle fields out of raw HTML fragments. Each
// field is tried against an ordered list of pattern strategies; the first
// non-empty validated match wins and later strategies are not consulted.
// The extractor is pure: it never fetches, never writes, never panics.
type Extractor struct {
	validColours []string
	labels       map[string][]string
	validators   map[string]func(string) string
}

// New creates an Extractor with the given colour vocabulary.
func New(validColours []string) *Extractor {
	e := &Extractor{validColours: validColours}

	e.labels = map[string][]string{
		FieldColour:       {"Colour", "Color", "Exterior Colour", "Body Colour"},
		FieldMileage:      {"Mileage", "Miles", "Odometer"},
		FieldEngineSize:   {"Engine Size", "Engine", "Capacity"},
		FieldTransmission: {"Transmission", "Gearbox"},
		FieldFuelType:     {"Fuel Type", "Fuel"},
		FieldBodyStyle:    {"Body Style", "Body Type", "Body"},
		FieldDriveSystem:  {"Drivetrain", "Drive", "Driveline"},
	}

	e.validators = map[string]func(string) string{
		FieldColour:       e.normalizeColour,
		FieldMileage:      normalizeMileage,
		FieldEngineSize:   normalizeEngineSize,
		FieldTransmission: NormalizeTransmission,
		FieldFuelType:     NormalizeFuelType,
		FieldBodyStyle:    NormalizeBodyStyle,
		FieldDriveSystem:  NormalizeDriveSystem,
	}

	return e
}

// Extract returns the validated value for field in the given HTML fragment,
// or "" when no strategy yields a valid value. Invalid and ambiguous content
// behaves exactly like absent content.
func (e *Extractor) Extract(field, html string) string {
	labels, ok := e.labels[field]
	if !ok {
		return ""
	}
	validate := e.validators[field]

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	strategies := []func() string{
		func() string { return findSpecPair(doc, labels) },
		func() string { return findTableRow(doc, labels) },
		func() string { return findListItem(doc, labels) },
		func() string { return findLooseLabel(html, labels) },
	}

	for _, strategy := range strategies {
		raw := strategy()
		if raw == "" {
			continue
		}
		if value := validate(raw); value != "" {
			return value
		}
		// Invalid value: fall through to the next strategy, not the
		// next vehicle.
	}

	return ""
}

// findSpecPair scans structured name/value span pairs (spec panels, dl lists).
func findSpecPair(doc *goquery.Document, labels []string) string {
	if doc == nil {
		return ""
	}
	var value string

	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !matchesLabel(dt.Text(), labels) {
			return true
		}
		dd := dt.NextFiltered("dd")
		if dd.Length() > 0 {
			value = strings.TrimSpace(dd.Text())
			return false
		}
		return true
	})
	if value != "" {
		return value
	}

	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if !matchesLabel(span.Text(), labels) {
			return true
		}
		next := span.NextFiltered("span")
		if next.Length() > 0 {
			value = strings.TrimSpace(next.Text())
			return false
		}
		return true
	})
	return value
}

// findTableRow scans th/td specification tables.
func findTableRow(doc *goquery.Document, labels []string) string {
	if doc == nil {
		return ""
	}
	var value string
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		header := tr.Find("th").First()
		if header.Length() == 0 {
			header = tr.Find("td").First()
		}
		if !matchesLabel(header.Text(), labels) {
			return true
		}
		cell := tr.Find("td").Last()
		if cell.Length() > 0 && cell.Text() != header.Text() {
			value = strings.TrimSpace(cell.Text())
			return false
		}
		return true
	})
	return value
}

// findListItem scans "Label: Value" list items.
func findListItem(doc *goquery.Document, labels []string) string {
	if doc == nil {
		return ""
	}
	var value string
	doc.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		text := strings.TrimSpace(li.Text())
		before, after, found := strings.Cut(text, ":")
		if !found || !matchesLabel(before, labels) {
			return true
		}
		value = strings.TrimSpace(after)
		return value == ""
	})
	return value
}

// findLooseLabel is the last resort: a regex over the raw document text.
func findLooseLabel(html string, labels []string) string {
	for _, label := range labels {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(label) + `\s*[:\-]\s*([^<>\n|,]{1,60})`)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(html); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func matchesLabel(text string, labels []string) bool {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	for _, label := range labels {
		if strings.EqualFold(text, label) {
			return true
		}
	}
	return false
}

var (
	nonDigits     = regexp.MustCompile(`[^0-9]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	colourShape   = regexp.MustCompile(`^[A-Za-z][A-Za-z \-]{0,28}[A-Za-z]$|^[A-Za-z]{2}$`)
)

// normalizeColour trims parenthetical and pipe-suffix noise, keeps the first
// token and validates it against the colour vocabulary (exact or prefix,
// case-insensitive). Returns the vocabulary's canonical casing.
func (e *Extractor) normalizeColour(raw string) string {
	value := parenthetical.ReplaceAllString(raw, "")
	if idx := strings.Index(value, "|"); idx >= 0 {
		value = value[:idx]
	}
	value = whitespaceRun.ReplaceAllString(strings.TrimSpace(value), " ")
	if value == "" {
		return ""
	}

	first := strings.Fields(value)[0]
	if len(first) < 2 || len(first) > 30 || !colourShape.MatchString(first) {
		return ""
	}

	for _, colour := range e.validColours {
		if strings.EqualFold(first, colour) {
			return colour
		}
	}
	for _, colour := range e.validColours {
		if strings.HasPrefix(strings.ToLower(colour), strings.ToLower(first)) ||
			strings.HasPrefix(strings.ToLower(first), strings.ToLower(colour)) {
			return colour
		}
	}
	return ""
}

// normalizeMileage keeps the digits and re-appends the unit so downstream
// numeric extraction has a stable shape, e.g. "45,000 Miles" -> "45000 miles".
func normalizeMileage(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	return digits + " miles"
}

// MileageNumeric parses a normalized mileage string back to an int.
func MileageNumeric(text string) *int {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// normalizeEngineSize strips non-digits and range-checks to [600, 8000] cc.
// Out-of-range values are noise (litre figures, horsepower) and are dropped.
func normalizeEngineSize(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	cc, err := strconv.Atoi(digits)
	if err != nil || cc < 600 || cc > 8000 {
		return ""
	}
	return strconv.Itoa(cc)
}

// EngineSizeCC returns the validated engine displacement or nil.
func (e *Extractor) EngineSizeCC(html string) *int {
	value := e.Extract(FieldEngineSize, html)
	if value == "" {
		return nil
	}
	cc, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &cc
}

// NormalizeTransmission sub-matches a canonical gearbox token out of a longer
// phrase, e.g. "6 speed Manual" -> "Manual".
func NormalizeTransmission(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "semi"):
		return "Semi-auto"
	case strings.Contains(lower, "cvt"):
		return "CVT"
	case strings.Contains(lower, "auto"):
		return "Automatic"
	case strings.Contains(lower, "manual"):
		return "Manual"
	}
	return ""
}

// NormalizeFuelType maps a raw fuel phrase onto the fuel enumeration.
func NormalizeFuelType(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "plug"):
		return "Plug-in Hybrid"
	case strings.Contains(lower, "phev"):
		return "Plug-in Hybrid"
	case strings.Contains(lower, "hybrid"):
		return "Hybrid"
	case strings.Contains(lower, "electric"), lower == "ev", lower == "bev":
		return "Electric"
	case strings.Contains(lower, "diesel"):
		return "Diesel"
	case strings.Contains(lower, "petrol"), strings.Contains(lower, "gasoline"):
		return "Petrol"
	}
	return ""
}

// NormalizeBodyStyle maps a raw body phrase onto the body-style enumeration.
func NormalizeBodyStyle(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "hatch"):
		return "Hatchback"
	case strings.Contains(lower, "saloon"), strings.Contains(lower, "sedan"):
		return "Saloon"
	case strings.Contains(lower, "estate"), strings.Contains(lower, "touring"):
		return "Estate"
	case strings.Contains(lower, "suv"), strings.Contains(lower, "crossover"):
		return "SUV"
	case strings.Contains(lower, "coupe"):
		return "Coupe"
	case strings.Contains(lower, "convertible"), strings.Contains(lower, "cabriolet"):
		return "Convertible"
	case strings.Contains(lower, "mpv"), strings.Contains(lower, "people carrier"):
		return "MPV"
	case strings.Contains(lower, "4x4"):
		return "4x4"
	}
	return ""
}

// NormalizeDriveSystem folds the many drivetrain synonyms down to AWD/FWD/RWD.
func NormalizeDriveSystem(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "awd"), strings.Contains(lower, "4wd"),
		strings.Contains(lower, "4x4"), strings.Contains(lower, "all4"),
		strings.Contains(lower, "quattro"), strings.Contains(lower, "xdrive"),
		strings.Contains(lower, "4matic"), strings.Contains(lower, "all wheel"),
		strings.Contains(lower, "four wheel"):
		return "AWD"
	case strings.Contains(lower, "fwd"), strings.Contains(lower, "front"):
		return "FWD"
	case strings.Contains(lower, "rwd"), strings.Contains(lower, "rear"):
		return "RWD"
	}
	return ""
}
