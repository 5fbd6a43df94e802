package extract

import (
	"testing"
)

func testExtractor() *Extractor {
	return New([]string{
		"Black", "White", "Silver", "Grey", "Blue", "Red", "Green",
		"Yellow", "Orange", "Brown", "Beige", "Gold", "Purple",
	})
}

func TestExtractColourFromSpecPair(t *testing.T) {
	e := testExtractor()
	html := `<dl><dt>Colour</dt><dd>Silver</dd></dl>`
	if got := e.Extract(FieldColour, html); got != "Silver" {
		t.Fatalf("expected Silver, got %q", got)
	}
}

func TestExtractColourStripsMetallicSuffix(t *testing.T) {
	e := testExtractor()
	html := `<table><tr><th>Colour</th><td>silver metallic (used)</td></tr></table>`
	if got := e.Extract(FieldColour, html); got != "Silver" {
		t.Fatalf("expected canonical Silver, got %q", got)
	}
}

func TestExtractColourRejectsGarbage(t *testing.T) {
	e := testExtractor()
	html := `<li>Colour: xyz123</li>`
	if got := e.Extract(FieldColour, html); got != "" {
		t.Fatalf("expected garbage colour to be dropped, got %q", got)
	}
}

func TestExtractColourPrefixMatch(t *testing.T) {
	e := testExtractor()
	// "Gre" is a prefix of both Grey and Green; the first vocabulary member wins.
	html := `<dl><dt>Colour</dt><dd>Gre</dd></dl>`
	if got := e.Extract(FieldColour, html); got != "Grey" {
		t.Fatalf("expected Grey via prefix match, got %q", got)
	}
}

func TestExtractMileageNormalizes(t *testing.T) {
	e := testExtractor()
	html := `<li>Mileage: 45,000 Miles</li>`
	if got := e.Extract(FieldMileage, html); got != "45000 miles" {
		t.Fatalf("expected normalized mileage, got %q", got)
	}
}

func TestMileageNumeric(t *testing.T) {
	n := MileageNumeric("45000 miles")
	if n == nil || *n != 45000 {
		t.Fatalf("expected 45000, got %v", n)
	}
	if MileageNumeric("no digits") != nil {
		t.Fatalf("expected nil for digitless text")
	}
}

func TestEngineSizeRange(t *testing.T) {
	e := testExtractor()

	if cc := e.EngineSizeCC(`<li>Engine Size: 1998cc</li>`); cc == nil || *cc != 1998 {
		t.Fatalf("expected 1998, got %v", cc)
	}
	if cc := e.EngineSizeCC(`<li>Engine Size: 99999cc</li>`); cc != nil {
		t.Fatalf("expected out-of-range displacement to be dropped, got %d", *cc)
	}
	if cc := e.EngineSizeCC(`<li>Engine Size: 500cc</li>`); cc != nil {
		t.Fatalf("expected sub-600cc value to be dropped, got %d", *cc)
	}
}

func TestExtractFallsThroughInvalidStrategy(t *testing.T) {
	e := testExtractor()
	// The spec pair holds junk; the table row further down holds the real value.
	html := `<dl><dt>Colour</dt><dd>###</dd></dl><table><tr><th>Colour</th><td>Blue</td></tr></table>`
	if got := e.Extract(FieldColour, html); got != "Blue" {
		t.Fatalf("expected fall-through to table strategy, got %q", got)
	}
}

func TestExtractUnknownField(t *testing.T) {
	e := testExtractor()
	if got := e.Extract("upholstery", `<li>Upholstery: Leather</li>`); got != "" {
		t.Fatalf("expected unknown field to yield nothing, got %q", got)
	}
}

func TestNormalizeTransmission(t *testing.T) {
	cases := map[string]string{
		"6 speed Manual":    "Manual",
		"Automatic":         "Automatic",
		"Semi-Automatic":    "Semi-auto",
		"CVT Auto":          "CVT",
		"three on the tree": "",
		"7-Speed Auto DSG":  "Automatic",
	}
	for raw, want := range cases {
		if got := NormalizeTransmission(raw); got != want {
			t.Fatalf("NormalizeTransmission(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeFuelType(t *testing.T) {
	cases := map[string]string{
		"Petrol":               "Petrol",
		"Diesel":               "Diesel",
		"Plug-in Hybrid":       "Plug-in Hybrid",
		"PHEV":                 "Plug-in Hybrid",
		"Self-Charging Hybrid": "Hybrid",
		"Electric":             "Electric",
		"EV":                   "Electric",
		"seven":                "", // contains "ev" but is not electric
	}
	for raw, want := range cases {
		if got := NormalizeFuelType(raw); got != want {
			t.Fatalf("NormalizeFuelType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeDriveSystem(t *testing.T) {
	cases := map[string]string{
		"quattro":           "AWD",
		"xDrive":            "AWD",
		"Front Wheel Drive": "FWD",
		"RWD":               "RWD",
		"hovercraft":        "",
	}
	for raw, want := range cases {
		if got := NormalizeDriveSystem(raw); got != want {
			t.Fatalf("NormalizeDriveSystem(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestPlateYear(t *testing.T) {
	cases := map[int]int{
		9:  2009,
		23: 2023,
		49: 2049,
		64: 1964,
		99: 1999,
	}
	for code, want := range cases {
		if got := PlateYear(code); got != want {
			t.Fatalf("PlateYear(%d) = %d, want %d", code, got, want)
		}
	}
}

func TestExtractVRMHiddenInput(t *testing.T) {
	html := `<input type="hidden" name="vrm" value="AB12 CDE">`
	if got := ExtractVRM(html); got != "AB12CDE" {
		t.Fatalf("expected AB12CDE, got %q", got)
	}
}

func TestExtractVRMReversedAttributes(t *testing.T) {
	html := `<input type="hidden" value="YX65ABC" name="reg">`
	if got := ExtractVRM(html); got != "YX65ABC" {
		t.Fatalf("expected YX65ABC, got %q", got)
	}
}

func TestExtractVRMScriptVariable(t *testing.T) {
	html := `<script>var vrm = "LM19 XYZ";</script>`
	if got := ExtractVRM(html); got != "LM19XYZ" {
		t.Fatalf("expected LM19XYZ, got %q", got)
	}
}

func TestExtractVRMQuotedToken(t *testing.T) {
	html := `<div data-plate="P543 GHJ"></div>`
	if got := ExtractVRM(html); got != "P543GHJ" {
		t.Fatalf("expected prefix-format plate, got %q", got)
	}
}

func TestExtractVRMPriority(t *testing.T) {
	// A hidden input beats a quoted token appearing earlier in the page.
	html := `<span>"ZZ99 ZZZ"</span><input name="registration" value="AB12 CDE">`
	if got := ExtractVRM(html); got != "AB12CDE" {
		t.Fatalf("expected hidden input to win, got %q", got)
	}
}

func TestExtractVRMAbsent(t *testing.T) {
	if got := ExtractVRM(`<p>no plates here</p>`); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestPlateYearFromVRM(t *testing.T) {
	if y := PlateYearFromVRM("AB12CDE"); y == nil || *y != 2012 {
		t.Fatalf("expected 2012, got %v", y)
	}
	// September plate: 62 maps back to 12.
	if y := PlateYearFromVRM("AB62CDE"); y == nil || *y != 2012 {
		t.Fatalf("expected 2012 from september code, got %v", y)
	}
	if y := PlateYearFromVRM("P543GHJ"); y != nil {
		t.Fatalf("expected nil for legacy format, got %d", *y)
	}
}

func TestParseTitle(t *testing.T) {
	e := testExtractor()
	trims := []string{"SE", "ST-Line", "Titanium"}

	fields := e.ParseTitle("Ford Focus 1.0 EcoBoost ST-Line 5dr (19 plate)", trims)

	if fields.Doors == nil || *fields.Doors != 5 {
		t.Fatalf("expected 5 doors, got %v", fields.Doors)
	}
	if fields.PlateCode == nil || *fields.PlateCode != 19 {
		t.Fatalf("expected plate code 19, got %v", fields.PlateCode)
	}
	if fields.PlateYear == nil || *fields.PlateYear != 2019 {
		t.Fatalf("expected plate year 2019, got %v", fields.PlateYear)
	}
	if fields.Trim != "ST-Line" {
		t.Fatalf("expected longest trim to win, got %q", fields.Trim)
	}
}

func TestParseTitleDriveAndYear(t *testing.T) {
	e := testExtractor()

	fields := e.ParseTitle("2018 Audi A4 quattro Sport", []string{"Sport", "S Line"})
	if fields.DriveSystem != "AWD" {
		t.Fatalf("expected AWD from quattro token, got %q", fields.DriveSystem)
	}
	if fields.Year == nil || *fields.Year != 2018 {
		t.Fatalf("expected year 2018, got %v", fields.Year)
	}
	if fields.Trim != "Sport" {
		t.Fatalf("expected Sport trim, got %q", fields.Trim)
	}
}

func TestParseTitleNoMatches(t *testing.T) {
	e := testExtractor()
	fields := e.ParseTitle("Mystery Vehicle", nil)
	if fields.Doors != nil || fields.PlateCode != nil || fields.Year != nil || fields.Trim != "" || fields.DriveSystem != "" {
		t.Fatalf("expected zero-value fields, got %+v", fields)
	}
}
