package scraper

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/config"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/models"
)

// DetailEnricher re-runs field extraction against a vehicle's own page. The
// detail page is authoritative: any field it resolves overwrites the card
// value, but an unresolved field never erases one.
type DetailEnricher struct {
	cfg       config.ScraperConfig
	extractor *extract.Extractor
}

// NewDetailEnricher creates a detail enricher.
func NewDetailEnricher(cfg config.ScraperConfig, extractor *extract.Extractor) *DetailEnricher {
	return &DetailEnricher{cfg: cfg, extractor: extractor}
}

// Enrich merges detail-page data into listing in place. It operates on one
// already-fetched page; sequencing and rate limiting between detail fetches
// belong to the caller.
func (d *DetailEnricher) Enrich(listing *models.VehicleListing, detailHTML string) {
	overwrite := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	overwrite(&listing.Colour, d.extractor.Extract(extract.FieldColour, detailHTML))
	overwrite(&listing.Transmission, d.extractor.Extract(extract.FieldTransmission, detailHTML))
	overwrite(&listing.FuelType, d.extractor.Extract(extract.FieldFuelType, detailHTML))
	overwrite(&listing.BodyStyle, d.extractor.Extract(extract.FieldBodyStyle, detailHTML))
	overwrite(&listing.DriveSystem, d.extractor.Extract(extract.FieldDriveSystem, detailHTML))

	if cc := d.extractor.EngineSizeCC(detailHTML); cc != nil {
		listing.EngineSizeCC = cc
	}
	if mileage := d.extractor.Extract(extract.FieldMileage, detailHTML); mileage != "" {
		listing.MileageText = mileage
		listing.MileageNumeric = extract.MileageNumeric(mileage)
	}

	if description := d.fullDescription(detailHTML); description != "" {
		listing.DescriptionFull = description
	}

	// The true plate supersedes the URL-slug identity once seen.
	if vrm := extract.ExtractVRM(detailHTML); vrm != "" {
		listing.RegistrationMark = vrm
		if listing.PlateYear == nil {
			listing.PlateYear = extract.PlateYearFromVRM(vrm)
		}
	}

	listing.ImageURLs = d.unionImages(listing.ImageURLs, detailHTML)
}

// fullDescription reads the meta description tag, decodes HTML entities and
// truncates at the earliest configured cutoff phrase. The cutoffs strip
// boilerplate the dealer appends to every vehicle.
func (d *DetailEnricher) fullDescription(detailHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailHTML))
	if err != nil {
		return ""
	}

	content, ok := doc.Find(`meta[name="description"]`).Attr("content")
	if !ok || content == "" {
		return ""
	}

	description := strings.TrimSpace(html.UnescapeString(content))

	cut := len(description)
	for _, phrase := range d.cfg.DescriptionCutoffs {
		if idx := strings.Index(strings.ToLower(description), strings.ToLower(phrase)); idx >= 0 && idx < cut {
			cut = idx
		}
	}

	return strings.TrimSpace(description[:cut])
}

// unionImages appends detail-page images after the card's, deduplicated and
// order preserved.
func (d *DetailEnricher) unionImages(cardImages []string, detailHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailHTML))
	if err != nil {
		return cardImages
	}

	seen := make(map[string]bool)
	for _, url := range cardImages {
		seen[url] = true
	}
	return collectImages(doc.Selection, d.cfg.BaseURL, cardImages, seen)
}
