package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/config"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/fetch"
)

// MakeResolver derives a manufacturer slug from a vehicle identifier, used to
// build the lookup URL. Returning "" skips the lookup for that identifier.
type MakeResolver func(identifier string) string

// HyphenMakeResolver is the default resolver: the token before the first
// hyphen. Works for slug-style ids ("ford-focus-..."); plate-style inputs
// have no hyphen and resolve to "", turning the lookup into a no-op.
func HyphenMakeResolver(identifier string) string {
	before, _, found := strings.Cut(identifier, "-")
	if !found {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(before))
}

// LookupResult is the partial field set a lookup can contribute. Zero-value
// fields mean the lookup had nothing; absence is a normal outcome.
type LookupResult struct {
	Colour           string
	RegistrationDate string
	MOTExpiry        string
	FuelType         string
	Transmission     string
}

// Empty reports whether the lookup yielded nothing.
func (r LookupResult) Empty() bool {
	return r == LookupResult{}
}

// LookupClient enriches vehicles from a secondary vehicle-data site. The
// site's markup is foreign and may change without notice, so extraction is
// defensive throughout: any failure returns an empty result, never an error,
// and never blocks the pipeline.
type LookupClient struct {
	cfg         config.ScraperConfig
	fetcher     fetch.Fetcher
	extractor   *extract.Extractor
	resolveMake MakeResolver
}

// NewLookupClient creates a lookup client. A nil resolver gets the default
// hyphen heuristic.
func NewLookupClient(cfg config.ScraperConfig, fetcher fetch.Fetcher, extractor *extract.Extractor, resolver MakeResolver) *LookupClient {
	if resolver == nil {
		resolver = HyphenMakeResolver
	}
	return &LookupClient{cfg: cfg, fetcher: fetcher, extractor: extractor, resolveMake: resolver}
}

// Lookup queries the lookup site for a registration mark or slug and scans
// its specifications table.
func (c *LookupClient) Lookup(ctx context.Context, identifier string) LookupResult {
	if c.cfg.LookupBaseURL == "" || identifier == "" {
		return LookupResult{}
	}

	makeSlug := c.resolveMake(identifier)
	if makeSlug == "" {
		log.Printf("🔎 Lookup skipped for %s: no make could be derived", identifier)
		return LookupResult{}
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.LookupBaseURL, "/"), makeSlug, identifier)
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("🔎 Lookup fetch failed for %s: %v", identifier, err)
		return LookupResult{}
	}

	return c.parse(body)
}

// parse scans the specifications table for colour plus a handful of literal
// label matches.
func (c *LookupClient) parse(body string) LookupResult {
	var result LookupResult

	result.Colour = c.extractor.Extract(extract.FieldColour, body)
	result.FuelType = c.extractor.Extract(extract.FieldFuelType, body)
	result.Transmission = c.extractor.Extract(extract.FieldTransmission, body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return result
	}

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(tr.Find("th, td").First().Text()))
		value := strings.TrimSpace(tr.Find("td").Last().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "first registration"), strings.Contains(label, "registration date"):
			if result.RegistrationDate == "" {
				result.RegistrationDate = value
			}
		case strings.Contains(label, "mot"):
			if result.MOTExpiry == "" {
				result.MOTExpiry = value
			}
		}
	})

	return result
}
