package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/config"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/models"
)

// maxAncestorDepth bounds the DOM walk-up when locating a card container
// around a detail-page anchor.
const maxAncestorDepth = 10

var (
	cardClassPattern  = regexp.MustCompile(`(?i)(vehicle|car[\-_ ]|card|listing|result|item|product)`)
	detailHrefPattern = regexp.MustCompile(`(?i)/(vehicle|vehicles|used-cars?|car-details|stock)/[^"'\s]+`)
	pricePattern      = regexp.MustCompile(`£\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	bgImagePattern    = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)
)

// CardParser locates vehicle cards in a listing page and turns each into an
// in-flight VehicleListing.
type CardParser struct {
	cfg       config.ScraperConfig
	extractor *extract.Extractor
}

// NewCardParser creates a card parser using the given extraction vocabulary.
func NewCardParser(cfg config.ScraperConfig, extractor *extract.Extractor) *CardParser {
	return &CardParser{cfg: cfg, extractor: extractor}
}

// Parse returns one listing per distinct external id found on the page, first
// occurrence winning. Cards that yield no resolvable vehicle URL are skipped
// silently; a malformed page yields an empty slice, never an error.
func (p *CardParser) Parse(html string) []*models.VehicleListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	cards := p.findCards(doc)

	var listings []*models.VehicleListing
	seen := make(map[string]bool)

	for _, card := range cards {
		listing := p.parseCard(card)
		if listing == nil {
			continue
		}
		// Same external id appearing twice on one page: keep the first.
		if seen[listing.ExternalID] {
			continue
		}
		seen[listing.ExternalID] = true
		listings = append(listings, listing)

		if p.cfg.MaxListings > 0 && len(listings) >= p.cfg.MaxListings {
			break
		}
	}

	return listings
}

// findCards tries structural card containers first, then falls back to
// walking up from detail-page anchors.
func (p *CardParser) findCards(doc *goquery.Document) []*goquery.Selection {
	var cards []*goquery.Selection

	doc.Find("div, article, li").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if !cardClassPattern.MatchString(class) {
			return
		}
		if sel.Find("a[href]").Length() == 0 {
			return
		}
		// Skip wrappers that contain other card candidates; the leaf
		// container is the card.
		inner := 0
		sel.Find("div, article, li").Each(func(_ int, child *goquery.Selection) {
			childClass, _ := child.Attr("class")
			if cardClassPattern.MatchString(childClass) && child.Find("a[href]").Length() > 0 {
				inner++
			}
		})
		if inner == 0 {
			cards = append(cards, sel)
		}
	})

	if len(cards) > 0 {
		return cards
	}

	// Fallback: every anchor at a detail URL, walking up to a plausible
	// container.
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if !detailHrefPattern.MatchString(href) {
			return
		}
		cards = append(cards, ascendToCard(anchor))
	})

	return cards
}

// ascendToCard walks up from an anchor looking for a card-like ancestor:
// a class matching the card pattern, a structural article/li, or failing
// that any div, bounded to ten levels.
func ascendToCard(anchor *goquery.Selection) *goquery.Selection {
	var firstDiv *goquery.Selection
	node := anchor

	for depth := 0; depth < maxAncestorDepth; depth++ {
		node = node.Parent()
		if node.Length() == 0 {
			break
		}
		tag := goquery.NodeName(node)
		class, _ := node.Attr("class")
		if cardClassPattern.MatchString(class) {
			return node
		}
		if tag == "article" || tag == "li" {
			return node
		}
		if tag == "div" && firstDiv == nil {
			firstDiv = node
		}
	}

	if firstDiv != nil {
		return firstDiv
	}
	return anchor
}

// parseCard extracts a single listing from a card selection. Returns nil when
// no vehicle URL or external id can be resolved.
func (p *CardParser) parseCard(card *goquery.Selection) *models.VehicleListing {
	detailURL := p.cardURL(card)
	if detailURL == "" {
		return nil
	}
	externalID := ExternalIDFromURL(detailURL)
	if externalID == "" {
		return nil
	}

	cardHTML, err := goquery.OuterHtml(card)
	if err != nil {
		cardHTML = ""
	}

	listing := &models.VehicleListing{
		ExternalID:    externalID,
		DetailPageURL: detailURL,
		Title:         cardTitle(card),
		ImageURLs:     p.cardImages(card),
	}

	if m := pricePattern.FindStringSubmatch(card.Text()); len(m) > 1 {
		listing.PriceText = "£" + m[1]
		if price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			listing.PriceNumeric = &price
		}
	}

	listing.Colour = p.extractor.Extract(extract.FieldColour, cardHTML)
	listing.Transmission = p.extractor.Extract(extract.FieldTransmission, cardHTML)
	listing.FuelType = p.extractor.Extract(extract.FieldFuelType, cardHTML)
	listing.BodyStyle = p.extractor.Extract(extract.FieldBodyStyle, cardHTML)
	listing.DriveSystem = p.extractor.Extract(extract.FieldDriveSystem, cardHTML)
	listing.EngineSizeCC = p.extractor.EngineSizeCC(cardHTML)
	if mileage := p.extractor.Extract(extract.FieldMileage, cardHTML); mileage != "" {
		listing.MileageText = mileage
		listing.MileageNumeric = extract.MileageNumeric(mileage)
	}

	title := extractTitleFields(p.extractor, listing, p.cfg.TrimVocabulary)
	listing.DescriptionShort = strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))

	return listing
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// extractTitleFields fills the listing's title-derived fields and returns the
// title used.
func extractTitleFields(e *extract.Extractor, listing *models.VehicleListing, trims []string) string {
	fields := e.ParseTitle(listing.Title, trims)
	listing.Doors = fields.Doors
	listing.PlateYear = fields.PlateYear
	listing.Trim = fields.Trim
	listing.Year = fields.Year
	if listing.DriveSystem == "" {
		listing.DriveSystem = fields.DriveSystem
	}
	return listing.Title
}

// cardURL finds the card's detail-page URL: an explicit anchor first, then a
// regex over the serialized card HTML.
func (p *CardParser) cardURL(card *goquery.Selection) string {
	var href string
	card.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		h, _ := anchor.Attr("href")
		if detailHrefPattern.MatchString(h) {
			href = h
			return false
		}
		return true
	})

	if href == "" {
		if html, err := goquery.OuterHtml(card); err == nil {
			href = detailHrefPattern.FindString(html)
		}
	}
	if href == "" {
		return ""
	}
	return absoluteURL(p.cfg.BaseURL, href)
}

// cardTitle picks the longest heading or anchor text under 500 characters.
func cardTitle(card *goquery.Selection) string {
	var title string
	card.Find("h1, h2, h3, h4, a").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(sel.Text(), " "))
		if len(text) > len(title) && len(text) < 500 {
			title = text
		}
	})
	return title
}

// cardImages collects image URLs in priority order (inline src, lazy
// data-src, CSS background-image), deduplicated by normalized absolute URL.
func (p *CardParser) cardImages(card *goquery.Selection) []string {
	return collectImages(card, p.cfg.BaseURL, nil, make(map[string]bool))
}

// collectImages appends every image URL found under sel to urls, honoring the
// src > data-src > background-image priority and deduplicating via seen.
func collectImages(sel *goquery.Selection, baseURL string, urls []string, seen map[string]bool) []string {
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		abs := absoluteURL(baseURL, raw)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	}

	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		add(src)
	})
	sel.Find("[data-src]").Each(func(_ int, el *goquery.Selection) {
		src, _ := el.Attr("data-src")
		add(src)
	})
	sel.Find("[style]").Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		if m := bgImagePattern.FindStringSubmatch(style); len(m) > 1 {
			add(m[1])
		}
	})

	return urls
}

// absoluteURL resolves href against the configured base URL and strips
// fragments so dedup keys are stable.
func absoluteURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	} else if strings.HasPrefix(href, "/") {
		href = strings.TrimSuffix(baseURL, "/") + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parsed.Fragment = ""
	return parsed.String()
}

// ExternalIDFromURL derives the stable external id from the last non-empty
// path segment of a detail-page URL.
func ExternalIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	id := segments[len(segments)-1]
	id = strings.TrimSuffix(id, ".html")
	if id == "" {
		return ""
	}
	return id
}
