package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"dealerscraper/internal/config"
	"dealerscraper/internal/database"
	"dealerscraper/internal/extract"
	"dealerscraper/internal/fetch"
	"dealerscraper/internal/images"
	"dealerscraper/internal/models"
	"dealerscraper/internal/snapshot"
)

// Options are the per-run switches exposed on the CLI.
type Options struct {
	SkipDetails  bool // skip detail-page fetching
	SkipSnapshot bool // skip JSON snapshot generation
	Force        bool // write even when the change-detection hash matches
}

// Scraper runs the full pipeline: fetch listing page, parse cards, enrich
// from detail pages and the secondary lookup, reconcile into the store,
// deactivate unseen records, write the snapshot.
type Scraper struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	cards   *CardParser
	detail  *DetailEnricher
	lookup  *LookupClient
	db      *database.Database
	store   *images.Store

	// Politeness throttles, one per target host.
	detailLimiter *rate.Limiter
	lookupLimiter *rate.Limiter
}

// New wires the pipeline together. A nil resolver gets the default hyphen
// make heuristic for the secondary lookup.
func New(cfg *config.Config, fetcher fetch.Fetcher, db *database.Database, store *images.Store, resolver MakeResolver) *Scraper {
	extractor := extract.New(cfg.Scraper.ValidColours)

	delay := cfg.Scraper.DetailDelay
	if delay <= 0 {
		delay = time.Second
	}

	return &Scraper{
		cfg:           cfg,
		fetcher:       fetcher,
		cards:         NewCardParser(cfg.Scraper, extractor),
		detail:        NewDetailEnricher(cfg.Scraper, extractor),
		lookup:        NewLookupClient(cfg.Scraper, fetcher, extractor, resolver),
		db:            db,
		store:         store,
		detailLimiter: rate.NewLimiter(rate.Every(delay), 1),
		lookupLimiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run executes one scrape. It always returns a structured result: only a
// failed listing-page fetch, or persisting nothing at all, yields
// Success=false. Individual listing failures are counted and skipped.
func (s *Scraper) Run(ctx context.Context, opts Options) models.RunResult {
	result := models.RunResult{
		Source:    s.cfg.Scraper.Source,
		StartedAt: time.Now(),
	}

	log.Printf("🚗 Starting %s scrape: %s", s.cfg.Scraper.Source, s.cfg.Scraper.ListingURL)

	body, err := s.fetcher.Fetch(ctx, s.cfg.Scraper.ListingURL)
	if err != nil {
		// The listing page is the run's foundation; without it there
		// is nothing trustworthy to reconcile against.
		return s.fail(result, fmt.Errorf("listing page fetch failed: %w", err))
	}

	listings := s.cards.Parse(body)
	result.Stats.Found = len(listings)
	log.Printf("📋 Found %d listings", len(listings))

	var activeIDs []int64
	for _, listing := range listings {
		if !opts.SkipDetails {
			s.enrichFromDetail(ctx, listing)
		}
		s.enrichFromLookup(ctx, listing)

		id, outcome, err := s.persist(ctx, listing, opts.Force)
		if err != nil {
			log.Printf("❌ Failed to save %s: %v", listing.ExternalID, err)
			result.Stats.Errors++
			continue
		}
		activeIDs = append(activeIDs, id)

		switch outcome {
		case database.OutcomeInserted:
			result.Stats.Inserted++
			log.Printf("✅ New vehicle %s (id %d)", listing.ExternalID, id)
		case database.OutcomeUpdated:
			result.Stats.Updated++
		case database.OutcomeUnchanged:
			result.Stats.Skipped++
		}
	}

	if result.Stats.Found > 0 && len(activeIDs) == 0 {
		return s.fail(result, fmt.Errorf("all %d listings failed to persist", result.Stats.Found))
	}

	// Deactivation runs strictly after all persistence so a record never
	// races its own deactivation.
	deactivated, err := s.db.DeactivateMissing(s.cfg.Scraper.Source, activeIDs)
	if err != nil {
		log.Printf("❌ Deactivation failed: %v", err)
		result.Stats.Errors++
	}
	result.Stats.Deactivated = int(deactivated)

	if !opts.SkipSnapshot {
		if err := s.writeSnapshot(); err != nil {
			log.Printf("❌ Snapshot failed: %v", err)
			result.Stats.Errors++
		}
	}

	result.Success = true
	result.FinishedAt = time.Now()
	log.Printf("🎉 Run complete: %d found, %d inserted, %d updated, %d skipped, %d deactivated, %d errors",
		result.Stats.Found, result.Stats.Inserted, result.Stats.Updated,
		result.Stats.Skipped, result.Stats.Deactivated, result.Stats.Errors)
	return result
}

// enrichFromDetail fetches the vehicle's own page and merges it in. A failed
// fetch leaves the card data intact.
func (s *Scraper) enrichFromDetail(ctx context.Context, listing *models.VehicleListing) {
	if listing.DetailPageURL == "" {
		return
	}
	if err := s.detailLimiter.Wait(ctx); err != nil {
		return
	}

	body, err := s.fetcher.Fetch(ctx, listing.DetailPageURL)
	if err != nil {
		log.Printf("⏭️  Detail fetch failed for %s: %v", listing.ExternalID, err)
		return
	}
	s.detail.Enrich(listing, body)
}

// enrichFromLookup fills gaps from the secondary vehicle-data site. The
// lookup never overrides a field already resolved; detail-page data stays
// authoritative.
func (s *Scraper) enrichFromLookup(ctx context.Context, listing *models.VehicleListing) {
	if s.cfg.Scraper.LookupBaseURL == "" {
		return
	}
	if err := s.lookupLimiter.Wait(ctx); err != nil {
		return
	}

	found := s.lookup.Lookup(ctx, listing.Identity())
	if found.Empty() {
		return
	}
	if listing.Colour == "" {
		listing.Colour = found.Colour
	}
	if listing.FuelType == "" {
		listing.FuelType = found.FuelType
	}
	if listing.Transmission == "" {
		listing.Transmission = found.Transmission
	}
	if listing.FirstRegistrationDate == "" {
		listing.FirstRegistrationDate = found.RegistrationDate
	}
	if listing.MOTExpiry == "" {
		listing.MOTExpiry = found.MOTExpiry
	}
}

// persist reconciles one listing and stores its images. Image failures never
// fail the vehicle save.
func (s *Scraper) persist(ctx context.Context, listing *models.VehicleListing, force bool) (int64, database.UpsertOutcome, error) {
	attributeID, err := s.db.FindOrCreateAttribute(listing)
	if err != nil {
		return 0, 0, err
	}

	id, outcome, err := s.db.UpsertVehicle(listing, attributeID, s.cfg.Scraper.Source, force)
	if err != nil {
		return 0, 0, err
	}

	if outcome != database.OutcomeUnchanged && s.store != nil && len(listing.ImageURLs) > 0 {
		stored := s.store.Download(ctx, id, listing.ImageURLs)
		if err := s.db.SaveImages(id, stored); err != nil {
			log.Printf("⚠️  Image rows failed for %s: %v", listing.ExternalID, err)
		}
	}

	return id, outcome, nil
}

func (s *Scraper) writeSnapshot() error {
	vehicles, err := s.db.ActiveVehicles(s.cfg.Scraper.Source)
	if err != nil {
		return err
	}
	return snapshot.Write(s.cfg.Snapshot.Path, s.cfg.Scraper.Source, vehicles)
}

func (s *Scraper) fail(result models.RunResult, err error) models.RunResult {
	result.Success = false
	result.Error = err.Error()
	result.FinishedAt = time.Now()
	log.Printf("❌ Run failed: %v", err)
	return result
}
