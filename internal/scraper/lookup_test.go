package scraper

import (
	"context"
	"fmt"
	"testing"

	"dealerscraper/internal/extract"
)

// stubFetcher serves canned pages by URL and records what was requested.
type stubFetcher struct {
	pages    map[string]string
	requests []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.requests = append(f.requests, url)
	body, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return body, nil
}

func (f *stubFetcher) Close() {}

func TestHyphenMakeResolver(t *testing.T) {
	if got := HyphenMakeResolver("ford-focus-123"); got != "ford" {
		t.Fatalf("expected ford, got %q", got)
	}
	if got := HyphenMakeResolver("AB12CDE"); got != "" {
		t.Fatalf("expected plate-style id to resolve to nothing, got %q", got)
	}
	if got := HyphenMakeResolver(""); got != "" {
		t.Fatalf("expected empty id to resolve to nothing, got %q", got)
	}
}

func newTestLookup(fetcher *stubFetcher, baseURL string) *LookupClient {
	cfg := testScraperConfig()
	cfg.LookupBaseURL = baseURL
	return NewLookupClient(cfg, fetcher, extract.New(cfg.ValidColours), nil)
}

const lookupPage = `<html><body><table>
<tr><th>Colour</th><td>Red</td></tr>
<tr><th>Fuel Type</th><td>Petrol</td></tr>
<tr><th>First Registration</th><td>01/03/2019</td></tr>
<tr><th>MOT Expiry</th><td>12/05/2026</td></tr>
</table></body></html>`

func TestLookup(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://lookup.example/ford/ford-focus-123": lookupPage,
	}}
	c := newTestLookup(fetcher, "https://lookup.example")

	result := c.Lookup(context.Background(), "ford-focus-123")

	if result.Colour != "Red" {
		t.Fatalf("expected Red, got %q", result.Colour)
	}
	if result.FuelType != "Petrol" {
		t.Fatalf("expected Petrol, got %q", result.FuelType)
	}
	if result.RegistrationDate != "01/03/2019" {
		t.Fatalf("expected registration date, got %q", result.RegistrationDate)
	}
	if result.MOTExpiry != "12/05/2026" {
		t.Fatalf("expected MOT expiry, got %q", result.MOTExpiry)
	}
}

func TestLookupSkipsUnresolvableMake(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{}}
	c := newTestLookup(fetcher, "https://lookup.example")

	result := c.Lookup(context.Background(), "AB12CDE")
	if !result.Empty() {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if len(fetcher.requests) != 0 {
		t.Fatalf("expected no fetch for unresolvable make, got %v", fetcher.requests)
	}
}

func TestLookupFetchFailureIsRecoverable(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{}}
	c := newTestLookup(fetcher, "https://lookup.example")

	result := c.Lookup(context.Background(), "ford-focus-123")
	if !result.Empty() {
		t.Fatalf("expected empty result on fetch failure, got %+v", result)
	}
}

func TestLookupDisabledWithoutBaseURL(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{}}
	c := newTestLookup(fetcher, "")

	result := c.Lookup(context.Background(), "ford-focus-123")
	if !result.Empty() {
		t.Fatalf("expected empty result when disabled, got %+v", result)
	}
	if len(fetcher.requests) != 0 {
		t.Fatalf("expected no fetch when disabled, got %v", fetcher.requests)
	}
}
