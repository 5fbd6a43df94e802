package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"dealerscraper/internal/config"
)

// BrowserFetcher renders pages through headless Chrome for dealer sites that
// assemble their listings with JavaScript. The browser is launched lazily on
// the first fetch and reused across requests.
type BrowserFetcher struct {
	browser *rod.Browser
	timeout time.Duration
}

// NewBrowserFetcher creates a browser-backed fetcher.
func NewBrowserFetcher(cfg config.FetchConfig) *BrowserFetcher {
	return &BrowserFetcher{timeout: cfg.Timeout}
}

func (f *BrowserFetcher) initBrowser() error {
	if f.browser != nil {
		return nil // Already initialized
	}

	path, _ := launcher.LookPath()
	u, err := launcher.New().
		Bin(path).
		Headless(true).
		Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	f.browser = browser
	return nil
}

// Fetch navigates a stealth page to url and returns the rendered HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.initBrowser(); err != nil {
		return "", err
	}

	page, err := stealth.Page(f.browser)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed to load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	return html, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		f.browser.MustClose()
		f.browser = nil
	}
}
