package fetch

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-resty/resty/v2"

	"dealerscraper/internal/config"
)

// Fetcher retrieves a page body for a URL. Implementations follow redirects
// and time out per request; a non-2xx response is a failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close()
}

// HTTPFetcher fetches pages over plain HTTP with a configurable user agent.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher builds the default fetcher. TLS verification is on unless
// the config explicitly disables it for local testing.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2)

	if cfg.SkipTLSVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &HTTPFetcher{client: client}
}

// Fetch retrieves url and returns the body as a string.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}

// Close is a no-op for the HTTP fetcher.
func (f *HTTPFetcher) Close() {}

// New returns the fetcher selected by the config: a headless browser for
// JS-rendered dealer pages, plain HTTP otherwise.
func New(cfg config.FetchConfig) Fetcher {
	if cfg.UseBrowser {
		return NewBrowserFetcher(cfg)
	}
	return NewHTTPFetcher(cfg)
}
