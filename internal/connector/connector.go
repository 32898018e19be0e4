// Package connector holds one adapter per external site. Each connector
// fetches raw HTML for a page or a query and maps it into flat
// models.ListingRecord values at the boundary; nothing outside this
// package ever handles markup or relative URLs.
package connector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"comichub/pkg/models"
)

// Browser-ish User-Agent; some sources (the Amazon-family ones at least)
// refuse Go's default client string outright.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// PageSource is implemented by paginated listing feeds. Pages count from
// 1; a page with zero records means the feed is exhausted.
type PageSource interface {
	Name() string
	FetchPage(ctx context.Context, page int) ([]models.ListingRecord, error)
	MaxPages() int
}

// LookupSource is implemented by query-style sources: one identifier in,
// at most one record out. A nil record with a nil error means the source
// has no such product, which is a normal outcome, not a failure.
type LookupSource interface {
	Name() string
	Lookup(ctx context.Context, query string) (*models.ListingRecord, error)
}

// TransportError marks a fetch that failed before any HTML could be
// parsed: timeout, DNS, non-2xx status. These are retryable on the next
// run; the caller logs and moves on to the next page or row.
type TransportError struct {
	URL    string
	Status int // 0 when the request itself failed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 12 * time.Second}
}

// fetchDocument GETs url and parses the body. It returns the final URL
// after redirects: the Camel search endpoint answers a code lookup by
// redirecting straight to the product page, and that final URL is the
// identity link we store.
func fetchDocument(ctx context.Context, client *http.Client, url, userAgent string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request %s: %w", url, err)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &TransportError{URL: url, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", url, err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return doc, finalURL, nil
}
