package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"comichub/pkg/models"
)

const camelSite = "https://camelcamelcamel.com"

// Amazon resolves a product code (UPC/ISBN) to the current Amazon price
// by way of CamelCamelCamel's search endpoint, which redirects a code
// query straight to the matching product page. The redirect target is
// the identity URL we keep.
type Amazon struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewAmazon() *Amazon {
	return &Amazon{BaseURL: camelSite, UserAgent: defaultUserAgent, Client: newHTTPClient()}
}

func (s *Amazon) Name() string { return "amazon" }

// AmazonSearchTerms rewrites an IST display title into the phrasing
// Amazon search understands: format codes become binding names and
// zero-padded issue numbers lose their padding. Used as the fallback
// query for rows that have no UPC yet.
func AmazonSearchTerms(istTitle string) string {
	words := strings.Fields(istTitle)
	for i, w := range words {
		switch {
		case w == "HC":
			words[i] = "Hardcover"
		case w == "TP":
			words[i] = "Paperback"
		case len(w) > 1 && w[0] == '0' && isDigits(w):
			words[i] = strings.TrimLeft(w, "0")
		}
	}
	return strings.Join(words, " ")
}

// Lookup searches for a product code or free-text query. A search that
// lands on no product (no Amazon price header) returns nil, nil.
func (s *Amazon) Lookup(ctx context.Context, query string) (*models.ListingRecord, error) {
	u := fmt.Sprintf("%s/search?sq=%s", s.BaseURL, url.QueryEscape(query))
	doc, finalURL, err := fetchDocument(ctx, s.Client, u, s.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("amazon: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	header := doc.Find("div.pwheader.amazon").First()
	if header.Length() == 0 {
		return nil, nil
	}
	price := models.ParsePrice(header.Find("span.price").First().Text())

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = query
	}

	rec := &models.ListingRecord{
		Source:    models.SourceAmazon,
		Title:     title,
		DetailURL: finalURL,
		Price:     price,
	}
	if price.Known {
		rec.Status = models.StatusInStock
	}
	return rec, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
