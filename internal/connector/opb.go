package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"comichub/pkg/models"
)

const opbSite = "https://organicpricedbooks.com"

// OPB looks up a single product on Organic Priced Books by its URL slug.
// The product page carries both a compare-at (cover) price and the
// current selling price.
type OPB struct {
	BaseURL string
	Client  *http.Client
}

func NewOPB() *OPB {
	return &OPB{BaseURL: opbSite, Client: newHTTPClient()}
}

func (s *OPB) Name() string { return "opb" }

// OPBSlug converts a display title into OPB's product slug: whitespace
// runs become single dashes, everything else is left alone.
func OPBSlug(title string) string {
	return strings.Join(strings.Fields(title), "-")
}

// Lookup fetches the product page for the given slug. A missing product
// (404, or a page without a product title) returns nil, nil.
func (s *OPB) Lookup(ctx context.Context, slug string) (*models.ListingRecord, error) {
	url := s.BaseURL + "/products/" + slug
	doc, finalURL, err := fetchDocument(ctx, s.Client, url, "")
	if err != nil {
		return nil, fmt.Errorf("opb: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	title := strings.TrimSpace(doc.Find("h1.product-title").First().Text())
	if title == "" {
		return nil, nil
	}

	rec := &models.ListingRecord{
		Source:    models.SourceOPB,
		Title:     title,
		DetailURL: finalURL,
		Retail:    models.ParsePrice(doc.Find("span.price__compare-at--single").First().Text()),
		Price:     models.ParsePrice(doc.Find("span.price__current--min").First().Text()),
	}
	if rec.Price.Known {
		rec.Status = models.StatusInStock
	}
	return rec, nil
}
