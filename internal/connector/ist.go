package connector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"comichub/pkg/models"
)

const istSite = "https://www.instocktrades.com"

// IST scrapes the In Stock Trades publisher listing feed. The feed pages
// with a ?pg=N query parameter starting at 1 and simply stops yielding
// items when exhausted; MaxPage is a safety ceiling, and hitting it is
// normal termination, not an error.
type IST struct {
	BaseURL  string // site root, also the prefix for relative item links
	ListPath string // publisher feed, e.g. /publishers/dc
	MaxPage  int
	Client   *http.Client
}

// NewIST returns a connector for the DC publisher feed.
func NewIST() *IST {
	return &IST{
		BaseURL:  istSite,
		ListPath: "/publishers/dc",
		MaxPage:  30,
		Client:   newHTTPClient(),
	}
}

func (s *IST) Name() string { return "ist" }

func (s *IST) MaxPages() int { return s.MaxPage }

// FetchPage scrapes one page of the listing feed. Items missing an
// expected element are skipped with a warning; the rest of the page is
// still returned. An empty slice means the feed is exhausted.
func (s *IST) FetchPage(ctx context.Context, page int) ([]models.ListingRecord, error) {
	url := fmt.Sprintf("%s%s?pg=%d", s.BaseURL, s.ListPath, page)
	doc, _, err := fetchDocument(ctx, s.Client, url, "")
	if err != nil {
		return nil, fmt.Errorf("ist: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	var records []models.ListingRecord
	doc.Find("div.item").Each(func(i int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("div.title").Text())
		if title == "" {
			log.Printf("[ist] page %d item %d: missing title, skipped", page, i)
			return
		}
		href, ok := item.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			log.Printf("[ist] page %d item %d (%s): missing detail link, skipped", page, i, title)
			return
		}

		rec := models.ListingRecord{
			Source:    models.SourceIST,
			Title:     title,
			DetailURL: s.absoluteURL(href),
			Status:    models.StatusInStock,
		}
		if src, ok := item.Find("img").First().Attr("src"); ok {
			rec.ImageURL = src
		}
		if priceText := item.Find("div.price").First().Text(); priceText != "" {
			rec.Price = models.ParsePrice(priceText)
		}
		records = append(records, rec)
	})

	return records, nil
}

// FetchUPC fetches an item's detail page and extracts its UPC, with the
// site's "UPC: " label prefix stripped. A detail page without a UPC
// element yields "", nil: the row just stays unenriched.
func (s *IST) FetchUPC(ctx context.Context, detailURL string) (string, error) {
	doc, _, err := fetchDocument(ctx, s.Client, detailURL, "")
	if err != nil {
		return "", fmt.Errorf("ist: %w", err)
	}
	if doc == nil {
		return "", nil
	}

	upc := strings.TrimSpace(doc.Find("div.upc").First().Text())
	upc = strings.TrimPrefix(upc, "UPC: ")
	return strings.TrimSpace(upc), nil
}

// absoluteURL resolves the relative item links the feed emits. This is
// done here, at the connector boundary, so nothing downstream ever sees
// a partial URL.
func (s *IST) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return s.BaseURL + href
}
