package pipeline

import (
	"context"
	"log"
	"time"

	"comichub/pkg/store"
)

// UPCFetcher is the one slice of the IST connector the enrichment worker
// needs, kept narrow so tests can count fetches.
type UPCFetcher interface {
	FetchUPC(ctx context.Context, detailURL string) (string, error)
}

// EnrichUPC backfills missing UPCs on up to batchSize rows, in store
// order. batchSize is the sole throttle on outbound detail fetches per
// run; a row whose fetch fails or whose page has no UPC stays unset and
// is simply eligible again next run. Returns (rows filled, fetches
// issued).
func EnrichUPC(ctx context.Context, t *store.Table, fetcher UPCFetcher, batchSize int, now time.Time) (int, int) {
	filled := 0
	attempted := 0

	for _, row := range t.Rows {
		if attempted >= batchSize {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if row.UPC != "" || row.ISTURL == "" {
			continue
		}

		attempted++
		upc, err := fetcher.FetchUPC(ctx, row.ISTURL)
		if err != nil {
			log.Printf("[enrich] %s: %v", row.ISTURL, err)
			continue
		}
		if upc == "" {
			log.Printf("[enrich] %s: no UPC on detail page", row.ISTURL)
			continue
		}

		row.UPC = upc
		row.LastUpdated = now
		filled++
	}

	return filled, attempted
}
