package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"comichub/internal/connector"
	"comichub/pkg/models"
	"comichub/pkg/store"
)

// Runner drives one pass of the pipeline over the loaded table. Fetches
// may fan out, but every merge goes through Apply on this goroutine: the
// table has exactly one writer for the whole run.
type Runner struct {
	Table  *store.Table
	Pages  connector.PageSource
	UPC    UPCFetcher
	OPB    connector.LookupSource
	Amazon connector.LookupSource

	// RunID tags this run's log lines.
	RunID string

	// LookupWorkers bounds the fan-out of per-row lookups in the OPB
	// and Amazon passes. Zero means sequential.
	LookupWorkers int
}

// RunIST walks the paginated listing feed from page 1 until an empty
// page or the feed's page ceiling, merging each page before fetching the
// next. A failed page fetch is logged and skipped; the run goes on.
func (r *Runner) RunIST(ctx context.Context, now time.Time) Counts {
	var counts Counts
	for page := 1; page <= r.Pages.MaxPages(); page++ {
		if ctx.Err() != nil {
			log.Printf("[pipeline %s] cancelled before page %d", r.RunID, page)
			break
		}
		records, err := r.Pages.FetchPage(ctx, page)
		if err != nil {
			log.Printf("[pipeline %s] %s page %d: %v", r.RunID, r.Pages.Name(), page, err)
			continue
		}
		if len(records) == 0 {
			break
		}
		counts.Add(Apply(r.Table, records, now))
	}
	return counts
}

// RunOPB looks up every titled row on OPB by slug and merges whatever
// comes back. Not-found rows are logged and left alone.
func (r *Runner) RunOPB(ctx context.Context, now time.Time) Counts {
	queries := make([]string, 0, len(r.Table.Rows))
	for _, row := range r.Table.Rows {
		if row.ISTTitle == "" {
			continue
		}
		queries = append(queries, connector.OPBSlug(row.ISTTitle))
	}
	return r.runLookups(ctx, r.OPB, queries, now)
}

// RunAmazon prices every row through the Camel search endpoint, by UPC
// when enrichment has supplied one and by rewritten title otherwise.
func (r *Runner) RunAmazon(ctx context.Context, now time.Time) Counts {
	queries := make([]string, 0, len(r.Table.Rows))
	for _, row := range r.Table.Rows {
		q := row.UPC
		if q == "" {
			q = connector.AmazonSearchTerms(row.ISTTitle)
		}
		if q == "" {
			continue
		}
		queries = append(queries, q)
	}
	return r.runLookups(ctx, r.Amazon, queries, now)
}

// RunEnrich is the UPC backfill pass; see EnrichUPC.
func (r *Runner) RunEnrich(ctx context.Context, batchSize int, now time.Time) (int, int) {
	return EnrichUPC(ctx, r.Table, r.UPC, batchSize, now)
}

// runLookups fans the queries out over a bounded worker pool, then
// merges the results in query order on the caller's goroutine. Lookup
// failures never fail the pass; each one is logged and dropped, to be
// retried naturally on the next run.
func (r *Runner) runLookups(ctx context.Context, src connector.LookupSource, queries []string, now time.Time) Counts {
	results := make([]*models.ListingRecord, len(queries))

	var g errgroup.Group
	if r.LookupWorkers > 0 {
		g.SetLimit(r.LookupWorkers)
	} else {
		g.SetLimit(1)
	}
	for i, q := range queries {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rec, err := src.Lookup(ctx, q)
			if err != nil {
				log.Printf("[pipeline %s] %s lookup %q: %v", r.RunID, src.Name(), q, err)
				return nil
			}
			if rec == nil {
				log.Printf("[pipeline %s] %s lookup %q: not found", r.RunID, src.Name(), q)
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait() // workers log their own failures and never return error

	records := make([]models.ListingRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return Apply(r.Table, records, now)
}
