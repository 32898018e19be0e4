package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comichub/internal/connector"
	"comichub/pkg/models"
	"comichub/pkg/store"
)

type fakeFeed struct {
	pages   [][]models.ListingRecord
	fetched []int
	max     int
	fail    map[int]error
}

func (f *fakeFeed) Name() string  { return "ist" }
func (f *fakeFeed) MaxPages() int { return f.max }

func (f *fakeFeed) FetchPage(_ context.Context, page int) ([]models.ListingRecord, error) {
	f.fetched = append(f.fetched, page)
	if err := f.fail[page]; err != nil {
		return nil, err
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func feedPage(page, items int) []models.ListingRecord {
	out := make([]models.ListingRecord, 0, items)
	for i := 0; i < items; i++ {
		title := fmt.Sprintf("TITLE P%d #%d", page, i)
		out = append(out, istRecord(title, fmt.Sprintf("https://ist/p%d-%d", page, i), models.KnownPrice(9.99)))
	}
	return out
}

func TestRunISTStopsAtFirstEmptyPage(t *testing.T) {
	feed := &fakeFeed{
		pages: [][]models.ListingRecord{feedPage(1, 2), feedPage(2, 2), feedPage(3, 1)},
		max:   30,
	}
	r := &Runner{Table: &store.Table{}, Pages: feed}

	counts := r.RunIST(context.Background(), testNow)

	// pages 1-3 merged, page 4 discovered empty, nothing past it
	assert.Equal(t, []int{1, 2, 3, 4}, feed.fetched)
	assert.Equal(t, 5, counts.New)
	assert.Len(t, r.Table.Rows, 5)
}

func TestRunISTSkipsFailedPage(t *testing.T) {
	feed := &fakeFeed{
		pages: [][]models.ListingRecord{feedPage(1, 1), feedPage(2, 1), feedPage(3, 1)},
		max:   30,
		fail:  map[int]error{2: &connector.TransportError{URL: "https://ist?pg=2", Status: 503}},
	}
	r := &Runner{Table: &store.Table{}, Pages: feed}

	counts := r.RunIST(context.Background(), testNow)

	// the broken page is skipped, the rest of the feed still lands
	assert.Equal(t, 2, counts.New)
	assert.Equal(t, []int{1, 2, 3, 4}, feed.fetched)
}

func TestRunISTHonorsPageCeiling(t *testing.T) {
	feed := &fakeFeed{max: 2}
	feed.pages = [][]models.ListingRecord{feedPage(1, 1), feedPage(2, 1), feedPage(3, 1)}

	r := &Runner{Table: &store.Table{}, Pages: feed}
	r.RunIST(context.Background(), testNow)

	assert.Equal(t, []int{1, 2}, feed.fetched, "ceiling is normal termination")
}

type fakeLookup struct {
	name    string
	results map[string]*models.ListingRecord
	calls   int
}

func (f *fakeLookup) Name() string { return f.name }

func (f *fakeLookup) Lookup(_ context.Context, query string) (*models.ListingRecord, error) {
	f.calls++
	return f.results[query], nil
}

func TestRunOPBLinksRowsByTitle(t *testing.T) {
	table := &store.Table{Rows: []*models.CanonicalEdition{
		{ISTURL: "https://ist/sandman", ISTTitle: "SANDMAN TP"},
		{ISTURL: "https://ist/flash", ISTTitle: "FLASH HC"},
	}}

	opb := &fakeLookup{name: "opb", results: map[string]*models.ListingRecord{
		"SANDMAN-TP": {
			Source:    models.SourceOPB,
			Title:     "SANDMAN TP",
			DetailURL: "https://opb/products/SANDMAN-TP",
			Price:     models.KnownPrice(11.99),
			Retail:    models.KnownPrice(19.99),
			Status:    models.StatusInStock,
		},
		// FLASH-HC: not carried by OPB → nil, skipped
	}}

	r := &Runner{Table: table, OPB: opb, LookupWorkers: 3}
	counts := r.RunOPB(context.Background(), testNow)

	assert.Equal(t, 2, opb.calls)
	assert.Equal(t, Counts{Updated: 1}, counts)

	require.Len(t, table.Rows, 2)
	sandman := table.Rows[0]
	assert.Equal(t, "https://opb/products/SANDMAN-TP", sandman.OPBURL)
	assert.Equal(t, models.KnownPrice(11.99), sandman.OPBCurrentPrice)
	assert.Equal(t, models.KnownPrice(19.99), sandman.RetailPrice)
	assert.Empty(t, table.Rows[1].OPBURL)
}

func TestRunAmazonPrefersUPCQuery(t *testing.T) {
	table := &store.Table{Rows: []*models.CanonicalEdition{
		{ISTURL: "https://ist/batman", ISTTitle: "BATMAN VOL 1 TP", UPC: "761941312345"},
		{ISTURL: "https://ist/aquaman", ISTTitle: "AQUAMAN HC"},
	}}

	amazon := &fakeLookup{name: "amazon", results: map[string]*models.ListingRecord{
		"761941312345": {
			Source:    models.SourceAmazon,
			Title:     "BATMAN VOL 1 TP",
			DetailURL: "https://camel/product/B0BATMAN",
			Price:     models.KnownPrice(13.49),
			Status:    models.StatusInStock,
		},
		"AQUAMAN Hardcover": {
			Source:    models.SourceAmazon,
			Title:     "AQUAMAN HC",
			DetailURL: "https://camel/product/B0AQUAMAN",
			Price:     models.KnownPrice(24.00),
			Status:    models.StatusInStock,
		},
	}}

	r := &Runner{Table: table, Amazon: amazon}
	counts := r.RunAmazon(context.Background(), testNow)

	assert.Equal(t, Counts{Updated: 2}, counts)
	assert.Equal(t, "https://camel/product/B0BATMAN", table.Rows[0].AmazonURL)
	assert.Equal(t, models.KnownPrice(13.49), table.Rows[0].AmazonCurrentPrice)
	assert.Equal(t, "https://camel/product/B0AQUAMAN", table.Rows[1].AmazonURL)
}

func TestRunISTCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := &fakeFeed{pages: [][]models.ListingRecord{feedPage(1, 1)}, max: 30}
	r := &Runner{Table: &store.Table{}, Pages: feed}

	counts := r.RunIST(ctx, testNow)
	assert.Empty(t, feed.fetched, "no fetches after cancellation")
	assert.Equal(t, Counts{}, counts)
}
