package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comichub/pkg/models"
	"comichub/pkg/store"
)

type fakeUPCFetcher struct {
	calls int
	upc   func(url string) (string, error)
}

func (f *fakeUPCFetcher) FetchUPC(_ context.Context, url string) (string, error) {
	f.calls++
	return f.upc(url)
}

func tableWithUnsetUPCs(n int) *store.Table {
	t := &store.Table{}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, &models.CanonicalEdition{
			ISTURL:   fmt.Sprintf("https://ist/item-%03d", i),
			ISTTitle: fmt.Sprintf("TITLE %03d", i),
		})
	}
	return t
}

func TestEnrichRespectsBatchBound(t *testing.T) {
	table := tableWithUnsetUPCs(200)
	fetcher := &fakeUPCFetcher{upc: func(string) (string, error) { return "761941300000", nil }}

	filled, attempted := EnrichUPC(context.Background(), table, fetcher, 75, testNow)

	assert.Equal(t, 75, attempted)
	assert.Equal(t, 75, filled)
	assert.Equal(t, 75, fetcher.calls)

	unset := 0
	for _, row := range table.Rows {
		if row.UPC == "" {
			unset++
		}
	}
	assert.Equal(t, 125, unset)
}

func TestEnrichSkipsAlreadyResolvedRows(t *testing.T) {
	table := tableWithUnsetUPCs(3)
	table.Rows[1].UPC = "761941399999"

	fetcher := &fakeUPCFetcher{upc: func(string) (string, error) { return "761941300000", nil }}
	filled, attempted := EnrichUPC(context.Background(), table, fetcher, 10, testNow)

	assert.Equal(t, 2, attempted)
	assert.Equal(t, 2, filled)
	assert.Equal(t, "761941399999", table.Rows[1].UPC, "existing UPC never overwritten")
}

func TestEnrichLeavesFailedRowsEligible(t *testing.T) {
	table := tableWithUnsetUPCs(3)
	fetcher := &fakeUPCFetcher{upc: func(url string) (string, error) {
		switch {
		case url == "https://ist/item-000":
			return "", errors.New("timeout")
		case url == "https://ist/item-001":
			return "", nil // page has no UPC element
		default:
			return "761941300002", nil
		}
	}}

	filled, attempted := EnrichUPC(context.Background(), table, fetcher, 10, testNow)

	assert.Equal(t, 3, attempted)
	assert.Equal(t, 1, filled)
	assert.Empty(t, table.Rows[0].UPC)
	assert.Empty(t, table.Rows[1].UPC)
	assert.Equal(t, "761941300002", table.Rows[2].UPC)
	assert.Equal(t, testNow, table.Rows[2].LastUpdated)
	assert.True(t, table.Rows[0].LastUpdated.IsZero(), "failed row untouched")
}

func TestEnrichStopsOnCancel(t *testing.T) {
	table := tableWithUnsetUPCs(10)
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &fakeUPCFetcher{}
	fetcher.upc = func(string) (string, error) {
		if fetcher.calls == 3 {
			cancel()
		}
		return "761941300000", nil
	}

	_, attempted := EnrichUPC(ctx, table, fetcher, 10, testNow)
	require.Equal(t, 3, attempted, "stops after the in-flight row completes")
}
