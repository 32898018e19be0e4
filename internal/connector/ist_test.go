package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comichub/pkg/models"
)

const istListPage = `<html><body>
<div class="item">
  <a href="/dcd12345-batman-vol-1"><img src="/images/batman.jpg"></a>
  <div class="title">BATMAN VOL 1 TP</div>
  <div class="price">$14.99</div>
</div>
<div class="item">
  <a href="/dcd12346-flash-omnibus"><img src="/images/flash.jpg"></a>
  <div class="title">FLASH OMNIBUS HC</div>
</div>
<div class="item">
  <a href="/dcd12347-broken"><img src="/images/broken.jpg"></a>
</div>
</body></html>`

func newISTServer(t *testing.T, handler http.HandlerFunc) (*IST, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ist := NewIST()
	ist.BaseURL = srv.URL
	ist.Client = srv.Client()
	return ist, srv
}

func TestISTFetchPage(t *testing.T) {
	ist, srv := newISTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publishers/dc", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("pg"))
		fmt.Fprint(w, istListPage)
	})

	records, err := ist.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	// the item without a title is skipped, the page still parses
	require.Len(t, records, 2)

	assert.Equal(t, models.ListingRecord{
		Source:    models.SourceIST,
		Title:     "BATMAN VOL 1 TP",
		DetailURL: srv.URL + "/dcd12345-batman-vol-1",
		ImageURL:  "/images/batman.jpg",
		Price:     models.KnownPrice(14.99),
		Status:    models.StatusInStock,
	}, records[0])

	// no price element on the second item: unknown, not zero
	assert.False(t, records[1].Price.Known)
	assert.Equal(t, srv.URL+"/dcd12346-flash-omnibus", records[1].DetailURL)
}

func TestISTFetchPageEmptyFeed(t *testing.T) {
	ist, _ := newISTServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>no results</p></body></html>`)
	})

	records, err := ist.FetchPage(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestISTFetchPageTransportError(t *testing.T) {
	ist, _ := newISTServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := ist.FetchPage(context.Background(), 1)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.Status)
}

func TestISTFetchUPC(t *testing.T) {
	ist, srv := newISTServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/with-upc":
			fmt.Fprint(w, `<html><body><div class="upc">UPC: 76194131234500111</div></body></html>`)
		default:
			fmt.Fprint(w, `<html><body><div class="title">BATMAN VOL 1 TP</div></body></html>`)
		}
	})

	upc, err := ist.FetchUPC(context.Background(), srv.URL+"/with-upc")
	require.NoError(t, err)
	assert.Equal(t, "76194131234500111", upc)

	upc, err = ist.FetchUPC(context.Background(), srv.URL+"/without-upc")
	require.NoError(t, err)
	assert.Empty(t, upc)
}

func TestISTAbsoluteURL(t *testing.T) {
	ist := NewIST()
	assert.Equal(t, "https://www.instocktrades.com/dcd1", ist.absoluteURL("/dcd1"))
	assert.Equal(t, "https://www.instocktrades.com/dcd1", ist.absoluteURL("dcd1"))
	assert.Equal(t, "https://other.example/x", ist.absoluteURL("https://other.example/x"))
}
