// Package store owns the canonical editions file: a delimited table with
// one row per distinct comic edition, read once at the start of a pipeline
// run and written back once at the end. It is the single source of truth
// between runs; other tools (the sqlite importer, a future pricing UI)
// only ever read it.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"comichub/pkg/models"
)

// Column order of the canonical file. Kept stable so diffs between runs
// stay readable and existing files keep loading.
var columns = []string{
	"IST Url",
	"IST Title",
	"OPB Url",
	"Amazon URL",
	"Target URL",
	"Retail Price",
	"OPB Status",
	"OPB Current Price",
	"IST Status",
	"IST Current Price",
	"Amazon Status",
	"Amazon Current Price",
	"Target Status",
	"Target Current Price",
	"Min Current Price",
	"All time Low Price",
	"UPC",
	"Target Doc Name",
	"Last Updated",
}

// Table is the in-memory canonical store for one pipeline run. Row order
// is insertion order until Save sorts by IST title.
type Table struct {
	Rows []*models.CanonicalEdition
}

// Load reads the canonical file at path. A missing or unreadable file is
// an error the caller must treat as fatal for the run: overwriting a bad
// store with an empty one would silently destroy the whole history.
//
// Older files predate the UPC column; they load with UPC unset on every
// row rather than failing.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read store header: %w", err)
	}
	if _, ok := header["ist url"]; !ok {
		return nil, fmt.Errorf("store %s: missing IST Url column", path)
	}

	t := &Table{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read store row: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		e := &models.CanonicalEdition{
			ISTURL:             valueAt(header, row, "ist url"),
			ISTTitle:           valueAt(header, row, "ist title"),
			OPBURL:             valueAt(header, row, "opb url"),
			AmazonURL:          valueAt(header, row, "amazon url"),
			TargetURL:          valueAt(header, row, "target url"),
			RetailPrice:        models.ParsePrice(valueAt(header, row, "retail price")),
			OPBStatus:          valueAt(header, row, "opb status"),
			OPBCurrentPrice:    models.ParsePrice(valueAt(header, row, "opb current price")),
			ISTStatus:          valueAt(header, row, "ist status"),
			ISTCurrentPrice:    models.ParsePrice(valueAt(header, row, "ist current price")),
			AmazonStatus:       valueAt(header, row, "amazon status"),
			AmazonCurrentPrice: models.ParsePrice(valueAt(header, row, "amazon current price")),
			TargetStatus:       valueAt(header, row, "target status"),
			TargetCurrentPrice: models.ParsePrice(valueAt(header, row, "target current price")),
			MinCurrentPrice:    models.ParsePrice(valueAt(header, row, "min current price")),
			AllTimeLowPrice:    models.ParsePrice(valueAt(header, row, "all time low price")),
			UPC:                valueAt(header, row, "upc"),
			TargetDocName:      valueAt(header, row, "target doc name"),
			LastUpdated:        parseTime(valueAt(header, row, "last updated")),
		}
		if e.ISTURL == "" && e.ISTTitle == "" {
			continue
		}
		t.Rows = append(t.Rows, e)
	}

	return t, nil
}

// Save writes the full table back to path, sorted by IST title. The write
// goes to a temp file in the same directory first and is swapped in with
// a rename, so a failure partway through never truncates the previous
// good file.
func Save(t *Table, path string) error {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].ISTTitle < t.Rows[j].ISTTitle
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAll(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("swap store: %w", err)
	}
	return nil
}

func writeAll(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, e := range t.Rows {
		updated := ""
		if !e.LastUpdated.IsZero() {
			updated = e.LastUpdated.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			e.ISTURL,
			e.ISTTitle,
			e.OPBURL,
			e.AmazonURL,
			e.TargetURL,
			e.RetailPrice.String(),
			e.OPBStatus,
			e.OPBCurrentPrice.String(),
			e.ISTStatus,
			e.ISTCurrentPrice.String(),
			e.AmazonStatus,
			e.AmazonCurrentPrice.String(),
			e.TargetStatus,
			e.TargetCurrentPrice.String(),
			e.MinCurrentPrice.String(),
			e.AllTimeLowPrice.String(),
			e.UPC,
			e.TargetDocName,
			updated,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
