package pipeline

import (
	"log"
	"time"

	"comichub/pkg/models"
	"comichub/pkg/store"
)

// Counts summarizes one merge batch.
type Counts struct {
	New       int
	Updated   int
	Skipped   int
	Conflicts int
}

// Add folds another batch's counts in.
func (c *Counts) Add(other Counts) {
	c.New += other.New
	c.Updated += other.Updated
	c.Skipped += other.Skipped
	c.Conflicts += other.Conflicts
}

// Apply folds a batch of records into the table, in the order the
// connector yielded them. Each record is resolved against the table as
// it stands at that moment, so two records for the same unseen edition
// in one batch produce a single row: the first creates it, the second
// merges into it.
//
// Apply is idempotent: replaying the same batch against the updated
// table changes nothing and reports zero new/updated.
func Apply(t *store.Table, records []models.ListingRecord, now time.Time) Counts {
	var counts Counts
	for _, rec := range records {
		verdict := Resolve(rec, t)
		switch verdict.Kind {
		case VerdictNew:
			t.Rows = append(t.Rows, newEdition(rec, now))
			counts.New++
		case VerdictExisting:
			if mergeRecord(t.Rows[verdict.Row], rec, now) {
				counts.Updated++
			} else {
				counts.Skipped++
			}
		case VerdictConflict:
			row := t.Rows[verdict.Row]
			log.Printf("[merge] conflict: %s record %q (%s) title-matches row %q which already links %s; left for manual review",
				rec.Source, rec.Title, rec.DetailURL, row.ISTTitle, row.URLFor(rec.Source))
			counts.Conflicts++
		}
	}
	return counts
}

// newEdition seeds a row from whatever fields the record can supply.
// Everything else starts unset and is only ever refined later.
func newEdition(rec models.ListingRecord, now time.Time) *models.CanonicalEdition {
	e := &models.CanonicalEdition{
		ISTTitle:    rec.Title,
		LastUpdated: now,
	}
	e.SetURL(rec.Source, rec.DetailURL)
	if rec.Status != "" {
		e.SetStatus(rec.Source, rec.Status)
	}
	if rec.Retail.Known {
		e.RetailPrice = rec.Retail
	}
	if rec.Price.Known {
		e.SetCurrentPrice(rec.Source, rec.Price)
		recomputeAggregates(e)
	}
	return e
}

// mergeRecord applies rec to an existing row. Updates are strictly
// superset-preserving: a populated field is never cleared, only refined.
// Reports whether anything actually changed.
func mergeRecord(e *models.CanonicalEdition, rec models.ListingRecord, now time.Time) bool {
	changed := false

	if e.URLFor(rec.Source) == "" && rec.DetailURL != "" {
		e.SetURL(rec.Source, rec.DetailURL)
		changed = true
	}
	if e.ISTTitle == "" && rec.Title != "" {
		e.ISTTitle = rec.Title
		changed = true
	}
	if !e.RetailPrice.Known && rec.Retail.Known {
		e.RetailPrice = rec.Retail
		changed = true
	}
	if rec.Status != "" && e.StatusFor(rec.Source) != rec.Status {
		e.SetStatus(rec.Source, rec.Status)
		changed = true
	}
	if rec.Price.Known {
		cur := e.CurrentPrice(rec.Source)
		if !cur.Known || cur.Amount != rec.Price.Amount {
			e.SetCurrentPrice(rec.Source, rec.Price)
			recomputeAggregates(e)
			changed = true
		}
	}

	if changed {
		e.LastUpdated = now
	}
	return changed
}

// recomputeAggregates rebuilds MinCurrentPrice from the per-source
// prices and ratchets AllTimeLowPrice down if the new minimum undercuts
// it. The all-time low never rises.
func recomputeAggregates(e *models.CanonicalEdition) {
	var min models.Price
	for _, p := range e.CurrentPrices() {
		min = models.MinPrice(min, p)
	}
	e.MinCurrentPrice = min
	e.AllTimeLowPrice = models.MinPrice(e.AllTimeLowPrice, min)
}
