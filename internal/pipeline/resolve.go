// Package pipeline turns connector output into canonical store updates:
// identity resolution, merging, and the UPC enrichment pass.
package pipeline

import (
	"strings"

	"comichub/pkg/models"
	"comichub/pkg/store"
)

// VerdictKind classifies what the resolver decided about a record.
type VerdictKind int

const (
	// VerdictNew: no existing row denotes this edition.
	VerdictNew VerdictKind = iota
	// VerdictExisting: the record refers to the row at Verdict.Row.
	VerdictExisting
	// VerdictConflict: the record's title matches a row whose identity
	// column for this source already holds a different URL. Reported,
	// never merged.
	VerdictConflict
)

// Verdict is the resolver's answer for one record. Row indexes into the
// table's row slice and is meaningful for Existing and Conflict.
type Verdict struct {
	Kind VerdictKind
	Row  int
}

// NormalizeTitle is the single title-normalization rule used for
// identity fallback: case-fold and collapse whitespace runs. Kept pure
// and minimal so resolver behavior is reproducible away from any HTML.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Resolve decides whether rec denotes an edition already in t.
//
// URL first: retail catalogs essentially never reuse a detail URL for a
// different edition, so an exact match on the record's own source column
// wins outright. Title is the weaker fallback, only there to catch rows
// created by a different source before this one linked up. A title match
// against a row that already carries a different URL in this source's
// column is a conflict for manual review, not a merge.
func Resolve(rec models.ListingRecord, t *store.Table) Verdict {
	if rec.DetailURL != "" {
		for i, row := range t.Rows {
			if row.URLFor(rec.Source) == rec.DetailURL {
				return Verdict{Kind: VerdictExisting, Row: i}
			}
		}
	}

	if norm := NormalizeTitle(rec.Title); norm != "" {
		for i, row := range t.Rows {
			if NormalizeTitle(row.ISTTitle) != norm {
				continue
			}
			if have := row.URLFor(rec.Source); have != "" && rec.DetailURL != "" && have != rec.DetailURL {
				return Verdict{Kind: VerdictConflict, Row: i}
			}
			return Verdict{Kind: VerdictExisting, Row: i}
		}
	}

	return Verdict{Kind: VerdictNew}
}
