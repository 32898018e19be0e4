package models

import "time"

// Source identifies which retailer/reference site a listing came from.
// Each source owns one URL column and one status/price pair on
// CanonicalEdition.
type Source string

const (
	SourceIST    Source = "ist"
	SourceOPB    Source = "opb"
	SourceAmazon Source = "amazon"
	SourceTarget Source = "target"
)

// Listing availability statuses as stored in the canonical file.
const (
	StatusInStock  = "In Stock"
	StatusNotFound = "Not Found"
)

// ListingRecord is the flat, source-agnostic result of scraping one
// listing. Connectors map their source-specific markup into this struct
// at the boundary; nothing downstream ever sees raw HTML or partial URLs.
type ListingRecord struct {
	Source    Source
	Title     string
	DetailURL string // absolute; the strongest identity key we have
	ImageURL  string
	Price     Price // inline price, only for sources that expose one
	Retail    Price // cover/compare-at price, only OPB exposes this
	Status    string
}

// CanonicalEdition is one durable row of the canonical store: a single
// distinct comic-book product tracked across all sources. The IST URL is
// the primary identity anchor; the other URL columns are filled in
// independently as later passes link the same edition on other sites.
type CanonicalEdition struct {
	ISTURL             string
	ISTTitle           string
	OPBURL             string
	AmazonURL          string
	TargetURL          string
	RetailPrice        Price
	OPBStatus          string
	OPBCurrentPrice    Price
	ISTStatus          string
	ISTCurrentPrice    Price
	AmazonStatus       string
	AmazonCurrentPrice Price
	TargetStatus       string
	TargetCurrentPrice Price
	MinCurrentPrice    Price
	AllTimeLowPrice    Price
	UPC                string
	TargetDocName      string
	LastUpdated        time.Time
}

// URLFor returns the identity URL column for the given source.
func (e *CanonicalEdition) URLFor(src Source) string {
	switch src {
	case SourceIST:
		return e.ISTURL
	case SourceOPB:
		return e.OPBURL
	case SourceAmazon:
		return e.AmazonURL
	case SourceTarget:
		return e.TargetURL
	}
	return ""
}

// SetURL fills the identity URL column for the given source.
func (e *CanonicalEdition) SetURL(src Source, url string) {
	switch src {
	case SourceIST:
		e.ISTURL = url
	case SourceOPB:
		e.OPBURL = url
	case SourceAmazon:
		e.AmazonURL = url
	case SourceTarget:
		e.TargetURL = url
	}
}

// CurrentPrice returns the last observed price for the given source.
func (e *CanonicalEdition) CurrentPrice(src Source) Price {
	switch src {
	case SourceIST:
		return e.ISTCurrentPrice
	case SourceOPB:
		return e.OPBCurrentPrice
	case SourceAmazon:
		return e.AmazonCurrentPrice
	case SourceTarget:
		return e.TargetCurrentPrice
	}
	return Price{}
}

// SetCurrentPrice records the last observed price for the given source.
func (e *CanonicalEdition) SetCurrentPrice(src Source, p Price) {
	switch src {
	case SourceIST:
		e.ISTCurrentPrice = p
	case SourceOPB:
		e.OPBCurrentPrice = p
	case SourceAmazon:
		e.AmazonCurrentPrice = p
	case SourceTarget:
		e.TargetCurrentPrice = p
	}
}

// StatusFor returns the last observed availability for the given source.
func (e *CanonicalEdition) StatusFor(src Source) string {
	switch src {
	case SourceIST:
		return e.ISTStatus
	case SourceOPB:
		return e.OPBStatus
	case SourceAmazon:
		return e.AmazonStatus
	case SourceTarget:
		return e.TargetStatus
	}
	return ""
}

// SetStatus records the last observed availability for the given source.
func (e *CanonicalEdition) SetStatus(src Source, status string) {
	switch src {
	case SourceIST:
		e.ISTStatus = status
	case SourceOPB:
		e.OPBStatus = status
	case SourceAmazon:
		e.AmazonStatus = status
	case SourceTarget:
		e.TargetStatus = status
	}
}

// CurrentPrices lists every populated per-source price on the row.
func (e *CanonicalEdition) CurrentPrices() []Price {
	out := make([]Price, 0, 4)
	for _, p := range []Price{e.ISTCurrentPrice, e.OPBCurrentPrice, e.AmazonCurrentPrice, e.TargetCurrentPrice} {
		if p.Known {
			out = append(out, p)
		}
	}
	return out
}
