package models

import (
	"strconv"
	"strings"
)

// Price is an explicitly optional money amount. The zero value means
// "unknown", which is distinct from a confirmed price of 0.00 — scraped
// pages often simply lack a price element, and that absence must never
// collapse into a real number downstream.
type Price struct {
	Amount float64
	Known  bool
}

// KnownPrice wraps a confirmed amount.
func KnownPrice(amount float64) Price {
	return Price{Amount: amount, Known: true}
}

// ParsePrice parses a scraped price string like "$24.99", "1,299.00" or
// "24.99". Anything unparseable yields an unknown Price, never an error:
// a missing or garbled price element is a per-item condition the caller
// logs and moves past.
func ParsePrice(raw string) Price {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Price{}
	}
	return Price{Amount: amount, Known: true}
}

// String renders the amount with two decimals, or "" when unknown.
// This is also the CSV cell encoding.
func (p Price) String() string {
	if !p.Known {
		return ""
	}
	return strconv.FormatFloat(p.Amount, 'f', 2, 64)
}

// LessThan reports whether p is a known price strictly below other.
// An unknown price is never less than anything.
func (p Price) LessThan(other Price) bool {
	if !p.Known {
		return false
	}
	return !other.Known || p.Amount < other.Amount
}

// MinPrice returns the lower of two prices, ignoring unknown values.
func MinPrice(a, b Price) Price {
	if !a.Known {
		return b
	}
	if !b.Known {
		return a
	}
	if b.Amount < a.Amount {
		return b
	}
	return a
}
