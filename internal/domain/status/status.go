// Package status handles WooCommerce order status codes.
//
// The store persists statuses with a reserved "wc-" prefix (wc-processing,
// wc-completed, ...). Everything inside wooctl works on the canonical,
// unprefixed code; adapters call Prefixed when writing back to the store.
package status

import "strings"

// Prefix is the store's reserved status prefix
const Prefix = "wc-"

// Normalize returns the canonical form of a status code.
// "wc-completed" and "completed" both normalize to "completed".
func Normalize(s string) string {
	for strings.HasPrefix(s, Prefix) {
		s = strings.TrimPrefix(s, Prefix)
	}
	return s
}

// Prefixed returns the store-side form of a status code
func Prefixed(s string) string {
	return Prefix + Normalize(s)
}

// Entry is one legal status with its display label
type Entry struct {
	Code  string
	Label string
}

// Set is the store's legal status set at a point in time.
// It keeps the order the store reported the statuses in.
type Set struct {
	entries []Entry
	index   map[string]int
}

// NewSet builds a Set from entries. Codes are normalized and later
// duplicates replace the label of earlier ones.
func NewSet(entries ...Entry) Set {
	s := Set{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		s.Add(e.Code, e.Label)
	}
	return s
}

// Add registers a status code with its label
func (s *Set) Add(code, label string) {
	code = Normalize(code)
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[code]; ok {
		s.entries[i].Label = label
		return
	}
	s.index[code] = len(s.entries)
	s.entries = append(s.entries, Entry{Code: code, Label: label})
}

// Contains reports whether code (in either form) is a legal status
func (s Set) Contains(code string) bool {
	_, ok := s.index[Normalize(code)]
	return ok
}

// Label returns the display label for code, or "" when unknown
func (s Set) Label(code string) string {
	if i, ok := s.index[Normalize(code)]; ok {
		return s.entries[i].Label
	}
	return ""
}

// Codes returns the canonical codes in store order
func (s Set) Codes() []string {
	codes := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		codes = append(codes, e.Code)
	}
	return codes
}

// Entries returns a copy of the set's entries in store order
func (s Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of legal statuses
func (s Set) Len() int {
	return len(s.entries)
}

// Core returns the statuses WooCommerce registers out of the box.
// Used by adapters that cannot ask a running store for its list.
func Core() Set {
	return NewSet(
		Entry{Code: "pending", Label: "Pending payment"},
		Entry{Code: "processing", Label: "Processing"},
		Entry{Code: "on-hold", Label: "On hold"},
		Entry{Code: "completed", Label: "Completed"},
		Entry{Code: "cancelled", Label: "Cancelled"},
		Entry{Code: "refunded", Label: "Refunded"},
		Entry{Code: "failed", Label: "Failed"},
	)
}
